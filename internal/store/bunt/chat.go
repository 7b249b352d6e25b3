package bunt

import (
	"context"
	"fmt"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/tidwall/buntdb"
)

type chatStore struct {
	*BuntStore
}

func chatKey(id int) string {
	return fmt.Sprintf("%s%d", chatPrefix, id)
}

func (cs *chatStore) AddChatMessage(ctx context.Context, m *entity.ChatMessage) error {
	err := cs.db.Update(func(tx *buntdb.Tx) error {
		id, err := nextSeq(tx, chatSeqKey)
		if err != nil {
			return err
		}
		m.Id = id
		return setJSON(tx, chatKey(id), m)
	})
	if err != nil {
		return fmt.Errorf("can't add chat message: %w", err)
	}
	return nil
}

// scan visits messages in id order until f returns false.
func (cs *chatStore) scan(tx *buntdb.Tx, f func(key string, m *entity.ChatMessage) bool) error {
	var scanErr error
	err := tx.Ascend(chatById, func(key, value string) bool {
		var m entity.ChatMessage
		if scanErr = unmarshalDoc(key, value, &m); scanErr != nil {
			return false
		}
		return f(key, &m)
	})
	if err != nil {
		return err
	}
	return scanErr
}

func (cs *chatStore) list(match func(m *entity.ChatMessage) bool) ([]entity.ChatMessage, error) {
	msgs := []entity.ChatMessage{}
	err := cs.db.View(func(tx *buntdb.Tx) error {
		return cs.scan(tx, func(_ string, m *entity.ChatMessage) bool {
			if match(m) {
				msgs = append(msgs, *m)
			}
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("can't list chat messages: %w", err)
	}
	return msgs, nil
}

func (cs *chatStore) ListChatMessages(ctx context.Context, deviceId string) ([]entity.ChatMessage, error) {
	return cs.list(func(m *entity.ChatMessage) bool { return m.DeviceId == deviceId })
}

func (cs *chatStore) ListAllChatMessages(ctx context.Context) ([]entity.ChatMessage, error) {
	return cs.list(func(*entity.ChatMessage) bool { return true })
}

func (cs *chatStore) MarkConversationRead(ctx context.Context, deviceId string) error {
	err := cs.db.Update(func(tx *buntdb.Tx) error {
		unread := map[string]entity.ChatMessage{}
		err := cs.scan(tx, func(key string, m *entity.ChatMessage) bool {
			if m.DeviceId == deviceId && m.Sender == entity.ChatSenderCustomer && !m.Read {
				m.Read = true
				unread[key] = *m
			}
			return true
		})
		if err != nil {
			return err
		}
		// buntdb forbids writes while iterating
		for key, m := range unread {
			if err := setJSON(tx, key, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("can't mark conversation %s read: %w", deviceId, err)
	}
	return nil
}

func (cs *chatStore) DeleteConversation(ctx context.Context, deviceId string) error {
	err := cs.db.Update(func(tx *buntdb.Tx) error {
		var keys []string
		err := cs.scan(tx, func(key string, m *entity.ChatMessage) bool {
			if m.DeviceId == deviceId {
				keys = append(keys, key)
			}
			return true
		})
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return gerr.ConversationNotFound
		}
		for _, key := range keys {
			if _, err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("can't delete conversation %s: %w", deviceId, err)
	}
	return nil
}
