package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
)

type chatStore struct {
	*MYSQLStore
}

// chatMessageRow represents the chat_message table
type chatMessageRow struct {
	Id        int            `db:"id"`
	DeviceId  string         `db:"device_id"`
	UserName  string         `db:"user_name"`
	Sender    string         `db:"sender"`
	Message   string         `db:"message"`
	ImageUrl  sql.NullString `db:"image_url"`
	IsRead    bool           `db:"is_read"`
	CreatedAt time.Time      `db:"created_at"`
}

const chatColumns = `id, device_id, user_name, sender, message, image_url, is_read, created_at`

func (s *chatStore) AddChatMessage(ctx context.Context, m *entity.ChatMessage) error {
	id, err := ExecNamedLastId(ctx, s.DB(), `
	INSERT INTO chat_message (device_id, user_name, sender, message, image_url, is_read, created_at)
	VALUES (:deviceId, :userName, :sender, :message, :imageUrl, :read, :createdAt)`, map[string]any{
		"deviceId":  m.DeviceId,
		"userName":  m.UserName,
		"sender":    string(m.Sender),
		"message":   m.Message,
		"imageUrl":  sql.NullString{String: m.ImageUrl, Valid: m.ImageUrl != ""},
		"read":      m.Read,
		"createdAt": m.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("can't add chat message: %w", err)
	}
	m.Id = id
	return nil
}

func (s *chatStore) list(ctx context.Context, where string, params map[string]any) ([]entity.ChatMessage, error) {
	rows, err := QueryListNamed[chatMessageRow](ctx, s.DB(),
		`SELECT `+chatColumns+` FROM chat_message `+where+` ORDER BY id`, params)
	if err != nil {
		return nil, fmt.Errorf("can't list chat messages: %w", err)
	}
	msgs := make([]entity.ChatMessage, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, entity.ChatMessage{
			Id:        r.Id,
			DeviceId:  r.DeviceId,
			UserName:  r.UserName,
			Sender:    entity.ChatSender(r.Sender),
			Message:   r.Message,
			ImageUrl:  r.ImageUrl.String,
			Read:      r.IsRead,
			CreatedAt: r.CreatedAt,
		})
	}
	return msgs, nil
}

func (s *chatStore) ListChatMessages(ctx context.Context, deviceId string) ([]entity.ChatMessage, error) {
	return s.list(ctx, `WHERE device_id = :deviceId`, map[string]any{"deviceId": deviceId})
}

func (s *chatStore) ListAllChatMessages(ctx context.Context) ([]entity.ChatMessage, error) {
	return s.list(ctx, ``, map[string]any{})
}

func (s *chatStore) MarkConversationRead(ctx context.Context, deviceId string) error {
	err := ExecNamed(ctx, s.DB(), `
	UPDATE chat_message SET is_read = TRUE
	WHERE device_id = :deviceId AND sender = :sender AND is_read = FALSE`, map[string]any{
		"deviceId": deviceId,
		"sender":   string(entity.ChatSenderCustomer),
	})
	if err != nil {
		return fmt.Errorf("can't mark conversation %s read: %w", deviceId, err)
	}
	return nil
}

func (s *chatStore) DeleteConversation(ctx context.Context, deviceId string) error {
	res, err := s.DB().ExecContext(ctx, `DELETE FROM chat_message WHERE device_id = ?`, deviceId)
	if err != nil {
		return fmt.Errorf("can't delete conversation %s: %w", deviceId, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if ra == 0 {
		return gerr.ConversationNotFound
	}
	return nil
}
