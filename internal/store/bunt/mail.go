package bunt

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/tidwall/buntdb"
)

type mailStore struct {
	*BuntStore
}

func mailKey(id int) string {
	return fmt.Sprintf("%s%d", mailPrefix, id)
}

func (ms *mailStore) AddMail(ctx context.Context, ser *entity.SendEmailRequest) (int, error) {
	var id int
	err := ms.db.Update(func(tx *buntdb.Tx) error {
		var err error
		if id, err = nextSeq(tx, mailSeqKey); err != nil {
			return err
		}
		m := *ser
		m.Id = id
		m.CreatedAt = time.Now()
		m.SentAt = sql.NullTime{Time: time.Now(), Valid: ser.Sent}
		return setJSON(tx, mailKey(id), m)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add mail: %w", err)
	}
	return id, nil
}

func (ms *mailStore) GetAllUnsent(ctx context.Context, withError bool) ([]entity.SendEmailRequest, error) {
	var (
		srs     []entity.SendEmailRequest
		scanErr error
	)
	err := ms.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend(mailById, func(key, value string) bool {
			var m entity.SendEmailRequest
			if scanErr = unmarshalDoc(key, value, &m); scanErr != nil {
				return false
			}
			if m.Sent || (!withError && m.ErrMsg.Valid) {
				return true
			}
			srs = append(srs, m)
			return true
		})
	})
	if err == nil {
		err = scanErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unsent mail: %w", err)
	}
	return srs, nil
}

func (ms *mailStore) update(id int, f func(m *entity.SendEmailRequest)) error {
	return ms.db.Update(func(tx *buntdb.Tx) error {
		var m entity.SendEmailRequest
		if err := getJSON(tx, mailKey(id), &m); err != nil {
			return err
		}
		f(&m)
		return setJSON(tx, mailKey(id), m)
	})
}

func (ms *mailStore) UpdateSent(ctx context.Context, id int) error {
	err := ms.update(id, func(m *entity.SendEmailRequest) {
		m.Sent = true
		m.SentAt = sql.NullTime{Time: time.Now(), Valid: true}
	})
	if err != nil {
		return fmt.Errorf("failed to update sent: %w", err)
	}
	return nil
}

func (ms *mailStore) AddError(ctx context.Context, id int, errMsg string) error {
	err := ms.update(id, func(m *entity.SendEmailRequest) {
		m.ErrMsg = sql.NullString{String: errMsg, Valid: true}
	})
	if err != nil {
		return fmt.Errorf("failed to add mail error: %w", err)
	}
	return nil
}
