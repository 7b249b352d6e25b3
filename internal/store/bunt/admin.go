package bunt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/tidwall/buntdb"
)

type adminStore struct {
	*BuntStore
}

func subAdminKey(id string) string {
	return subAdminPrefix + id
}

func emailPivot(email string) string {
	b, _ := json.Marshal(map[string]string{"email": strings.TrimSpace(email)})
	return string(b)
}

// findByEmail returns the id of the sub-admin with email, compared case-insensitively.
func findByEmail(tx *buntdb.Tx, email string) (string, error) {
	id := ""
	err := tx.AscendEqual(subAdminEmail, emailPivot(email), func(key, _ string) bool {
		id = strings.TrimPrefix(key, subAdminPrefix)
		return false
	})
	return id, err
}

func (as *adminStore) AddSubAdmin(ctx context.Context, sa *entity.SubAdmin) error {
	err := as.db.Update(func(tx *buntdb.Tx) error {
		id, err := findByEmail(tx, sa.Email)
		if err != nil {
			return err
		}
		if id != "" {
			return gerr.SubAdminExists
		}
		return setJSON(tx, subAdminKey(sa.Id), sa)
	})
	if err != nil {
		return fmt.Errorf("can't add sub-admin: %w", err)
	}
	return nil
}

func (as *adminStore) UpdateSubAdmin(ctx context.Context, sa *entity.SubAdmin) error {
	err := as.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Get(subAdminKey(sa.Id)); err != nil {
			return err
		}
		id, err := findByEmail(tx, sa.Email)
		if err != nil {
			return err
		}
		if id != "" && id != sa.Id {
			return gerr.SubAdminExists
		}
		return setJSON(tx, subAdminKey(sa.Id), sa)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return gerr.SubAdminNotFound
	}
	if err != nil {
		return fmt.Errorf("can't update sub-admin: %w", err)
	}
	return nil
}

func (as *adminStore) DeleteSubAdmin(ctx context.Context, id string) error {
	err := as.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(subAdminKey(id))
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return gerr.SubAdminNotFound
	}
	if err != nil {
		return fmt.Errorf("can't delete sub-admin: %w", err)
	}
	return nil
}

func (as *adminStore) GetSubAdminById(ctx context.Context, id string) (*entity.SubAdmin, error) {
	sa := &entity.SubAdmin{}
	err := as.db.View(func(tx *buntdb.Tx) error {
		return getJSON(tx, subAdminKey(id), sa)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, gerr.SubAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't get sub-admin: %w", err)
	}
	return sa, nil
}

func (as *adminStore) GetSubAdminByEmail(ctx context.Context, email string) (*entity.SubAdmin, error) {
	sa := &entity.SubAdmin{}
	err := as.db.View(func(tx *buntdb.Tx) error {
		id, err := findByEmail(tx, email)
		if err != nil {
			return err
		}
		if id == "" {
			return buntdb.ErrNotFound
		}
		return getJSON(tx, subAdminKey(id), sa)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, gerr.SubAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't get sub-admin by email: %w", err)
	}
	return sa, nil
}

func (as *adminStore) ListSubAdmins(ctx context.Context) ([]entity.SubAdmin, error) {
	var (
		sas     []entity.SubAdmin
		scanErr error
	)
	err := as.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend(subAdminEmail, func(key, value string) bool {
			var sa entity.SubAdmin
			if scanErr = unmarshalDoc(key, value, &sa); scanErr != nil {
				return false
			}
			sas = append(sas, sa)
			return true
		})
	})
	if err == nil {
		err = scanErr
	}
	if err != nil {
		return nil, fmt.Errorf("can't list sub-admins: %w", err)
	}
	return sas, nil
}
