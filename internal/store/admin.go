package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
)

type adminStore struct {
	*MYSQLStore
}

// subAdminRow represents the sub_admin table
type subAdminRow struct {
	Id           string         `db:"id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	Permissions  sql.NullString `db:"permissions"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r *subAdminRow) toEntity() entity.SubAdmin {
	sa := entity.SubAdmin{
		Id:           r.Id,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Permissions:  entity.Permissions{},
		CreatedAt:    r.CreatedAt,
	}
	if r.Permissions.Valid && r.Permissions.String != "" {
		_ = json.Unmarshal([]byte(r.Permissions.String), &sa.Permissions)
	}
	return sa
}

func subAdminParams(sa *entity.SubAdmin) (map[string]any, error) {
	perms, err := json.Marshal(sa.Permissions)
	if err != nil {
		return nil, fmt.Errorf("can't marshal permissions: %w", err)
	}
	return map[string]any{
		"id":           sa.Id,
		"name":         sa.Name,
		"email":        strings.TrimSpace(sa.Email),
		"passwordHash": sa.PasswordHash,
		"permissions":  string(perms),
		"createdAt":    sa.CreatedAt.UTC(),
	}, nil
}

const subAdminColumns = `id, name, email, password_hash, permissions, created_at`

func (s *adminStore) AddSubAdmin(ctx context.Context, sa *entity.SubAdmin) error {
	params, err := subAdminParams(sa)
	if err != nil {
		return err
	}
	err = ExecNamed(ctx, s.DB(), `
	INSERT INTO sub_admin (`+subAdminColumns+`)
	VALUES (:id, :name, :email, :passwordHash, :permissions, :createdAt)`, params)
	if err != nil {
		if IsErrUniqueViolation(err) {
			return gerr.SubAdminExists
		}
		return fmt.Errorf("can't add sub-admin: %w", err)
	}
	return nil
}

func (s *adminStore) UpdateSubAdmin(ctx context.Context, sa *entity.SubAdmin) error {
	params, err := subAdminParams(sa)
	if err != nil {
		return err
	}
	res, err := s.DB().ExecContext(ctx, `
	UPDATE sub_admin SET name = ?, email = ?, password_hash = ?, permissions = ?
	WHERE id = ?`,
		params["name"], params["email"], params["passwordHash"], params["permissions"], sa.Id)
	if err != nil {
		if IsErrUniqueViolation(err) {
			return gerr.SubAdminExists
		}
		return fmt.Errorf("can't update sub-admin: %w", err)
	}
	// MySQL reports zero affected rows for unchanged values, so check existence separately.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetSubAdminById(ctx, sa.Id); err != nil {
			return err
		}
	}
	return nil
}

func (s *adminStore) DeleteSubAdmin(ctx context.Context, id string) error {
	res, err := s.DB().ExecContext(ctx, `DELETE FROM sub_admin WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("can't delete sub-admin: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if ra == 0 {
		return gerr.SubAdminNotFound
	}
	return nil
}

func (s *adminStore) getOne(ctx context.Context, where string, params map[string]any) (*entity.SubAdmin, error) {
	row, err := QueryNamedOne[subAdminRow](ctx, s.DB(),
		`SELECT `+subAdminColumns+` FROM sub_admin WHERE `+where, params)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gerr.SubAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't get sub-admin: %w", err)
	}
	sa := row.toEntity()
	return &sa, nil
}

func (s *adminStore) GetSubAdminById(ctx context.Context, id string) (*entity.SubAdmin, error) {
	return s.getOne(ctx, `id = :id`, map[string]any{"id": id})
}

func (s *adminStore) GetSubAdminByEmail(ctx context.Context, email string) (*entity.SubAdmin, error) {
	return s.getOne(ctx, `LOWER(email) = :email`, map[string]any{
		"email": strings.ToLower(strings.TrimSpace(email)),
	})
}

func (s *adminStore) ListSubAdmins(ctx context.Context) ([]entity.SubAdmin, error) {
	rows, err := QueryListNamed[subAdminRow](ctx, s.DB(),
		`SELECT `+subAdminColumns+` FROM sub_admin ORDER BY email`, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't list sub-admins: %w", err)
	}
	sas := make([]entity.SubAdmin, 0, len(rows))
	for i := range rows {
		sas = append(sas, rows[i].toEntity())
	}
	return sas, nil
}
