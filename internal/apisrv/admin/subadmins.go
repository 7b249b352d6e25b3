package admin

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/myshop/myshop-manager/internal/apisrv/response"
	"github.com/myshop/myshop-manager/internal/dto"
	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
)

var errSuperAdminEmail = fmt.Errorf("email is reserved for the super admin: %w", gerr.ErrConflict)

func (s *Server) ListSubAdmins(w http.ResponseWriter, r *http.Request) {
	sas, err := s.repo.Admin().ListSubAdmins(r.Context())
	if err != nil {
		response.Error(w, r, "can't list sub-admins", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntitySubAdminsToDto(sas))
}

func (s *Server) AddSubAdmin(w http.ResponseWriter, r *http.Request) {
	req := &dto.SubAdminNew{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(w, r, "", err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if s.auth.IsSuperAdminEmail(email) {
		response.Error(w, r, "", errSuperAdminEmail)
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		response.Error(w, r, "can't hash password", err)
		return
	}
	sa := &entity.SubAdmin{
		Id:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Permissions:  entity.Permissions{},
		CreatedAt:    s.now(),
	}
	// validated above
	_ = dto.ConvertPermissions(req.Permissions, sa.Permissions)

	if err := s.repo.Admin().AddSubAdmin(r.Context(), sa); err != nil {
		response.Error(w, r, "can't add sub-admin", err)
		return
	}
	response.JSON(w, r, http.StatusCreated, dto.ConvertEntitySubAdminToDto(sa))
}

// UpdateSubAdmin applies the fields present in the request. Permissions not
// mentioned keep their value.
func (s *Server) UpdateSubAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := &dto.SubAdminUpdate{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(w, r, "", err)
		return
	}

	sa, err := s.repo.Admin().GetSubAdminById(ctx, chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, "can't get sub-admin", err)
		return
	}
	if req.Name != nil {
		sa.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if s.auth.IsSuperAdminEmail(email) {
			response.Error(w, r, "", errSuperAdminEmail)
			return
		}
		sa.Email = email
	}
	if req.Password != nil {
		if sa.PasswordHash, err = s.auth.HashPassword(*req.Password); err != nil {
			response.Error(w, r, "can't hash password", err)
			return
		}
	}
	if sa.Permissions == nil {
		sa.Permissions = entity.Permissions{}
	}
	_ = dto.ConvertPermissions(req.Permissions, sa.Permissions)

	if err := s.repo.Admin().UpdateSubAdmin(ctx, sa); err != nil {
		response.Error(w, r, "can't update sub-admin", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntitySubAdminToDto(sa))
}

func (s *Server) DeleteSubAdmin(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Admin().DeleteSubAdmin(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, "can't delete sub-admin", err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.Message{Message: "sub-admin deleted"})
}
