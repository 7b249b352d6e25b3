package admin

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/myshop/myshop-manager/internal/apisrv/response"
	"github.com/myshop/myshop-manager/internal/dto"
	gerr "github.com/myshop/myshop-manager/internal/errors"
)

const (
	defaultReceiptsLimit = 50
	maxReceiptsLimit     = 500
)

// SaveReceipt stores a POS receipt. The server stamps savedAt and timestamp.
func (s *Server) SaveReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := &dto.SaveReceipt{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "", err)
		return
	}
	rc, err := dto.ConvertSaveReceiptToEntity(req, s.now())
	if err != nil {
		response.Error(w, r, "", err)
		return
	}
	if err := s.repo.Receipt().SaveReceipt(ctx, rc); err != nil {
		response.Error(w, r, "can't save receipt", err)
		return
	}
	s.stats.Invalidate(ctx)
	response.JSON(w, r, http.StatusCreated, dto.ConvertEntityReceiptToDto(rc))
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, gerr.Validation(name, "must be a non-negative integer")
	}
	return n, nil
}

// ListReceipts pages through receipts, newest first.
func (s *Server) ListReceipts(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultReceiptsLimit)
	if err != nil {
		response.Error(w, r, "", err)
		return
	}
	if limit == 0 || limit > maxReceiptsLimit {
		limit = maxReceiptsLimit
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		response.Error(w, r, "", err)
		return
	}

	rs, total, err := s.repo.Receipt().ListReceiptsPaged(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, r, "can't list receipts", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityReceiptsToPage(rs, total, limit, offset))
}

// ReceiptPDF renders a receipt as a printable ticket.
func (s *Server) ReceiptPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rc, err := s.repo.Receipt().GetReceiptById(r.Context(), id)
	if err != nil {
		response.Error(w, r, "can't get receipt", err)
		return
	}
	buf := &bytes.Buffer{}
	if err := s.report.ReceiptPDF(buf, rc); err != nil {
		response.Error(w, r, "can't render receipt", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=receipt-%s.pdf", rc.Id))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
