package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/myshop/myshop-manager/internal/apisrv/response"
	"github.com/myshop/myshop-manager/internal/dto"
)

func (s *Server) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.repo.Order().ListAllOrders(r.Context())
	if err != nil {
		response.Error(w, r, "can't list orders", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityOrdersToDto(orders))
}

// UpdateOrder changes the status or delivery agency of an order. A status
// change notifies the buyer.
func (s *Server) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	req := &dto.OrderUpdate{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "", err)
		return
	}
	upd, err := dto.ConvertOrderUpdateToEntity(req)
	if err != nil {
		response.Error(w, r, "", err)
		return
	}

	prev, err := s.repo.Order().GetOrderById(ctx, id)
	if err != nil {
		response.Error(w, r, "can't get order", err)
		return
	}
	o, err := s.repo.Order().UpdateOrder(ctx, id, upd)
	if err != nil {
		response.Error(w, r, "can't update order", err)
		return
	}
	s.stats.Invalidate(ctx)

	if o.Status != prev.Status {
		s.queueStatusMail(ctx, o)
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityOrderToDto(o))
}

func (s *Server) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.repo.Order().DeleteOrder(ctx, chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, "can't delete order", err)
		return
	}
	s.stats.Invalidate(ctx)
	response.JSON(w, r, http.StatusOK, response.Message{Message: "order deleted"})
}
