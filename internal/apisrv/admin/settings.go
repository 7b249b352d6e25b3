package admin

import (
	"net/http"
	"strings"

	"github.com/myshop/myshop-manager/internal/apisrv/response"
	"github.com/myshop/myshop-manager/internal/dto"
	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
)

func (s *Server) shippingSettings(w http.ResponseWriter, r *http.Request) (*entity.ShippingSettings, bool) {
	ss, err := s.repo.Settings().GetShippingSettings(r.Context())
	if err != nil {
		response.Error(w, r, "can't get shipping settings", err)
		return nil, false
	}
	return ss, true
}

func (s *Server) GetShippingFees(w http.ResponseWriter, r *http.Request) {
	if ss, ok := s.shippingSettings(w, r); ok {
		response.JSON(w, r, http.StatusOK, dto.ConvertEntityShippingSettingsToDto(ss))
	}
}

// SetShippingFees replaces the fee table. Towns drop out of the region list
// once they lose their fee.
func (s *Server) SetShippingFees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := &dto.ShippingFeesUpdate{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "", err)
		return
	}
	fees, err := req.Validate()
	if err != nil {
		response.Error(w, r, "", err)
		return
	}
	if err := s.repo.Settings().SetShippingFees(ctx, fees); err != nil {
		response.Error(w, r, "can't set shipping fees", err)
		return
	}
	s.stats.Invalidate(ctx)
	s.GetShippingFees(w, r)
}

func (s *Server) GetMainShopTown(w http.ResponseWriter, r *http.Request) {
	if ss, ok := s.shippingSettings(w, r); ok {
		response.JSON(w, r, http.StatusOK, dto.MainShopTown{MainShopTown: ss.MainShopTown})
	}
}

// SetMainShopTown moves the shop. Receipts are attributed to the new town
// from then on, for past periods as well.
func (s *Server) SetMainShopTown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := &dto.MainShopTown{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "", err)
		return
	}
	town := strings.TrimSpace(req.MainShopTown)
	if town == "" {
		response.Error(w, r, "", gerr.Validation("mainShopTown", "is required"))
		return
	}
	if err := s.repo.Settings().SetMainShopTown(ctx, town); err != nil {
		response.Error(w, r, "can't set main shop town", err)
		return
	}
	s.stats.Invalidate(ctx)
	response.JSON(w, r, http.StatusOK, dto.MainShopTown{MainShopTown: town})
}

func (s *Server) GetFreeShipping(w http.ResponseWriter, r *http.Request) {
	if ss, ok := s.shippingSettings(w, r); ok {
		response.JSON(w, r, http.StatusOK, dto.ConvertEntityFreeShippingToDto(ss))
	}
}

func (s *Server) SetFreeShipping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := &dto.FreeShippingUpdate{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(w, r, "", err)
		return
	}
	regions := req.RegionFreeShipping
	if regions == nil {
		regions = map[string]bool{}
	}
	if err := s.repo.Settings().SetFreeShipping(ctx, *req.Threshold, regions); err != nil {
		response.Error(w, r, "can't set free shipping", err)
		return
	}
	s.GetFreeShipping(w, r)
}
