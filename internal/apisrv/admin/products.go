package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/myshop/myshop-manager/internal/apisrv/response"
	"github.com/myshop/myshop-manager/internal/dto"
	"github.com/myshop/myshop-manager/internal/entity"
)

func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := s.repo.Products().ListProducts(r.Context())
	if err != nil {
		response.Error(w, r, "can't list products", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityProductsToDto(ps))
}

func (s *Server) AddProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := &dto.ProductNew{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "", err)
		return
	}
	p, err := dto.ConvertProductNewToEntity(req, uuid.NewString(), s.now())
	if err != nil {
		response.Error(w, r, "", err)
		return
	}
	if err := s.repo.Products().AddProduct(ctx, p); err != nil {
		response.Error(w, r, "can't add product", err)
		return
	}
	s.stats.Invalidate(ctx)
	response.JSON(w, r, http.StatusCreated, dto.ConvertEntityProductToDto(p))
}

// UpdateProduct merges the request into the stored product.
func (s *Server) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := &dto.ProductUpdate{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "", err)
		return
	}
	p, err := s.repo.Products().GetProductById(ctx, chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, "can't get product", err)
		return
	}
	if err := req.Apply(p, s.now()); err != nil {
		response.Error(w, r, "", err)
		return
	}
	if err := s.repo.Products().UpdateProduct(ctx, p); err != nil {
		response.Error(w, r, "can't update product", err)
		return
	}
	s.stats.Invalidate(ctx)
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityProductToDto(p))
}

func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.repo.Products().DeleteProduct(ctx, chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, "can't delete product", err)
		return
	}
	s.stats.Invalidate(ctx)
	response.JSON(w, r, http.StatusOK, response.Message{Message: "product deleted"})
}

// SetHeroSection keeps the current value of every blank field.
func (s *Server) SetHeroSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := &entity.HeroSection{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "", err)
		return
	}
	cur, err := s.repo.Settings().GetHeroSection(ctx)
	if err != nil {
		response.Error(w, r, "can't get hero section", err)
		return
	}
	h := req.Merge(cur)
	if err := s.repo.Settings().SetHeroSection(ctx, h); err != nil {
		response.Error(w, r, "can't set hero section", err)
		return
	}
	response.JSON(w, r, http.StatusOK, h)
}
