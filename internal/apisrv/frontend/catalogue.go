package frontend

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/myshop/myshop-manager/internal/apisrv/response"
	"github.com/myshop/myshop-manager/internal/dto"
	"github.com/myshop/myshop-manager/internal/entity"
)

// ListProducts returns the catalogue, optionally narrowed to the products
// deliverable to ?region=.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := s.repo.Products().ListProducts(r.Context())
	if err != nil {
		response.Error(w, r, "can't list products", err)
		return
	}
	region := r.URL.Query().Get("region")
	out := make([]entity.Product, 0, len(ps))
	for i := range ps {
		if ps[i].AvailableIn(region) {
			out = append(out, ps[i])
		}
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityProductsToDto(out))
}

func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.repo.Products().GetProductById(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, "can't get product", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityProductToDto(p))
}

func (s *Server) GetHeroSection(w http.ResponseWriter, r *http.Request) {
	h, err := s.repo.Settings().GetHeroSection(r.Context())
	if err != nil {
		response.Error(w, r, "can't get hero section", err)
		return
	}
	response.JSON(w, r, http.StatusOK, h)
}

// SendChatMessage posts a customer message. The sender is always the
// customer; replies go through the admin API.
func (s *Server) SendChatMessage(w http.ResponseWriter, r *http.Request) {
	req := &dto.ChatMessageNew{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "", err)
		return
	}
	m, err := dto.ConvertChatMessageNewToEntity(req, s.now())
	if err != nil {
		response.Error(w, r, "", err)
		return
	}
	if err := s.repo.Chat().AddChatMessage(r.Context(), m); err != nil {
		response.Error(w, r, "can't add chat message", err)
		return
	}
	response.JSON(w, r, http.StatusCreated, dto.ConvertEntityChatMessageToDto(m))
}

func (s *Server) GetChat(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.repo.Chat().ListChatMessages(r.Context(), chi.URLParam(r, "deviceId"))
	if err != nil {
		response.Error(w, r, "can't list chat messages", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityChatMessagesToDto(msgs))
}
