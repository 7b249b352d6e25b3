package frontend

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/myshop/myshop-manager/internal/apisrv/response"
	"github.com/myshop/myshop-manager/internal/dependency"
	"github.com/myshop/myshop-manager/internal/dto"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/myshop/myshop-manager/internal/middleware"
	"github.com/myshop/myshop-manager/internal/ratelimit"
	"github.com/myshop/myshop-manager/internal/stats"
)

// Server implements handlers for storefront requests.
type Server struct {
	repo    dependency.Repository
	mailer  dependency.Mailer
	stats   *stats.Service
	limiter *ratelimit.MultiKeyLimiter
	now     func() time.Time
}

// New creates a new server with storefront handlers.
func New(r dependency.Repository, m dependency.Mailer, st *stats.Service, limiter *ratelimit.MultiKeyLimiter) *Server {
	if limiter == nil {
		limiter = ratelimit.NewMultiKeyLimiter()
	}
	return &Server{
		repo:    r,
		mailer:  m,
		stats:   st,
		limiter: limiter,
		now:     time.Now,
	}
}

// Mount registers the public routes on r, which is expected to be mounted
// at /api.
func (s *Server) Mount(r chi.Router) {
	r.Post("/orders", s.SubmitOrder)
	r.Get("/orders/search", s.SearchOrders)
	r.Get("/shipping-fees", s.GetShippingFees)
	r.Get("/stats", s.GetPlatformStats)
	r.Get("/products", s.ListProducts)
	r.Get("/products/{id}", s.GetProduct)
	r.Get("/hero-section", s.GetHeroSection)
	r.Post("/chat", s.SendChatMessage)
	r.Get("/chat/{deviceId}", s.GetChat)
}

// SubmitOrder places a checkout order and queues the confirmation mail.
func (s *Server) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := &dto.OrderNew{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "", err)
		return
	}

	if err := s.limiter.CheckOrderCreation(middleware.GetClientIP(ctx), strings.TrimSpace(req.Buyer.Email)); err != nil {
		render.Render(w, r, response.ErrTooManyRequests(err))
		return
	}

	o, err := dto.ConvertOrderNewToEntity(req, uuid.NewString(), s.now())
	if err != nil {
		response.Error(w, r, "", err)
		return
	}
	if err := s.repo.Order().AddOrder(ctx, o); err != nil {
		response.Error(w, r, "can't add order", err)
		return
	}
	s.stats.Invalidate(ctx)

	if err := s.mailer.QueueOrderConfirmation(ctx, o); err != nil {
		slog.Default().ErrorContext(ctx, "can't queue order confirmation",
			slog.String("order", o.Id),
			slog.String("err", err.Error()),
		)
	}
	response.JSON(w, r, http.StatusCreated, dto.ConvertEntityOrderToDto(o))
}

// SearchOrders lets a buyer find their orders by email or phone.
func (s *Server) SearchOrders(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if email == "" && phone == "" {
		response.Error(w, r, "", gerr.Validation("", "email or phone is required"))
		return
	}
	orders, err := s.repo.Order().SearchOrders(r.Context(), email, phone)
	if err != nil {
		response.Error(w, r, "can't search orders", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityOrdersToDto(orders))
}

func (s *Server) GetShippingFees(w http.ResponseWriter, r *http.Request) {
	ss, err := s.repo.Settings().GetShippingSettings(r.Context())
	if err != nil {
		response.Error(w, r, "can't get shipping settings", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityShippingSettingsToDto(ss))
}

// GetPlatformStats returns the all-time totals shown on the storefront.
func (s *Server) GetPlatformStats(w http.ResponseWriter, r *http.Request) {
	ps, err := s.stats.Platform(r.Context())
	if err != nil {
		response.Error(w, r, "can't get platform stats", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityPlatformStatsToDto(ps))
}
