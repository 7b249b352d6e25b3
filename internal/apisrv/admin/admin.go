package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/myshop/myshop-manager/internal/apisrv/auth"
	"github.com/myshop/myshop-manager/internal/dependency"
	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/myshop/myshop-manager/internal/report"
	"github.com/myshop/myshop-manager/internal/stats"
)

// Server implements handlers for the admin dashboard and the POS.
type Server struct {
	repo   dependency.Repository
	mailer dependency.Mailer
	stats  *stats.Service
	report *report.Renderer
	auth   *auth.Server
	now    func() time.Time
}

// New creates a new server with admin handlers.
func New(
	r dependency.Repository,
	m dependency.Mailer,
	st *stats.Service,
	rr *report.Renderer,
	a *auth.Server,
) *Server {
	return &Server{
		repo:   r,
		mailer: m,
		stats:  st,
		report: rr,
		auth:   a,
		now:    time.Now,
	}
}

// Mount registers the authenticated routes on r, which is expected to be
// mounted at /api.
func (s *Server) Mount(r chi.Router) {
	r.Post("/admin/login", s.auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.WithAuth)

		r.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(auth.RequirePermission(entity.PermViewStatistics))
				r.Get("/real-time-stats", s.RealTimeStats)
				r.Get("/period-stats", s.PeriodStats)
				r.Get("/reports", s.Report)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequirePermission(entity.PermManageOrders))
				r.Get("/orders", s.ListOrders)
				r.Put("/orders/{id}", s.UpdateOrder)
				r.Delete("/orders/{id}", s.DeleteOrder)
			})

			r.With(auth.RequirePermission(entity.PermViewPOSAnalytics)).
				Get("/pos-stats", s.SalesChannels)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequirePermission(entity.PermManageShipping))
				r.Get("/shipping-fees", s.GetShippingFees)
				r.Put("/shipping-fees", s.SetShippingFees)
				r.Get("/main-shop-town", s.GetMainShopTown)
				r.Put("/main-shop-town", s.SetMainShopTown)
				r.Get("/free-shipping", s.GetFreeShipping)
				r.Put("/free-shipping", s.SetFreeShipping)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequirePermission(entity.PermManageProducts))
				r.Get("/products", s.ListProducts)
				r.Post("/products", s.AddProduct)
				r.Put("/products/{id}", s.UpdateProduct)
				r.Delete("/products/{id}", s.DeleteProduct)
				r.Put("/hero-section", s.SetHeroSection)
			})

			r.Route("/chats", func(r chi.Router) {
				r.Use(auth.RequirePermission(entity.PermManageChat))
				r.Get("/", s.ListConversations)
				r.Post("/{deviceId}/reply", s.ReplyChat)
				r.Put("/{deviceId}/read", s.MarkChatRead)
				r.Delete("/{deviceId}", s.DeleteConversation)
			})

			r.Route("/sub-admins", func(r chi.Router) {
				r.Use(auth.RequireSuper)
				r.Get("/", s.ListSubAdmins)
				r.Post("/", s.AddSubAdmin)
				r.Put("/{id}", s.UpdateSubAdmin)
				r.Delete("/{id}", s.DeleteSubAdmin)
			})
		})

		r.Route("/pos", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(auth.RequirePermission(entity.PermManagePOS))
				r.Post("/save-receipt", s.SaveReceipt)
				r.Get("/receipts", s.ListReceipts)
				r.Get("/receipts/{id}/pdf", s.ReceiptPDF)
			})
			r.With(auth.RequirePermission(entity.PermViewPOSAnalytics)).
				Get("/statistics", s.POSStatistics)
		})
	})
}

// SetClock replaces the time source used for timestamps and report names.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Server) queueStatusMail(ctx context.Context, o *entity.Order) {
	if err := s.mailer.QueueOrderStatus(ctx, o); err != nil {
		slog.Default().ErrorContext(ctx, "can't queue order status mail",
			slog.String("order", o.Id),
			slog.String("err", err.Error()),
		)
	}
}
