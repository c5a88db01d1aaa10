package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/mkostin/shardstore/docs"
	authhandlers "github.com/mkostin/shardstore/internal/handlers/auth"
	cashbackhandlers "github.com/mkostin/shardstore/internal/handlers/cashback"
	checkouthandlers "github.com/mkostin/shardstore/internal/handlers/checkout"
	ipnhandlers "github.com/mkostin/shardstore/internal/handlers/ipn"
	ordershandlers "github.com/mkostin/shardstore/internal/handlers/orders"
	"github.com/mkostin/shardstore/internal/service"
	"github.com/mkostin/shardstore/pkg/auth"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type CheckoutHandler interface {
	Checkout(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	GetOrders(w http.ResponseWriter, r *http.Request)
}

type CashbackHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
}

type IPNHandler interface {
	HandleIPN(w http.ResponseWriter, r *http.Request)
	Replay(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler     AuthHandler
	CheckoutHandler CheckoutHandler
	OrderHandler    OrderHandler
	CashbackHandler CashbackHandler
	IPNHandler      IPNHandler
}

func New(s *service.Services) *Handlers {
	return &Handlers{
		AuthHandler:     authhandlers.New(s.AuthService),
		CheckoutHandler: checkouthandlers.New(s.CheckoutService),
		OrderHandler:    ordershandlers.New(s.CheckoutService),
		CashbackHandler: cashbackhandlers.New(s.CashbackService),
		IPNHandler:      ipnhandlers.New(s.IPNService),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))

	// the payment provider calls this one, no auth
	r.Post("/api/payment/ipn", h.IPNHandler.HandleIPN)

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", h.AuthHandler.Register)
		r.Post("/login", h.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware)
			r.Post("/checkout", h.CheckoutHandler.Checkout)
			r.Get("/orders", h.OrderHandler.GetOrders)
			r.Route("/cashback", func(r chi.Router) {
				r.Get("/", h.CashbackHandler.GetBalance)
				r.Get("/history", h.CashbackHandler.GetHistory)
			})
			r.Post("/ipn/{eventID}/replay", h.IPNHandler.Replay)
		})
	})

	return r
}
