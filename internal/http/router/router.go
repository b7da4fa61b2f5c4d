// Package router assembles the HTTP surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"delivery-tracking/internal/http/handlers"
	mw "delivery-tracking/internal/http/middleware"
	"delivery-tracking/internal/logx"
)

// Deps are the handlers and middleware the router mounts.
type Deps struct {
	Base          *handlers.Handlers
	Orders        *handlers.OrderHandler
	Notifications *handlers.NotificationHandler
	WS            *handlers.WSHandler

	Logger     logx.Logger
	AuthSecret string

	// RateLimit is optional; nil disables limiting.
	RateLimit func(http.Handler) http.Handler

	// Debug is optional; when set it is mounted at /debug/pprof.
	Debug http.Handler
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.Observability(d.Logger))
	if d.RateLimit != nil {
		r.Use(d.RateLimit)
	}

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())
	if d.Debug != nil {
		r.Handle("/debug/pprof/*", d.Debug)
		r.Handle("/debug/pprof", d.Debug)
	}

	r.Group(func(pr chi.Router) {
		pr.Use(mw.Auth(d.AuthSecret, d.Logger))

		pr.Post("/orders", d.Orders.Create)
		pr.Get("/orders/{id}", d.Orders.Get)
		pr.Post("/orders/{id}/pay", d.Orders.Pay)
		pr.Post("/orders/{id}/assign-courier", d.Orders.Assign)
		pr.Post("/orders/{id}/tracking", d.Orders.Tracking)
		pr.Post("/orders/{id}/review", d.Orders.Review)

		pr.Get("/notifications", d.Notifications.List)
		pr.Post("/notifications/{id}/read", d.Notifications.MarkRead)

		pr.Get("/ws/couriers/{id}/location", d.WS.CourierLocation)
		pr.Get("/ws/orders/{id}/location", d.WS.OrderLocation)
	})

	r.NotFound(http.HandlerFunc(d.Base.NotFound))

	return r
}
