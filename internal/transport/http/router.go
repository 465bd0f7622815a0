// Package http реализует внешнюю границу сервиса заказов: REST-операции
// над заказами и служебные эндпоинты health/readiness.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/antonrybakov/ordersaga/internal/health"
)

// NewRouter собирает маршруты сервиса заказов.
func NewRouter(handler *Handler, healthHandler *health.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/orders", handler.CreateOrder)
	r.Get("/orders/{id}", handler.GetOrder)
	r.Get("/orders/user/{buyerID}", handler.ListOrdersByBuyer)
	r.Put("/orders/order-status", handler.UpdateOrderStatus)
	r.Delete("/orders/{id}", handler.DeleteOrder)

	if healthHandler != nil {
		r.Get("/health", healthHandler.ServeHTTP)
		r.Get("/health/live", health.LivenessHandler)
		r.Get("/health/ready", healthHandler.ReadinessHandler)
	}
	return r
}
