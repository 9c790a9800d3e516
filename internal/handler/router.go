package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the chi router with the global middleware stack and every
// API route.
func NewRouter(h *Handler, corsOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger)
	r.Use(CORS(corsOrigin))

	r.Get("/health", h.HealthCheck)

	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Get("/", h.ListEvents)
		r.Post("/{id}/visibility", h.SetVisibility)
		r.Post("/{id}/reset", h.ResetEvent)
		r.Delete("/{id}", h.DeleteEvent)
	})

	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.CreateProduct)
		r.Get("/", h.ListProducts)
		r.Delete("/{id}", h.DeleteProduct)
	})

	r.Route("/wristbands", func(r chi.Router) {
		r.Post("/", h.RegisterWristband)
		r.Get("/", h.ListWristbands)
		r.Post("/redeem-by-code", h.RedeemByCode)
		r.Get("/code/{code}", h.WristbandByCode)
		r.Get("/tag/{tag}", h.WristbandByTag)
		r.Post("/{id}/social", h.SetSocial)
		r.Delete("/{id}", h.DeleteWristband)
	})

	r.Route("/credits", func(r chi.Router) {
		r.Post("/topup", h.TopUp)
		r.Post("/debit", h.Debit)
		r.Get("/{wristbandId}", h.Balances)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/redeem", h.RedeemOrder)
	})

	r.Route("/operators", func(r chi.Router) {
		r.Post("/", h.CreateOperator)
		r.Get("/", h.ListOperators)
		r.Delete("/{id}", h.DeleteOperator)
	})
	r.Post("/login", h.Login)

	r.Route("/reports", func(r chi.Router) {
		r.Get("/revenue/{eventId}", h.Revenue)
		r.Get("/products/{eventId}", h.ProductSales)
		r.Get("/operators/{eventId}", h.OperatorActivity)
		r.Get("/log/{eventId}", h.Log)
		r.Get("/log/{eventId}/csv", h.LogCSV)
		r.Get("/export/{eventId}/csv", h.ExportCSV)
		r.Get("/audit/{eventId}", h.Audit)
	})

	return r
}
