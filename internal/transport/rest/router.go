package rest

import (
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/salary-advance/internal/advance"
	"github.com/frahmantamala/salary-advance/internal/notification"
	"github.com/frahmantamala/salary-advance/internal/payment"
	"github.com/frahmantamala/salary-advance/internal/reimbursement"
	"github.com/frahmantamala/salary-advance/internal/transport/middleware"
	"github.com/frahmantamala/salary-advance/internal/transport/swagger"
	"github.com/frahmantamala/salary-advance/internal/user"
)

// Handlers groups the API handlers; a nil handler leaves its routes
// unregistered.
type Handlers struct {
	Health        *HealthHandler
	Advance       *advance.Handler
	Payment       *payment.Handler
	Webhook       *payment.WebhookHandler
	Reimbursement *reimbursement.Handler
	Notification  *notification.Handler
	User          *user.Handler
}

type Options struct {
	AllowedOrigins string
	// OpenAPIPath is validated at registration; empty disables the docs routes.
	OpenAPIPath string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) error {
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.OperatorContext)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	if opts.OpenAPIPath != "" {
		spec, err := swagger.SpecHandler(opts.OpenAPIPath)
		if err != nil {
			return err
		}
		router.Method("GET", swagger.SpecRoute, spec)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if h.Advance != nil {
			r.Route("/advances", func(ar chi.Router) {
				ar.Post("/", h.Advance.Submit)
				ar.Get("/", h.Advance.List)
				ar.Get("/{id}", h.Advance.Get)
				ar.Post("/{id}/approve", h.Advance.Approve)
				ar.Post("/{id}/reject", h.Advance.Reject)
			})
		}

		if h.Payment != nil {
			r.Get("/transactions", h.Payment.ListTransactions)
			r.Post("/payments/cashout", h.Payment.CashOut)
			r.Get("/payments/{payID}/status", h.Payment.Status)
			r.Post("/payments/{payID}/poll", h.Payment.Poll)
		}
		if h.Webhook != nil {
			r.Post("/payments/callback", h.Webhook.HandlePaymentCallback)
		}

		if h.Reimbursement != nil {
			r.Route("/reimbursements", func(rr chi.Router) {
				rr.Post("/", h.Reimbursement.Create)
				rr.Get("/", h.Reimbursement.List)
				rr.Get("/{id}", h.Reimbursement.Get)
				rr.Post("/{id}/pay", h.Reimbursement.Pay)
				rr.Post("/{id}/cancel", h.Reimbursement.Cancel)
			})
			r.Route("/partners/{partnerID}/reimbursements", func(pr chi.Router) {
				pr.Get("/", h.Reimbursement.List)
				pr.Post("/pay-all", h.Reimbursement.PayAll)
				pr.Get("/summary", h.Reimbursement.Summary)
			})
		}

		if h.Notification != nil {
			r.Route("/notifications", func(nr chi.Router) {
				nr.Post("/dispatch", h.Notification.Dispatch)
				nr.Get("/inbox", h.Notification.ListInbox)
				nr.Post("/inbox/{id}/read", h.Notification.MarkRead)
			})
		}

		if h.User != nil {
			r.Get("/staff/contacts", h.User.ListStaffContacts)
		}
	})

	return nil
}
