// internal/app/features/payments/routes.go
package payments

import (
	"github.com/go-chi/chi/v5"
	"github.com/helal366/flexora-server/internal/app/system/auth"
)

// Routes returns the /payments subrouter. Every endpoint requires a verified
// caller; the transaction is always recorded under the credential's email.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireVerified)

	r.Post("/create-payment-intent", h.CreateIntent)
	r.Post("/save-transection", h.Save)
	r.Get("/transections", h.ListMine)

	return r
}
