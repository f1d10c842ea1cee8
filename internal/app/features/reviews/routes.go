// internal/app/features/reviews/routes.go
package reviews

import (
	"github.com/go-chi/chi/v5"
	"github.com/helal366/flexora-server/internal/app/system/auth"
)

// Routes returns the /reviews subrouter. Reading is public; writing requires
// a verified caller.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Get("/donation/{id}", h.ListByDonation)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireVerified)
		r.Post("/", h.Create)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
