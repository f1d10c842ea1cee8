// internal/app/features/favorites/routes.go
package favorites

import (
	"github.com/go-chi/chi/v5"
	"github.com/helal366/flexora-server/internal/app/system/auth"
)

// Routes returns the /favorites subrouter.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireVerified)
	r.Get("/", h.ListMine)
	return r
}
