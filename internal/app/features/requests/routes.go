// internal/app/features/requests/routes.go
package requests

import (
	"github.com/go-chi/chi/v5"
	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/domain/models"
)

// Routes returns the /requests subrouter. Charities file and cancel;
// restaurants decide; both sides can read their own lists.
func Routes(h *Handler, mw *auth.Middleware, roles auth.RoleLookup) chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireVerified)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRole(roles, models.RoleCharity))
		r.Post("/", h.File)
		r.Get("/charity", h.ListMine)
		r.Get("/check/{id}", h.CheckClaim)
		r.Patch("/pickup/{id}", h.ConfirmPickup)
		r.Delete("/{id}", h.Cancel)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRole(roles, models.RoleRestaurant))
		r.Get("/restaurant", h.ListIncoming)
		r.Get("/donation/{id}", h.ListByDonation)
		r.Patch("/decide/{id}", h.Decide)
	})

	return r
}
