// internal/app/features/donations/routes.go
package donations

import (
	"github.com/go-chi/chi/v5"
	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/domain/models"
)

// Routes returns the /donations subrouter. Browsing is public; writes are
// split between restaurant owners and admins.
func Routes(h *Handler, mw *auth.Middleware, roles auth.RoleLookup) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListVerified)
	r.Get("/featured", h.ListFeatured)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireVerified)

		r.Get("/{id}", h.Get)

		r.Post("/{id}/favorite", h.Favorite)
		r.Delete("/{id}/favorite", h.Unfavorite)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(roles, models.RoleRestaurant))
			r.Post("/", h.Post)
			r.Get("/mine", h.ListMine)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(roles, models.RoleAdmin))
			r.Patch("/status/{id}", h.Moderate)
			r.Patch("/featured/{id}", h.SetFeatured)
		})
	})

	return r
}
