// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"
	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/domain/models"
)

// Routes returns the /users subrouter. Every endpoint requires a verified
// credential; the admin surface additionally requires the admin role.
func Routes(h *Handler, mw *auth.Middleware, roles auth.RoleLookup) chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireVerified)

	r.Post("/", h.Upsert)
	r.Get("/me", h.Me)
	r.Get("/role", h.Role)
	r.Patch("/profile", h.UpdateProfile)
	r.Patch("/role-request", h.RequestRole)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRole(roles, models.RoleAdmin))
		r.Get("/", h.List)
		r.Get("/role-requests", h.ListRoleRequests)
		r.Patch("/role-decide/{email}", h.DecideRole)
		r.Patch("/role/{email}", h.SetRole)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
