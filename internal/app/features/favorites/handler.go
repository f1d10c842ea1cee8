// internal/app/features/favorites/handler.go
package favorites

import (
	"net/http"

	favoritestore "github.com/helal366/flexora-server/internal/app/store/favorites"
	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/app/system/httpjson"
	"github.com/helal366/flexora-server/internal/app/system/normalize"
	"go.uber.org/zap"
)

// Handler serves the caller's saved-donation bookmarks. Adding and removing
// live on the donation endpoints; this is the read side.
type Handler struct {
	Favorites *favoritestore.Store
	Log       *zap.Logger
}

func NewHandler(s *favoritestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Favorites: s, Log: logger}
}

// ListMine handles GET /favorites.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)

	list, err := h.Favorites.ListByUser(r.Context(), normalize.Email(callerID.Email))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}
