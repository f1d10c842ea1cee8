// internal/app/features/donations/handler.go
package donations

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/helal366/flexora-server/internal/app/lifecycle/donationcycle"
	donationstore "github.com/helal366/flexora-server/internal/app/store/donations"
	"github.com/helal366/flexora-server/internal/app/system/apperr"
	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/app/system/httpjson"
	"github.com/helal366/flexora-server/internal/app/system/normalize"
	"github.com/helal366/flexora-server/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the donation endpoints: posting, browsing, moderation,
// featuring, bookmarking, and owner edits.
type Handler struct {
	Cycle *donationcycle.Manager
	Log   *zap.Logger
}

func NewHandler(m *donationcycle.Manager, logger *zap.Logger) *Handler {
	return &Handler{Cycle: m, Log: logger}
}

func donationID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.E(apperr.InvalidInput, "invalid donation id")
	}
	return id, nil
}

type postRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	FoodType        string `json:"food_type"`
	Quantity        string `json:"quantity"`
	Location        string `json:"location"`
	PickupWindow    string `json:"pickup_window"`
	Image           string `json:"image"`
	RestaurantName  string `json:"restaurant_name"`
	RestaurantEmail string `json:"restaurant_email"`
}

// Post handles POST /donations (restaurant): a new surplus listing, created
// Pending until an admin verifies it.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentIdentity(r)

	var req postRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	d, err := h.Cycle.Post(r.Context(), id.Email, models.Donation{
		Title:           req.Title,
		Description:     req.Description,
		FoodType:        req.FoodType,
		Quantity:        req.Quantity,
		Location:        req.Location,
		PickupWindow:    req.PickupWindow,
		Image:           req.Image,
		RestaurantName:  req.RestaurantName,
		RestaurantEmail: req.RestaurantEmail,
	})
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, d)
}

// ListVerified handles GET /donations: the public browse surface. Only
// Verified donations appear.
func (h *Handler) ListVerified(w http.ResponseWriter, r *http.Request) {
	list, err := h.Cycle.Donations.ListVerified(r.Context())
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// ListFeatured handles GET /donations/featured.
func (h *Handler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	list, err := h.Cycle.Donations.ListFeatured(r.Context())
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// ListMine handles GET /donations/mine (restaurant): the caller's own
// listings regardless of moderation status.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentIdentity(r)

	list, err := h.Cycle.Donations.ListByRestaurant(r.Context(), normalize.Email(id.Email))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// Get handles GET /donations/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := donationID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	d, err := h.Cycle.Donations.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.WriteError(w, h.Log, apperr.E(apperr.NotFound, "donation not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, d)
}

type moderateRequest struct {
	Status string `json:"status"`
}

// Moderate handles PATCH /donations/status/{id} (admin): the
// Pending/Verified/Rejected decision.
func (h *Handler) Moderate(w http.ResponseWriter, r *http.Request) {
	id, err := donationID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	var req moderateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Cycle.Moderate(r.Context(), id, req.Status); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": req.Status})
}

type featureRequest struct {
	Featured bool `json:"featured"`
}

// SetFeatured handles PATCH /donations/featured/{id} (admin).
func (h *Handler) SetFeatured(w http.ResponseWriter, r *http.Request) {
	id, err := donationID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	var req featureRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Cycle.SetFeatured(r.Context(), id, req.Featured); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"featured": req.Featured})
}

type updateRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	FoodType     string `json:"food_type"`
	Quantity     string `json:"quantity"`
	Location     string `json:"location"`
	PickupWindow string `json:"pickup_window"`
	Image        string `json:"image"`
}

// Update handles PATCH /donations/{id} (restaurant owner edit).
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)
	id, err := donationID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	err = h.Cycle.UpdateContent(r.Context(), id, normalize.Email(callerID.Email), donationstore.ContentUpdate{
		Title:        req.Title,
		Description:  req.Description,
		FoodType:     req.FoodType,
		Quantity:     req.Quantity,
		Location:     req.Location,
		PickupWindow: req.PickupWindow,
		Image:        req.Image,
	})
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"updated": true})
}

// Delete handles DELETE /donations/{id} (restaurant owner).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)
	id, err := donationID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Cycle.Delete(r.Context(), id, normalize.Email(callerID.Email)); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Favorite handles POST /donations/{id}/favorite.
func (h *Handler) Favorite(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)
	id, err := donationID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Cycle.Favorite(r.Context(), id, normalize.Email(callerID.Email)); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"favorited": true})
}

// Unfavorite handles DELETE /donations/{id}/favorite.
func (h *Handler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)
	id, err := donationID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Cycle.Unfavorite(r.Context(), id, normalize.Email(callerID.Email)); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"favorited": false})
}
