// internal/app/features/reviews/handler.go
package reviews

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	reviewstore "github.com/helal366/flexora-server/internal/app/store/reviews"
	"github.com/helal366/flexora-server/internal/app/system/apperr"
	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/app/system/htmlsanitize"
	"github.com/helal366/flexora-server/internal/app/system/httpjson"
	"github.com/helal366/flexora-server/internal/app/system/normalize"
	"github.com/helal366/flexora-server/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves donation reviews.
type Handler struct {
	Reviews *reviewstore.Store
	Log     *zap.Logger
}

func NewHandler(s *reviewstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Reviews: s, Log: logger}
}

type createRequest struct {
	DonationID   string `json:"donation_id"`
	ReviewerName string `json:"reviewer_name"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}

// Create handles POST /reviews.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	donationID, err := primitive.ObjectIDFromHex(req.DonationID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.E(apperr.InvalidInput, "invalid donation id"))
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		httpjson.WriteError(w, h.Log, apperr.E(apperr.InvalidInput, "rating must be between 1 and 5"))
		return
	}

	created, err := h.Reviews.Insert(r.Context(), models.Review{
		DonationID:    donationID,
		ReviewerName:  htmlsanitize.Plain(req.ReviewerName),
		ReviewerEmail: callerID.Email,
		Rating:        req.Rating,
		Comment:       htmlsanitize.Sanitize(req.Comment),
	})
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, created)
}

// ListByDonation handles GET /reviews/donation/{id}.
func (h *Handler) ListByDonation(w http.ResponseWriter, r *http.Request) {
	donationID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.E(apperr.InvalidInput, "invalid donation id"))
		return
	}

	list, err := h.Reviews.ListByDonation(r.Context(), donationID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// Delete handles DELETE /reviews/{id}: authors remove their own reviews.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.E(apperr.InvalidInput, "invalid review id"))
		return
	}

	deleted, err := h.Reviews.DeleteOwned(r.Context(), id, normalize.Email(callerID.Email))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if deleted == 0 {
		httpjson.WriteError(w, h.Log, apperr.E(apperr.NotFound, "review not found"))
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"deleted": true})
}
