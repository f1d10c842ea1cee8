// internal/app/features/requests/handler.go
package requests

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/helal366/flexora-server/internal/app/lifecycle/arbitration"
	"github.com/helal366/flexora-server/internal/app/system/apperr"
	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/app/system/httpjson"
	"github.com/helal366/flexora-server/internal/app/system/normalize"
	"github.com/helal366/flexora-server/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the request endpoints: filing, the restaurant's decision,
// pickup confirmation, and cancellation.
type Handler struct {
	Arbiter *arbitration.Manager
	Log     *zap.Logger
}

func NewHandler(m *arbitration.Manager, logger *zap.Logger) *Handler {
	return &Handler{Arbiter: m, Log: logger}
}

func requestID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.E(apperr.InvalidInput, "invalid request id")
	}
	return id, nil
}

type fileRequest struct {
	DonationID  string `json:"donation_id"`
	CharityName string `json:"charity_name"`
	CharityLogo string `json:"charity_logo"`
	Description string `json:"description"`
	PickupTime  string `json:"pickup_time"`
}

// File handles POST /requests (charity): a claim against a donation. At most
// one active claim per charity per donation; a locked donation refuses new
// claims outright.
func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)

	var req fileRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	donationID, err := primitive.ObjectIDFromHex(req.DonationID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.E(apperr.InvalidInput, "invalid donation id"))
		return
	}

	created, err := h.Arbiter.File(r.Context(), donationID, models.Request{
		CharityName:  req.CharityName,
		CharityEmail: normalize.Email(callerID.Email),
		CharityLogo:  req.CharityLogo,
		Description:  req.Description,
		PickupTime:   req.PickupTime,
	})
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, created)
}

// ListMine handles GET /requests/charity: the caller's own claims.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)

	list, err := h.Arbiter.Requests.ListByCharity(r.Context(), normalize.Email(callerID.Email))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// ListIncoming handles GET /requests/restaurant: claims against the calling
// restaurant's donations.
func (h *Handler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)

	list, err := h.Arbiter.Requests.ListByRestaurant(r.Context(), normalize.Email(callerID.Email))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// ListByDonation handles GET /requests/donation/{id}: claims against one of
// the calling restaurant's donations.
func (h *Handler) ListByDonation(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)
	id, err := requestID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.E(apperr.InvalidInput, "invalid donation id"))
		return
	}

	list, err := h.Arbiter.ListForRestaurant(r.Context(), id, normalize.Email(callerID.Email))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

type decideRequest struct {
	Decision string `json:"decision"`
}

// Decide handles PATCH /requests/decide/{id} (restaurant): accept or reject
// a pending claim against the caller's own donation. Accepting locks the
// donation and rejects the other pending claims; losing the lock race
// surfaces 409.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)
	id, err := requestID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	var req decideRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Arbiter.Decide(r.Context(), id, req.Decision, normalize.Email(callerID.Email)); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"decision": req.Decision})
}

// ConfirmPickup handles PATCH /requests/pickup/{id} (charity): the winner
// reports collection, mirrored onto the donation.
func (h *Handler) ConfirmPickup(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)
	id, err := requestID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Arbiter.ConfirmPickup(r.Context(), id, normalize.Email(callerID.Email)); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"picking_status": models.PickedUp})
}

// CheckClaim handles GET /requests/check/{id}: advisory pre-flight for the
// file button ({id} is the donation).
func (h *Handler) CheckClaim(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)
	id, err := requestID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.E(apperr.InvalidInput, "invalid donation id"))
		return
	}

	claim, err := h.Arbiter.CheckClaim(r.Context(), id, callerID.Email)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, claim)
}

// Cancel handles DELETE /requests/{id} (charity): withdraw an undecided
// claim.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)
	id, err := requestID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Arbiter.Cancel(r.Context(), id, normalize.Email(callerID.Email)); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"cancelled": true})
}
