// internal/app/features/payments/handler.go
package payments

import (
	"net/http"

	transactionstore "github.com/helal366/flexora-server/internal/app/store/transactions"
	"github.com/helal366/flexora-server/internal/app/system/apperr"
	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/app/system/httpjson"
	"github.com/helal366/flexora-server/internal/app/system/normalize"
	syspayments "github.com/helal366/flexora-server/internal/app/system/payments"
	"github.com/helal366/flexora-server/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the payment endpoints: creating processor intents and
// recording captured transactions.
type Handler struct {
	Processor    syspayments.Processor
	Transactions *transactionstore.Store
	Log          *zap.Logger
}

func NewHandler(p syspayments.Processor, s *transactionstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Processor: p, Transactions: s, Log: logger}
}

type intentRequest struct {
	Amount int64 `json:"amount"` // major currency units; converted downstream
}

// CreateIntent handles POST /payments/create-payment-intent.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if req.Amount <= 0 {
		httpjson.WriteError(w, h.Log, apperr.E(apperr.InvalidInput, "amount must be positive"))
		return
	}

	intent, err := h.Processor.CreateIntent(r.Context(), req.Amount)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{
		"clientSecret": intent.ClientSecret,
	})
}

type saveRequest struct {
	TransectionID string `json:"transection_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Purpose       string `json:"purpose"`
}

// Save handles POST /payments/save-transection: records a captured payment
// under the caller's email so the role-upgrade workflow can find it.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)

	var req saveRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if req.TransectionID == "" {
		httpjson.WriteError(w, h.Log, apperr.E(apperr.InvalidInput, "transection_id is required"))
		return
	}

	saved, err := h.Transactions.Insert(r.Context(), models.Transaction{
		TransectionID: req.TransectionID,
		Email:         callerID.Email,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Purpose:       req.Purpose,
	})
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	h.Log.Info("transaction recorded",
		zap.String("transection_id", saved.TransectionID),
		zap.String("email", saved.Email))
	httpjson.Write(w, http.StatusCreated, saved)
}

// ListMine handles GET /payments/transections: the caller's payment history.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CurrentIdentity(r)

	list, err := h.Transactions.ListByEmail(r.Context(), normalize.Email(callerID.Email))
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}
