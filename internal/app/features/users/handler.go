// internal/app/features/users/handler.go
package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/helal366/flexora-server/internal/app/lifecycle/accounts"
	userstore "github.com/helal366/flexora-server/internal/app/store/users"
	"github.com/helal366/flexora-server/internal/app/system/apperr"
	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/app/system/httpjson"
	"github.com/helal366/flexora-server/internal/app/system/normalize"
	"github.com/helal366/flexora-server/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the account endpoints: sign-in bookkeeping, profile and
// role management, and account deletion.
type Handler struct {
	Accounts *accounts.Manager
	Log      *zap.Logger
}

func NewHandler(m *accounts.Manager, logger *zap.Logger) *Handler {
	return &Handler{Accounts: m, Log: logger}
}

type upsertRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL"`
}

type upsertResponse struct {
	User    models.User `json:"user"`
	Created bool        `json:"created"`
}

// Upsert handles POST /users. Called on every sign-in: creates the account
// the first time, stamps last_login every time.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentIdentity(r)

	var req upsertRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if req.Email != "" && normalize.Email(req.Email) != normalize.Email(id.Email) {
		httpjson.WriteError(w, h.Log, apperr.E(apperr.Forbidden, "email does not match credential"))
		return
	}

	u, created, err := h.Accounts.EnsureUser(r.Context(), models.User{
		Name:     req.Name,
		Email:    id.Email,
		UID:      id.UID,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Accounts.RecordLastLogin(r.Context(), u.Email, time.Now().UTC()); err != nil {
		h.Log.Warn("recording last login failed",
			zap.String("email", u.Email), zap.Error(err))
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpjson.Write(w, status, upsertResponse{User: u, Created: created})
}

// Me handles GET /users/me: the caller's own account document.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentIdentity(r)

	u, err := h.Accounts.Users.GetByEmail(r.Context(), id.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.WriteError(w, h.Log, apperr.E(apperr.NotFound, "user not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, u)
}

// Role handles GET /users/role: just the caller's stored role, used by
// clients for view gating.
func (h *Handler) Role(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentIdentity(r)

	role, err := h.Accounts.Users.RoleByEmail(r.Context(), id.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.WriteError(w, h.Log, apperr.E(apperr.NotFound, "user not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"role": role})
}

// List handles GET /users (admin): every account, for the management table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Accounts.Users.ListAll(r.Context())
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, users)
}

type profileRequest struct {
	Email               string `json:"email"`
	ContactNumber       string `json:"contact_number"`
	OrganizationName    string `json:"organization_name"`
	OrganizationEmail   string `json:"organization_email"`
	OrganizationContact string `json:"organization_contact"`
	OrganizationAddress string `json:"organization_address"`
	OrganizationTagline string `json:"organization_tagline"`
	OrganizationLogo    string `json:"organization_logo"`
	Mission             string `json:"mission"`
	PhotoURL            string `json:"photoURL"`
}

func (p profileRequest) update() userstore.ProfileUpdate {
	return userstore.ProfileUpdate{
		ContactNumber:       p.ContactNumber,
		OrganizationName:    p.OrganizationName,
		OrganizationEmail:   p.OrganizationEmail,
		OrganizationContact: p.OrganizationContact,
		OrganizationAddress: p.OrganizationAddress,
		OrganizationTagline: p.OrganizationTagline,
		OrganizationLogo:    p.OrganizationLogo,
		Mission:             p.Mission,
		PhotoURL:            p.PhotoURL,
	}
}

// UpdateProfile handles PATCH /users/profile: the caller edits their own
// organization profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentIdentity(r)

	var req profileRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	target := req.Email
	if target == "" {
		target = id.Email
	}

	err := h.Accounts.UpdateProfile(r.Context(), normalize.Email(id.Email), normalize.Email(target), req.update())
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"updated": true})
}

type roleRequestBody struct {
	profileRequest
	RequestRole string `json:"request_role"`
}

// RequestRole handles PATCH /users/role-request: the paid upgrade request
// that parks the account in a *_role_request role until an admin decides.
func (h *Handler) RequestRole(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentIdentity(r)

	var req roleRequestBody
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	target := req.Email
	if target == "" {
		target = id.Email
	}

	err := h.Accounts.RequestRoleUpgrade(r.Context(),
		normalize.Email(id.Email), normalize.Email(target),
		normalize.Role(req.RequestRole), req.update())
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "requested"})
}

// ListRoleRequests handles GET /users/role-requests (admin).
func (h *Handler) ListRoleRequests(w http.ResponseWriter, r *http.Request) {
	users, err := h.Accounts.ListRoleRequests(r.Context())
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, users)
}

type decideRoleRequest struct {
	Approve bool `json:"approve"`
}

// DecideRole handles PATCH /users/role-decide/{email} (admin): approve or
// reject a pending role request and mirror the outcome onto the payment.
func (h *Handler) DecideRole(w http.ResponseWriter, r *http.Request) {
	email := normalize.Email(chi.URLParam(r, "email"))

	var req decideRoleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	decision, err := h.Accounts.DecideRoleRequest(r.Context(), email, req.Approve)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, decision)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetRole handles PATCH /users/role/{email} (admin): direct role change
// outside the request workflow.
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	email := normalize.Email(chi.URLParam(r, "email"))

	var req setRoleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Accounts.DirectRoleChange(r.Context(), email, normalize.Role(req.Role)); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"role": normalize.Role(req.Role)})
}

// Delete handles DELETE /users/{id} (admin): the cross-collection teardown.
// The response itemizes what each cascade step removed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.E(apperr.InvalidInput, "invalid user id"))
		return
	}

	report, err := h.Accounts.DeleteUser(r.Context(), id)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, report)
}
