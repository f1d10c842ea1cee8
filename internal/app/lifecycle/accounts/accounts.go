// internal/app/lifecycle/accounts/accounts.go

// Package accounts owns the role-upgrade approval workflow and the cascading
// teardown that keeps the five dependent collections consistent when a user
// is deleted.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	donationstore "github.com/helal366/flexora-server/internal/app/store/donations"
	favoritestore "github.com/helal366/flexora-server/internal/app/store/favorites"
	requeststore "github.com/helal366/flexora-server/internal/app/store/requests"
	reviewstore "github.com/helal366/flexora-server/internal/app/store/reviews"
	transactionstore "github.com/helal366/flexora-server/internal/app/store/transactions"
	userstore "github.com/helal366/flexora-server/internal/app/store/users"
	"github.com/helal366/flexora-server/internal/app/system/apperr"
	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/app/system/htmlsanitize"
	"github.com/helal366/flexora-server/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Manager drives account lifecycle: sign-in bookkeeping, role requests and
// decisions, profile updates, and the deletion cascade.
type Manager struct {
	Users        *userstore.Store
	Transactions *transactionstore.Store
	Donations    *donationstore.Store
	Requests     *requeststore.Store
	Reviews      *reviewstore.Store
	Favorites    *favoritestore.Store
	Deleter      auth.AccountDeleter
	Log          *zap.Logger
}

func New(db *mongo.Database, deleter auth.AccountDeleter, logger *zap.Logger) *Manager {
	return &Manager{
		Users:        userstore.New(db),
		Transactions: transactionstore.New(db),
		Donations:    donationstore.New(db),
		Requests:     requeststore.New(db),
		Reviews:      reviewstore.New(db),
		Favorites:    favoritestore.New(db),
		Deleter:      deleter,
		Log:          logger,
	}
}

// EnsureUser creates the account on first sign-in. An existing email is a
// no-op, reported via the created flag.
func (m *Manager) EnsureUser(ctx context.Context, u models.User) (models.User, bool, error) {
	if u.Email == "" {
		return models.User{}, false, apperr.E(apperr.InvalidInput, "email is required")
	}
	u.Name = htmlsanitize.Plain(u.Name)

	existing, err := m.Users.GetByEmail(ctx, u.Email)
	if err == nil {
		return *existing, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, false, fmt.Errorf("looking up user: %w", err)
	}

	created, err := m.Users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			// Lost a create race; the account exists now, which is what the
			// caller wanted.
			if existing, gerr := m.Users.GetByEmail(ctx, u.Email); gerr == nil {
				return *existing, false, nil
			}
		}
		return models.User{}, false, fmt.Errorf("creating user: %w", err)
	}
	return created, true, nil
}

// RecordLastLogin stamps the sign-in time.
func (m *Manager) RecordLastLogin(ctx context.Context, email string, at time.Time) error {
	matched, err := m.Users.SetLastLogin(ctx, email, at)
	if err != nil {
		return fmt.Errorf("recording last login: %w", err)
	}
	if matched == 0 {
		return apperr.E(apperr.NotFound, "user not found")
	}
	return nil
}

// UpdateProfile applies a last-write-wins profile update to the caller's own
// account.
func (m *Manager) UpdateProfile(ctx context.Context, callerEmail, targetEmail string, upd userstore.ProfileUpdate) error {
	if callerEmail != targetEmail {
		return apperr.E(apperr.Forbidden, "email mismatch")
	}
	sanitizeProfile(&upd)
	matched, err := m.Users.UpdateProfile(ctx, targetEmail, upd)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if matched == 0 {
		return apperr.E(apperr.NotFound, "user not found")
	}
	return nil
}

func sanitizeProfile(upd *userstore.ProfileUpdate) {
	upd.OrganizationName = htmlsanitize.Plain(upd.OrganizationName)
	upd.OrganizationTagline = htmlsanitize.Plain(upd.OrganizationTagline)
	upd.OrganizationAddress = htmlsanitize.Plain(upd.OrganizationAddress)
	upd.Mission = htmlsanitize.Sanitize(upd.Mission)
}

// RequestRoleUpgrade moves the caller into a role-request role. The upgrade
// is paid: a recorded transaction for the email must exist.
func (m *Manager) RequestRoleUpgrade(ctx context.Context, callerEmail, targetEmail, requestRole string, upd userstore.ProfileUpdate) error {
	if callerEmail != targetEmail {
		return apperr.E(apperr.Forbidden, "email mismatch")
	}
	if requestRole != models.RoleCharityRequest && requestRole != models.RoleRestaurantRequest {
		return apperr.E(apperr.InvalidInput, "role must be a charity or restaurant role request")
	}

	txn, err := m.Transactions.LatestByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.E(apperr.Conflict, "no payment on record for this account")
		}
		return fmt.Errorf("looking up transaction: %w", err)
	}

	sanitizeProfile(&upd)
	matched, err := m.Users.SetRoleRequest(ctx, targetEmail, requestRole, txn.TransectionID, upd)
	if err != nil {
		return fmt.Errorf("submitting role request: %w", err)
	}
	if matched == 0 {
		return apperr.E(apperr.NotFound, "user not found")
	}
	m.Log.Info("role upgrade requested",
		zap.String("email", targetEmail),
		zap.String("requested_role", requestRole))
	return nil
}

// ListRoleRequests returns users awaiting an admin role decision.
func (m *Manager) ListRoleRequests(ctx context.Context) ([]models.User, error) {
	return m.Users.ListByRoles(ctx, models.RoleRequestRoles)
}

// RoleDecision reports the outcome of a role-request decision, including
// whether the payment record could be mirrored.
type RoleDecision struct {
	Email             string `json:"email"`
	NewRole           string `json:"new_role"`
	TransactionStatus string `json:"transaction_status,omitempty"`
	// TransactionMirrored is false when no payment record was found to
	// mirror; the role change itself still stands.
	TransactionMirrored bool `json:"transaction_mirrored"`
}

// DecideRoleRequest approves or rejects a pending role request and mirrors
// the decision onto the candidate's most recent transaction.
func (m *Manager) DecideRoleRequest(ctx context.Context, candidateEmail string, approve bool) (RoleDecision, error) {
	candidate, err := m.Users.GetByEmail(ctx, candidateEmail)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return RoleDecision{}, apperr.E(apperr.NotFound, "candidate user not found")
		}
		return RoleDecision{}, fmt.Errorf("looking up candidate: %w", err)
	}

	newRole := models.RoleUser
	txnStatus := models.TransactionRejected
	if approve {
		newRole = models.TargetRoleFor(candidate.Role)
		if newRole == "" {
			return RoleDecision{}, apperr.E(apperr.Conflict, "user has no pending role request")
		}
		txnStatus = models.TransactionApproved
	}

	if _, err := m.Users.SetRole(ctx, candidateEmail, newRole); err != nil {
		return RoleDecision{}, fmt.Errorf("updating role: %w", err)
	}

	decision := RoleDecision{Email: candidate.Email, NewRole: newRole}

	// Mirror the outcome onto the payment record. Absence is reported, not
	// fatal: the role change is the source of truth.
	txn, err := m.Transactions.LatestByEmail(ctx, candidateEmail)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return decision, fmt.Errorf("looking up transaction: %w", err)
		}
		m.Log.Warn("no transaction to mirror role decision",
			zap.String("email", candidateEmail))
		return decision, nil
	}
	if _, err := m.Transactions.SetStatus(ctx, txn.ID, txnStatus); err != nil {
		return decision, fmt.Errorf("mirroring transaction status: %w", err)
	}
	decision.TransactionStatus = txnStatus
	decision.TransactionMirrored = true

	m.Log.Info("role request decided",
		zap.String("email", candidateEmail),
		zap.String("new_role", newRole),
		zap.Bool("approved", approve))
	return decision, nil
}

// DirectRoleChange lets an admin set any valid role without the request
// workflow.
func (m *Manager) DirectRoleChange(ctx context.Context, candidateEmail, role string) error {
	if !models.ValidRole(role) {
		return apperr.E(apperr.InvalidInput, "unknown role")
	}
	matched, err := m.Users.SetRole(ctx, candidateEmail, role)
	if err != nil {
		return fmt.Errorf("changing role: %w", err)
	}
	if matched == 0 {
		return apperr.E(apperr.NotFound, "user not found")
	}
	return nil
}

// StepOutcome is one collection's share of the deletion cascade.
type StepOutcome struct {
	DeletedCount int64  `json:"deleted_count"`
	Error        string `json:"error,omitempty"`
}

// CascadeReport itemizes what the teardown touched, so partial success is
// observable and auditable rather than silently swallowed.
type CascadeReport struct {
	ProviderDeleted bool        `json:"provider_deleted"`
	Transactions    StepOutcome `json:"transactions"`
	Donations       StepOutcome `json:"donations"`
	Requests        StepOutcome `json:"requests"`
	Reviews         StepOutcome `json:"reviews"`
	Favorites       StepOutcome `json:"favorites"`
	UserDeleted     int64       `json:"user_deleted"`
}

// DeleteUser tears an account down across collections:
//
//  1. resolve the user (NotFound if absent)
//  2. delete the identity-provider account; this is the only all-or-nothing
//     step, since an orphaned provider account cannot be retried by callers
//  3. best-effort independent deletes of the dependent records, each
//     reported separately
//  4. delete the user document last
//
// Requests referencing a deleted restaurant's donations are left dangling on
// purpose; value joins tolerate them.
func (m *Manager) DeleteUser(ctx context.Context, id primitive.ObjectID) (CascadeReport, error) {
	var report CascadeReport

	u, err := m.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return report, apperr.E(apperr.NotFound, "user not found")
		}
		return report, fmt.Errorf("loading user: %w", err)
	}

	if u.UID != "" {
		if err := m.Deleter.DeleteAccount(ctx, u.UID); err != nil {
			return report, apperr.Wrap(apperr.Upstream, "identity provider deletion failed", err)
		}
		report.ProviderDeleted = true
	} else {
		m.Log.Warn("user has no identity-provider uid, skipping provider deletion",
			zap.String("user_id", id.Hex()))
	}

	report.Transactions = m.step(func() (int64, error) { return m.Transactions.DeleteByEmail(ctx, u.Email) })

	if u.Role == models.RoleRestaurant {
		report.Donations = m.step(func() (int64, error) { return m.Donations.DeleteByRestaurant(ctx, u.Email) })
	}
	if u.Role == models.RoleCharity {
		report.Requests = m.step(func() (int64, error) { return m.Requests.DeleteByCharity(ctx, u.Email) })
	}
	if u.Role == models.RoleUser || u.Role == models.RoleCharity {
		report.Reviews = m.step(func() (int64, error) { return m.Reviews.DeleteByReviewer(ctx, u.Email) })
		report.Favorites = m.step(func() (int64, error) { return m.Favorites.DeleteByUser(ctx, u.Email) })
	}

	deleted, err := m.Users.Delete(ctx, id)
	if err != nil {
		return report, fmt.Errorf("deleting user document: %w", err)
	}
	report.UserDeleted = deleted

	m.Log.Info("user deleted",
		zap.String("user_id", id.Hex()),
		zap.String("email", u.Email),
		zap.String("role", u.Role),
		zap.Bool("provider_deleted", report.ProviderDeleted))
	return report, nil
}

// step runs one independent cascade deletion; failures are recorded in the
// report instead of aborting the rest.
func (m *Manager) step(del func() (int64, error)) StepOutcome {
	n, err := del()
	out := StepOutcome{DeletedCount: n}
	if err != nil {
		out.Error = err.Error()
		m.Log.Error("cascade step failed", zap.Error(err))
	}
	return out
}
