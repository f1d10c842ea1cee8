// internal/app/lifecycle/arbitration/arbitration.go

// Package arbitration owns the competitive-claim protocol between charities:
// filing requests, the accept-one/reject-rest decision, and pickup
// confirmation. The only cross-document invariant (at most one accepted
// request per donation) is reduced to the donation-lock compare-and-set;
// everything else here is best-effort follow-up that cannot violate it.
package arbitration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helal366/flexora-server/internal/app/lifecycle/donationcycle"
	requeststore "github.com/helal366/flexora-server/internal/app/store/requests"
	"github.com/helal366/flexora-server/internal/app/system/apperr"
	"github.com/helal366/flexora-server/internal/app/system/htmlsanitize"
	"github.com/helal366/flexora-server/internal/app/system/normalize"
	"github.com/helal366/flexora-server/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Manager arbitrates requests. It depends on the donation lifecycle manager
// for the lock; it never touches is_locked directly.
type Manager struct {
	Requests  *requeststore.Store
	Donations *donationcycle.Manager
	Log       *zap.Logger
}

func New(db *mongo.Database, donations *donationcycle.Manager, logger *zap.Logger) *Manager {
	return &Manager{
		Requests:  requeststore.New(db),
		Donations: donations,
		Log:       logger,
	}
}

// File claims a donation for a charity. The duplicate-claim and locked checks
// run here rather than in a separate endpoint, so a late filer gets Conflict
// instead of a silently doomed Pending request.
func (m *Manager) File(ctx context.Context, donationID primitive.ObjectID, r models.Request) (models.Request, error) {
	if r.CharityEmail == "" {
		return models.Request{}, apperr.E(apperr.InvalidInput, "charity_email is required")
	}

	d, err := m.Donations.Donations.GetByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Request{}, apperr.E(apperr.NotFound, "donation not found")
		}
		return models.Request{}, fmt.Errorf("loading donation: %w", err)
	}

	exists, err := m.Requests.HasActiveClaim(ctx, donationID, r.CharityEmail)
	if err != nil {
		return models.Request{}, fmt.Errorf("checking existing claim: %w", err)
	}
	if exists {
		return models.Request{}, apperr.E(apperr.Conflict, "request already filed for this donation")
	}
	if d.IsLocked {
		return models.Request{}, apperr.E(apperr.Conflict, "donation is already locked")
	}

	r.DonationID = donationID
	r.DonationTitle = d.Title
	r.RestaurantName = d.RestaurantName
	r.RestaurantEmail = d.RestaurantEmail
	r.Description = htmlsanitize.Sanitize(r.Description)

	created, err := m.Requests.Insert(ctx, r)
	if err != nil {
		if errors.Is(err, requeststore.ErrDuplicateClaim) {
			// The unique index caught a race past the pre-check.
			return models.Request{}, apperr.E(apperr.Conflict, "request already filed for this donation")
		}
		return models.Request{}, fmt.Errorf("filing request: %w", err)
	}
	m.Log.Info("request filed",
		zap.String("request_id", created.ID.Hex()),
		zap.String("donation_id", donationID.Hex()),
		zap.String("charity", created.CharityEmail))
	return created, nil
}

// Decide resolves a pending request. Accepting runs the arbitration protocol:
//
//  1. conditionally transition this request Pending→Accepted
//  2. acquire the donation lock (single conditional write)
//  3. bulk-reject the other Pending requests (best-effort)
//
// A lost lock race rolls step 1 back to Rejected and surfaces Conflict, so a
// request is never left dangling in Accepted without the lock.
//
// Only the restaurant the request targets may decide it.
func (m *Manager) Decide(ctx context.Context, requestID primitive.ObjectID, decision, restaurantEmail string) error {
	r, err := m.Requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.E(apperr.NotFound, "request not found")
		}
		return fmt.Errorf("loading request: %w", err)
	}
	if r.RestaurantEmail != normalize.Email(restaurantEmail) {
		return apperr.E(apperr.Forbidden, "request targets another restaurant's donation")
	}

	switch decision {
	case models.RequestRejected:
		if r.RequestStatus == models.RequestAccepted {
			return apperr.E(apperr.Conflict, "request is already accepted")
		}
		if _, err := m.Requests.SetStatus(ctx, requestID, models.RequestRejected); err != nil {
			return fmt.Errorf("rejecting request: %w", err)
		}
		return nil

	case models.RequestAccepted:
		accepted, err := m.Requests.AcceptIfPending(ctx, requestID)
		if err != nil {
			return fmt.Errorf("accepting request: %w", err)
		}
		if !accepted {
			return apperr.E(apperr.Conflict, "request is no longer pending")
		}

		if err := m.Donations.Lock(ctx, r.DonationID); err != nil {
			// Lost the race (or the donation vanished): roll back so the
			// at-most-one-winner invariant holds.
			if _, rbErr := m.Requests.SetStatus(ctx, requestID, models.RequestRejected); rbErr != nil {
				m.Log.Error("rollback to rejected failed after lock conflict",
					zap.String("request_id", requestID.Hex()), zap.Error(rbErr))
			}
			if apperr.Is(err, apperr.Conflict) {
				return apperr.E(apperr.Conflict, "another request won this donation")
			}
			return err
		}

		rejected, err := m.Requests.RejectOtherPending(ctx, r.DonationID, requestID)
		if err != nil {
			// Best-effort: the winner holds the lock, so stragglers cannot be
			// accepted; they will be rejected on their own Decide attempts.
			m.Log.Warn("bulk sibling rejection failed",
				zap.String("donation_id", r.DonationID.Hex()), zap.Error(err))
		}
		m.Log.Info("request accepted",
			zap.String("request_id", requestID.Hex()),
			zap.String("donation_id", r.DonationID.Hex()),
			zap.Int64("siblings_rejected", rejected))
		return nil

	default:
		return apperr.E(apperr.InvalidInput, "decision must be Accepted or Rejected")
	}
}

// ConfirmPickup records pickup on the winning request and mirrors it onto the
// donation with the charity snapshot carried on the request. Only the charity
// that filed the request may confirm.
func (m *Manager) ConfirmPickup(ctx context.Context, requestID primitive.ObjectID, charityEmail string) error {
	r, err := m.Requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.E(apperr.NotFound, "request not found")
		}
		return fmt.Errorf("loading request: %w", err)
	}
	if r.CharityEmail != normalize.Email(charityEmail) {
		return apperr.E(apperr.Forbidden, "request belongs to another charity")
	}
	if r.DonationID.IsZero() {
		return apperr.E(apperr.NotFound, "request has no associated donation")
	}
	if r.RequestStatus != models.RequestAccepted {
		return apperr.E(apperr.Conflict, "only an accepted request can confirm pickup")
	}

	matched, err := m.Requests.ConfirmPickup(ctx, requestID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("confirming request pickup: %w", err)
	}
	if matched == 0 {
		return apperr.E(apperr.Conflict, "request is no longer accepted")
	}

	return m.Donations.ConfirmPickup(ctx, r.DonationID, r.CharityName, r.CharityEmail)
}

// ListForRestaurant returns every request filed against a donation, scoped
// to the restaurant that owns it.
func (m *Manager) ListForRestaurant(ctx context.Context, donationID primitive.ObjectID, restaurantEmail string) ([]models.Request, error) {
	d, err := m.Donations.Donations.GetByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.E(apperr.NotFound, "donation not found")
		}
		return nil, fmt.Errorf("loading donation: %w", err)
	}
	if d.RestaurantEmail != normalize.Email(restaurantEmail) {
		return nil, apperr.E(apperr.Forbidden, "donation belongs to another restaurant")
	}
	return m.Requests.ListByDonation(ctx, donationID)
}

// Claim is the read-only answer to "can this charity still file here".
type Claim struct {
	AlreadyRequested bool `json:"already_requested"`
	DonationLocked   bool `json:"donation_locked"`
}

// CheckClaim lets filers short-circuit before attempting File. It is advisory
// only; File re-checks under its own race protections.
func (m *Manager) CheckClaim(ctx context.Context, donationID primitive.ObjectID, charityEmail string) (Claim, error) {
	d, err := m.Donations.Donations.GetByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Claim{}, apperr.E(apperr.NotFound, "donation not found")
		}
		return Claim{}, fmt.Errorf("loading donation: %w", err)
	}

	exists, err := m.Requests.HasActiveClaim(ctx, donationID, normalize.Email(charityEmail))
	if err != nil {
		return Claim{}, fmt.Errorf("checking existing claim: %w", err)
	}
	return Claim{AlreadyRequested: exists, DonationLocked: d.IsLocked}, nil
}

// Cancel withdraws a charity's own request while it is still pending.
func (m *Manager) Cancel(ctx context.Context, requestID primitive.ObjectID, charityEmail string) error {
	deleted, err := m.Requests.DeleteIfPending(ctx, requestID, charityEmail)
	if err != nil {
		return fmt.Errorf("cancelling request: %w", err)
	}
	if deleted == 0 {
		r, gerr := m.Requests.GetByID(ctx, requestID)
		if gerr == nil && r.RequestStatus != models.RequestPending {
			return apperr.E(apperr.Conflict, "only a pending request can be cancelled")
		}
		return apperr.E(apperr.NotFound, "request not found")
	}
	return nil
}
