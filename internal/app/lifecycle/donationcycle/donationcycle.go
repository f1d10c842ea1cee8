// internal/app/lifecycle/donationcycle/donationcycle.go

// Package donationcycle owns the donation state machine and the lock
// invariant: is_locked is true exactly when one request on the donation has
// been accepted, and it only ever flips through the store's conditional
// single-document write.
package donationcycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	donationstore "github.com/helal366/flexora-server/internal/app/store/donations"
	favoritestore "github.com/helal366/flexora-server/internal/app/store/favorites"
	"github.com/helal366/flexora-server/internal/app/system/apperr"
	"github.com/helal366/flexora-server/internal/app/system/htmlsanitize"
	"github.com/helal366/flexora-server/internal/app/system/normalize"
	"github.com/helal366/flexora-server/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Manager drives donation lifecycle transitions.
type Manager struct {
	Donations *donationstore.Store
	Favorites *favoritestore.Store
	Log       *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Manager {
	return &Manager{
		Donations: donationstore.New(db),
		Favorites: favoritestore.New(db),
		Log:       logger,
	}
}

// Post creates a donation for the calling restaurant. Authorization lives
// here: the declared owner must be the caller (credential verification is the
// boundary layer's job).
func (m *Manager) Post(ctx context.Context, callerEmail string, d models.Donation) (models.Donation, error) {
	if d.Title == "" {
		return models.Donation{}, apperr.E(apperr.InvalidInput, "title is required")
	}
	if d.RestaurantEmail == "" {
		return models.Donation{}, apperr.E(apperr.InvalidInput, "restaurant_email is required")
	}
	if normalize.Email(d.RestaurantEmail) != normalize.Email(callerEmail) {
		return models.Donation{}, apperr.E(apperr.Forbidden, "donation owner does not match caller")
	}

	d.Title = htmlsanitize.Plain(d.Title)
	d.Description = htmlsanitize.Sanitize(d.Description)
	d.Location = htmlsanitize.Plain(d.Location)

	created, err := m.Donations.Create(ctx, d)
	if err != nil {
		return models.Donation{}, fmt.Errorf("posting donation: %w", err)
	}
	m.Log.Info("donation posted",
		zap.String("donation_id", created.ID.Hex()),
		zap.String("restaurant", created.RestaurantEmail))
	return created, nil
}

// Moderate applies an admin moderation decision. Transitions among
// Pending/Verified/Rejected are free and have no effect on requests.
func (m *Manager) Moderate(ctx context.Context, id primitive.ObjectID, newStatus string) error {
	if !models.ValidDonationStatus(newStatus) {
		return apperr.E(apperr.InvalidInput, "unknown donation status")
	}
	matched, err := m.Donations.SetStatus(ctx, id, newStatus)
	if err != nil {
		return fmt.Errorf("moderating donation: %w", err)
	}
	if matched == 0 {
		return apperr.E(apperr.NotFound, "donation not found")
	}
	return nil
}

// Lock acquires the donation's exclusive-claim flag. Conflict means another
// accepted request already holds it; callers must treat that as losing the
// race, not as a transient failure.
func (m *Manager) Lock(ctx context.Context, id primitive.ObjectID) error {
	err := m.Donations.Lock(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, donationstore.ErrAlreadyLocked):
		return apperr.E(apperr.Conflict, "donation is already locked")
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.E(apperr.NotFound, "donation not found")
	default:
		return fmt.Errorf("locking donation: %w", err)
	}
}

// SetFeatured flips the featured flag (admin surface).
func (m *Manager) SetFeatured(ctx context.Context, id primitive.ObjectID, featured bool) error {
	matched, err := m.Donations.SetFeatured(ctx, id, featured)
	if err != nil {
		return fmt.Errorf("featuring donation: %w", err)
	}
	if matched == 0 {
		return apperr.E(apperr.NotFound, "donation not found")
	}
	return nil
}

// ConfirmPickup marks the donation picked up with the winning charity's
// display snapshot. Pickup on an unlocked donation is permitted for
// out-of-band corrections but flagged as a data-quality warning.
func (m *Manager) ConfirmPickup(ctx context.Context, id primitive.ObjectID, charityName, charityEmail string) error {
	d, err := m.Donations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.E(apperr.NotFound, "donation not found")
		}
		return fmt.Errorf("loading donation: %w", err)
	}
	if !d.IsLocked {
		m.Log.Warn("pickup confirmed on unlocked donation",
			zap.String("donation_id", id.Hex()),
			zap.String("charity", charityEmail))
	}

	if _, err := m.Donations.ConfirmPickup(ctx, id, charityName, charityEmail, time.Now().UTC()); err != nil {
		return fmt.Errorf("confirming pickup: %w", err)
	}
	return nil
}

// Favorite idempotently adds the caller to the donation's favoriter set and
// records a bookmark document with a display snapshot. The second call
// reports AlreadyFavorited instead of erroring silently or duplicating.
func (m *Manager) Favorite(ctx context.Context, id primitive.ObjectID, who string) error {
	d, err := m.Donations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.E(apperr.NotFound, "donation not found")
		}
		return fmt.Errorf("loading donation: %w", err)
	}

	if err := m.Donations.AddFavoriter(ctx, id, who); err != nil {
		switch {
		case errors.Is(err, donationstore.ErrAlreadyFavorited):
			return apperr.E(apperr.Conflict, "donation already favorited")
		case errors.Is(err, mongo.ErrNoDocuments):
			return apperr.E(apperr.NotFound, "donation not found")
		default:
			return fmt.Errorf("adding favoriter: %w", err)
		}
	}

	_, err = m.Favorites.Insert(ctx, models.Favorite{
		DonationID:     id,
		UserEmail:      who,
		DonationTitle:  d.Title,
		DonationImage:  d.Image,
		RestaurantName: d.RestaurantName,
		Location:       d.Location,
	})
	if err != nil && !errors.Is(err, favoritestore.ErrDuplicateFavorite) {
		// The favoriter set is authoritative; a bookmark insert failure is
		// recoverable on the next call.
		m.Log.Warn("favorite bookmark insert failed",
			zap.String("donation_id", id.Hex()), zap.Error(err))
	}
	return nil
}

// Unfavorite removes the caller from the favoriter set and drops the bookmark.
func (m *Manager) Unfavorite(ctx context.Context, id primitive.ObjectID, who string) error {
	if err := m.Donations.RemoveFavoriter(ctx, id, who); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.E(apperr.NotFound, "donation not found")
		}
		return fmt.Errorf("removing favoriter: %w", err)
	}
	if _, err := m.Favorites.Delete(ctx, id, who); err != nil {
		m.Log.Warn("favorite bookmark delete failed",
			zap.String("donation_id", id.Hex()), zap.Error(err))
	}
	return nil
}

// UpdateContent applies an owner edit.
func (m *Manager) UpdateContent(ctx context.Context, id primitive.ObjectID, callerEmail string, upd donationstore.ContentUpdate) error {
	if upd.Title == "" {
		return apperr.E(apperr.InvalidInput, "title is required")
	}
	upd.Title = htmlsanitize.Plain(upd.Title)
	upd.Description = htmlsanitize.Sanitize(upd.Description)
	upd.Location = htmlsanitize.Plain(upd.Location)

	matched, err := m.Donations.UpdateContent(ctx, id, callerEmail, upd)
	if err != nil {
		return fmt.Errorf("updating donation: %w", err)
	}
	if matched == 0 {
		// Either the donation is gone or the caller does not own it; both
		// present as not-found to avoid leaking ownership.
		return apperr.E(apperr.NotFound, "donation not found")
	}
	return nil
}

// Delete removes a donation owned by the caller.
func (m *Manager) Delete(ctx context.Context, id primitive.ObjectID, callerEmail string) error {
	deleted, err := m.Donations.DeleteOwned(ctx, id, callerEmail)
	if err != nil {
		return fmt.Errorf("deleting donation: %w", err)
	}
	if deleted == 0 {
		return apperr.E(apperr.NotFound, "donation not found")
	}
	m.Log.Info("donation deleted",
		zap.String("donation_id", id.Hex()),
		zap.String("restaurant", callerEmail))
	return nil
}
