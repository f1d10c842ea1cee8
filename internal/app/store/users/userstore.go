// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/helal366/flexora-server/internal/app/system/normalize"
	"github.com/helal366/flexora-server/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// ErrDuplicateEmail is returned when creating a user whose email already exists.
var ErrDuplicateEmail = errors.New("a user with this email already exists")

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// RoleByEmail returns just the stored role for an email.
func (s *Store) RoleByEmail(ctx context.Context, email string) (string, error) {
	var doc struct {
		Role string `bson:"role"`
	}
	opts := bson.M{"email": normalize.Email(email)}
	if err := s.c.FindOne(ctx, opts).Decode(&doc); err != nil {
		return "", err
	}
	return doc.Role, nil
}

// Create inserts a new user after normalizing fields. The default role is
// "user"; roles only move after that through the lifecycle manager.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.Name = normalize.Name(u.Name)
	if u.Role == "" {
		u.Role = models.RoleUser
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// SetLastLogin stamps the last sign-in time.
func (s *Store) SetLastLogin(ctx context.Context, email string, at time.Time) (int64, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{"$set": bson.M{"last_login": at, "updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// ProfileUpdate holds the plain last-write-wins profile fields.
type ProfileUpdate struct {
	ContactNumber       string
	OrganizationName    string
	OrganizationEmail   string
	OrganizationContact string
	OrganizationAddress string
	OrganizationTagline string
	OrganizationLogo    string
	Mission             string
	PhotoURL            string
}

// UpdateProfile applies a profile update to the user with the given email.
func (s *Store) UpdateProfile(ctx context.Context, email string, upd ProfileUpdate) (int64, error) {
	set := bson.M{
		"contact_number":       upd.ContactNumber,
		"organization_name":    upd.OrganizationName,
		"organization_email":   upd.OrganizationEmail,
		"organization_contact": upd.OrganizationContact,
		"organization_address": upd.OrganizationAddress,
		"organization_tagline": upd.OrganizationTagline,
		"organization_logo":    upd.OrganizationLogo,
		"mission":              upd.Mission,
		"photoURL":             upd.PhotoURL,
		"updated_at":           time.Now().UTC(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"email": normalize.Email(email)}, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// SetRoleRequest moves a user into a role-request role and records the
// supporting organization fields plus the paying transaction reference.
func (s *Store) SetRoleRequest(ctx context.Context, email, requestRole, transectionID string, upd ProfileUpdate) (int64, error) {
	set := bson.M{
		"role":                 requestRole,
		"transection_id":       transectionID,
		"contact_number":       upd.ContactNumber,
		"organization_name":    upd.OrganizationName,
		"organization_email":   upd.OrganizationEmail,
		"organization_contact": upd.OrganizationContact,
		"organization_address": upd.OrganizationAddress,
		"organization_tagline": upd.OrganizationTagline,
		"organization_logo":    upd.OrganizationLogo,
		"mission":              upd.Mission,
		"updated_at":           time.Now().UTC(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"email": normalize.Email(email)}, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// SetRole changes a user's role directly.
func (s *Store) SetRole(ctx context.Context, email, role string) (int64, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// ListAll returns every user, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, bson.M{})
}

// ListByRoles returns users whose role is in the given set.
func (s *Store) ListByRoles(ctx context.Context, roles []string) ([]models.User, error) {
	return s.list(ctx, bson.M{"role": bson.M{"$in": roles}})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Delete removes a user document by ID. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
