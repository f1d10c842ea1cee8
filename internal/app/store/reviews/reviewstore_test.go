package reviewstore_test

import (
	"testing"

	reviewstore "github.com/helal366/flexora-server/internal/app/store/reviews"
	"github.com/helal366/flexora-server/internal/testutil"
)

func TestStore_ListByDonation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	other := fx.CreateDonation(ctx, "Bread", "Spice House", "rest@x.com")

	fx.CreateReview(ctx, d.ID, "A", "a@x.com")
	fx.CreateReview(ctx, d.ID, "B", "b@x.com")
	fx.CreateReview(ctx, other.ID, "C", "c@x.com")

	list, err := store.ListByDonation(ctx, d.ID)
	if err != nil {
		t.Fatalf("ListByDonation failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("got %d reviews, want 2", len(list))
	}
}

func TestStore_DeleteOwned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	r := fx.CreateReview(ctx, d.ID, "A", "a@x.com")

	deleted, err := store.DeleteOwned(ctx, r.ID, "other@x.com")
	if err != nil {
		t.Fatalf("DeleteOwned failed: %v", err)
	}
	if deleted != 0 {
		t.Fatal("non-author should not delete the review")
	}

	deleted, err = store.DeleteOwned(ctx, r.ID, "A@x.com")
	if err != nil {
		t.Fatalf("DeleteOwned failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}

func TestStore_DeleteByReviewer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	fx.CreateReview(ctx, d.ID, "A", "gone@x.com")
	fx.CreateReview(ctx, d.ID, "A", "gone@x.com")
	fx.CreateReview(ctx, d.ID, "B", "stays@x.com")

	deleted, err := store.DeleteByReviewer(ctx, "gone@x.com")
	if err != nil {
		t.Fatalf("DeleteByReviewer failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	list, err := store.ListByDonation(ctx, d.ID)
	if err != nil {
		t.Fatalf("ListByDonation failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d reviews left, want 1", len(list))
	}
}
