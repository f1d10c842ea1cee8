package arbitration_test

import (
	"sync"
	"testing"

	"github.com/helal366/flexora-server/internal/app/lifecycle/arbitration"
	"github.com/helal366/flexora-server/internal/app/lifecycle/donationcycle"
	"github.com/helal366/flexora-server/internal/app/system/apperr"
	"github.com/helal366/flexora-server/internal/domain/models"
	"github.com/helal366/flexora-server/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newManager(t *testing.T) (*arbitration.Manager, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	donations := donationcycle.New(db, zap.NewNop())
	return arbitration.New(db, donations, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestManager_File(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")

	r, err := m.File(ctx, d.ID, models.Request{
		CharityName:  "Helping Hands",
		CharityEmail: "help@charity.org",
		Description:  "<script>x</script>We can pick up tonight",
	})
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	if r.RequestStatus != models.RequestPending {
		t.Errorf("status = %q, want pending", r.RequestStatus)
	}
	if r.DonationTitle != d.Title || r.RestaurantEmail != d.RestaurantEmail {
		t.Error("expected donation snapshot on the request")
	}
	if r.Description != "We can pick up tonight" {
		t.Errorf("description = %q, want sanitized", r.Description)
	}
}

func TestManager_File_DuplicateClaim(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	fx.CreateRequest(ctx, d, "Helping Hands", "help@charity.org")

	_, err := m.File(ctx, d.ID, models.Request{CharityName: "Helping Hands", CharityEmail: "help@charity.org"})
	if !apperr.Is(err, apperr.Conflict) {
		t.Errorf("got %v, want Conflict", err)
	}
}

func TestManager_File_LockedDonation(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	if err := m.Donations.Lock(ctx, d.ID); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	_, err := m.File(ctx, d.ID, models.Request{CharityName: "Late", CharityEmail: "late@charity.org"})
	if !apperr.Is(err, apperr.Conflict) {
		t.Errorf("got %v, want Conflict", err)
	}
}

func TestManager_Decide_AcceptOneRejectRest(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	ra := fx.CreateRequest(ctx, d, "A", "a@charity.org")
	rb := fx.CreateRequest(ctx, d, "B", "b@charity.org")
	rc := fx.CreateRequest(ctx, d, "C", "c@charity.org")

	if err := m.Decide(ctx, ra.ID, models.RequestAccepted, "rest@x.com"); err != nil {
		t.Fatalf("Decide(accept) failed: %v", err)
	}

	gotA, err := m.Requests.GetByID(ctx, ra.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if gotA.RequestStatus != models.RequestAccepted {
		t.Errorf("winner status = %q, want accepted", gotA.RequestStatus)
	}

	for _, id := range []struct {
		name string
		r    models.Request
	}{{"b", rb}, {"c", rc}} {
		got, err := m.Requests.GetByID(ctx, id.r.ID)
		if err != nil {
			t.Fatalf("GetByID(%s) failed: %v", id.name, err)
		}
		if got.RequestStatus != models.RequestRejected {
			t.Errorf("sibling %s status = %q, want rejected", id.name, got.RequestStatus)
		}
	}

	gotD, err := m.Donations.Donations.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID(donation) failed: %v", err)
	}
	if !gotD.IsLocked {
		t.Error("expected donation to be locked after acceptance")
	}

	// A second accept attempt on a rejected sibling loses cleanly.
	err = m.Decide(ctx, rb.ID, models.RequestAccepted, "rest@x.com")
	if !apperr.Is(err, apperr.Conflict) {
		t.Errorf("second accept: got %v, want Conflict", err)
	}
	gotB, err := m.Requests.GetByID(ctx, rb.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if gotB.RequestStatus != models.RequestRejected {
		t.Errorf("loser status = %q, want rejected", gotB.RequestStatus)
	}
}

func TestManager_Decide_ConcurrentAccepts_OneWinner(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")

	const n = 8
	reqs := make([]models.Request, n)
	for i := range reqs {
		reqs[i] = fx.CreateRequest(ctx, d, "C", "c"+string(rune('a'+i))+"@charity.org")
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.Decide(ctx, reqs[i].ID, models.RequestAccepted, "rest@x.com")
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
		case apperr.Is(err, apperr.Conflict):
		default:
			t.Errorf("decide %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("got %d winners, want exactly 1", winners)
	}

	count, err := m.Requests.CountAccepted(ctx, d.ID)
	if err != nil {
		t.Fatalf("CountAccepted failed: %v", err)
	}
	if count != 1 {
		t.Errorf("accepted count = %d, want 1", count)
	}

	gotD, err := m.Donations.Donations.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID(donation) failed: %v", err)
	}
	if !gotD.IsLocked {
		t.Error("expected donation locked")
	}
}

func TestManager_Decide_Reject(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	r := fx.CreateRequest(ctx, d, "A", "a@charity.org")

	if err := m.Decide(ctx, r.ID, models.RequestRejected, "rest@x.com"); err != nil {
		t.Fatalf("Decide(reject) failed: %v", err)
	}

	got, err := m.Requests.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.RequestStatus != models.RequestRejected {
		t.Errorf("status = %q, want rejected", got.RequestStatus)
	}

	gotD, err := m.Donations.Donations.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID(donation) failed: %v", err)
	}
	if gotD.IsLocked {
		t.Error("rejection must not lock the donation")
	}
}

func TestManager_Decide_RejectAccepted_Conflict(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	r := fx.CreateRequest(ctx, d, "A", "a@charity.org")

	if err := m.Decide(ctx, r.ID, models.RequestAccepted, "rest@x.com"); err != nil {
		t.Fatalf("Decide(accept) failed: %v", err)
	}
	err := m.Decide(ctx, r.ID, models.RequestRejected, "rest@x.com")
	if !apperr.Is(err, apperr.Conflict) {
		t.Errorf("got %v, want Conflict", err)
	}
}

func TestManager_Decide_OtherRestaurant_Forbidden(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	r := fx.CreateRequest(ctx, d, "A", "a@charity.org")

	err := m.Decide(ctx, r.ID, models.RequestAccepted, "other@x.com")
	if !apperr.Is(err, apperr.Forbidden) {
		t.Fatalf("got %v, want Forbidden", err)
	}

	got, err := m.Requests.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.RequestStatus != models.RequestPending {
		t.Errorf("status = %q, want still pending", got.RequestStatus)
	}
	gotD, err := m.Donations.Donations.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID(donation) failed: %v", err)
	}
	if gotD.IsLocked {
		t.Error("foreign decision must not lock the donation")
	}
}

func TestManager_Decide_InvalidDecision(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	r := fx.CreateRequest(ctx, d, "A", "a@charity.org")

	err := m.Decide(ctx, r.ID, "maybe", "rest@x.com")
	if !apperr.Is(err, apperr.InvalidInput) {
		t.Errorf("got %v, want InvalidInput", err)
	}
}

func TestManager_ConfirmPickup(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	r := fx.CreateRequest(ctx, d, "Helping Hands", "help@charity.org")

	// Pickup before acceptance must be refused.
	if err := m.ConfirmPickup(ctx, r.ID, "help@charity.org"); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("pre-accept pickup: got %v, want Conflict", err)
	}

	if err := m.Decide(ctx, r.ID, models.RequestAccepted, "rest@x.com"); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if err := m.ConfirmPickup(ctx, r.ID, "help@charity.org"); err != nil {
		t.Fatalf("ConfirmPickup failed: %v", err)
	}

	gotR, err := m.Requests.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if gotR.PickingStatus != models.PickedUp {
		t.Errorf("request picking_status = %q, want picked up", gotR.PickingStatus)
	}
	if gotR.PickedUpAt == nil {
		t.Error("expected pickup timestamp on the request")
	}

	gotD, err := m.Donations.Donations.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID(donation) failed: %v", err)
	}
	if gotD.DonationStatus != models.PickedUp {
		t.Errorf("donation donation_status = %q, want picked up", gotD.DonationStatus)
	}
	if gotD.CharityEmail != "help@charity.org" || gotD.CharityName != "Helping Hands" {
		t.Error("expected winning charity snapshot on the donation")
	}
}

func TestManager_ConfirmPickup_OtherCharity_Forbidden(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	r := fx.CreateRequest(ctx, d, "Helping Hands", "help@charity.org")

	if err := m.Decide(ctx, r.ID, models.RequestAccepted, "rest@x.com"); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if err := m.ConfirmPickup(ctx, r.ID, "other@charity.org"); !apperr.Is(err, apperr.Forbidden) {
		t.Fatalf("got %v, want Forbidden", err)
	}

	got, err := m.Requests.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.PickingStatus == models.PickedUp {
		t.Error("foreign pickup must not mark the request picked up")
	}
}

func TestManager_ListForRestaurant(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	fx.CreateRequest(ctx, d, "A", "a@charity.org")
	fx.CreateRequest(ctx, d, "B", "b@charity.org")

	list, err := m.ListForRestaurant(ctx, d.ID, "rest@x.com")
	if err != nil {
		t.Fatalf("ListForRestaurant failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("got %d requests, want 2", len(list))
	}

	if _, err := m.ListForRestaurant(ctx, d.ID, "other@x.com"); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("got %v, want Forbidden for another restaurant", err)
	}
}

func TestManager_CheckClaim(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")

	claim, err := m.CheckClaim(ctx, d.ID, "help@charity.org")
	if err != nil {
		t.Fatalf("CheckClaim failed: %v", err)
	}
	if claim.AlreadyRequested || claim.DonationLocked {
		t.Errorf("fresh donation: claim = %+v, want all false", claim)
	}

	r := fx.CreateRequest(ctx, d, "Helping Hands", "help@charity.org")
	if err := m.Decide(ctx, r.ID, models.RequestAccepted, "rest@x.com"); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	claim, err = m.CheckClaim(ctx, d.ID, "HELP@charity.org")
	if err != nil {
		t.Fatalf("CheckClaim failed: %v", err)
	}
	if !claim.AlreadyRequested || !claim.DonationLocked {
		t.Errorf("after accept: claim = %+v, want all true", claim)
	}
}

func TestManager_Cancel(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	r := fx.CreateRequest(ctx, d, "A", "a@charity.org")

	if err := m.Cancel(ctx, r.ID, "a@charity.org"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, err := m.Requests.GetByID(ctx, r.ID); err != mongo.ErrNoDocuments {
		t.Errorf("got %v, want ErrNoDocuments after cancel", err)
	}
}

func TestManager_Cancel_Accepted_Conflict(t *testing.T) {
	m, fx := newManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	r := fx.CreateRequest(ctx, d, "A", "a@charity.org")

	if err := m.Decide(ctx, r.ID, models.RequestAccepted, "rest@x.com"); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	err := m.Cancel(ctx, r.ID, "a@charity.org")
	if !apperr.Is(err, apperr.Conflict) {
		t.Errorf("got %v, want Conflict", err)
	}
}
