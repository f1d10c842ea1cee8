package requests_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/helal366/flexora-server/internal/app/features/requests"
	"github.com/helal366/flexora-server/internal/app/lifecycle/arbitration"
	"github.com/helal366/flexora-server/internal/app/lifecycle/donationcycle"
	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/domain/models"
	"github.com/helal366/flexora-server/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*requests.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	donations := donationcycle.New(db, zap.NewNop())
	m := arbitration.New(db, donations, zap.NewNop())
	return requests.NewHandler(m, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestFile(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")

	req := testutil.AuthenticatedRequest(t, "POST", "/requests", map[string]string{
		"donation_id":  d.ID.Hex(),
		"charity_name": "Helping Hands",
		"pickup_time":  "tonight 8pm",
	}, auth.Identity{Email: "help@charity.org"})
	rec := httptest.NewRecorder()
	h.File(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var created models.Request
	testutil.DecodeBody(t, rec, &created)
	if created.RequestStatus != models.RequestPending {
		t.Errorf("status = %q, want Pending", created.RequestStatus)
	}
	if created.CharityEmail != "help@charity.org" {
		t.Errorf("charity_email = %q, want caller identity", created.CharityEmail)
	}
	if created.DonationTitle != d.Title {
		t.Error("expected donation snapshot")
	}
}

func TestFile_Twice_Conflicts(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	id := auth.Identity{Email: "help@charity.org"}
	body := map[string]string{"donation_id": d.ID.Hex(), "charity_name": "Helping Hands"}

	rec := httptest.NewRecorder()
	h.File(rec, testutil.AuthenticatedRequest(t, "POST", "/requests", body, id))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first file: status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.File(rec, testutil.AuthenticatedRequest(t, "POST", "/requests", body, id))
	if rec.Code != http.StatusConflict {
		t.Errorf("second file: status = %d, want 409", rec.Code)
	}
}

func TestDecide_AcceptThenLateAccept(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	ra := fx.CreateRequest(ctx, d, "A", "a@charity.org")
	rb := fx.CreateRequest(ctx, d, "B", "b@charity.org")

	restaurant := auth.Identity{Email: "rest@x.com"}

	req := testutil.AuthenticatedRequest(t, "PATCH", "/requests/decide/"+ra.ID.Hex(),
		map[string]string{"decision": models.RequestAccepted}, restaurant)
	req = testutil.WithChiURLParam(req, "id", ra.ID.Hex())
	rec := httptest.NewRecorder()
	h.Decide(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: status = %d: %s", rec.Code, rec.Body.String())
	}

	req = testutil.AuthenticatedRequest(t, "PATCH", "/requests/decide/"+rb.ID.Hex(),
		map[string]string{"decision": models.RequestAccepted}, restaurant)
	req = testutil.WithChiURLParam(req, "id", rb.ID.Hex())
	rec = httptest.NewRecorder()
	h.Decide(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("late accept: status = %d, want 409", rec.Code)
	}
}

func TestDecide_OtherRestaurant_Forbidden(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	r := fx.CreateRequest(ctx, d, "A", "a@charity.org")

	req := testutil.AuthenticatedRequest(t, "PATCH", "/requests/decide/"+r.ID.Hex(),
		map[string]string{"decision": models.RequestAccepted}, auth.Identity{Email: "other@x.com"})
	req = testutil.WithChiURLParam(req, "id", r.ID.Hex())
	rec := httptest.NewRecorder()
	h.Decide(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for another restaurant's donation", rec.Code)
	}
}

func TestConfirmPickup_OtherCharity_Forbidden(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	r := fx.CreateRequest(ctx, d, "A", "a@charity.org")

	req := testutil.AuthenticatedRequest(t, "PATCH", "/requests/decide/"+r.ID.Hex(),
		map[string]string{"decision": models.RequestAccepted}, auth.Identity{Email: "rest@x.com"})
	req = testutil.WithChiURLParam(req, "id", r.ID.Hex())
	rec := httptest.NewRecorder()
	h.Decide(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: status = %d: %s", rec.Code, rec.Body.String())
	}

	req = testutil.AuthenticatedRequest(t, "PATCH", "/requests/pickup/"+r.ID.Hex(), nil,
		auth.Identity{Email: "b@charity.org"})
	req = testutil.WithChiURLParam(req, "id", r.ID.Hex())
	rec = httptest.NewRecorder()
	h.ConfirmPickup(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for someone else's request", rec.Code)
	}
}

func TestListByDonation_OtherRestaurant_Forbidden(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	fx.CreateRequest(ctx, d, "A", "a@charity.org")

	req := testutil.AuthenticatedRequest(t, "GET", "/requests/donation/"+d.ID.Hex(), nil,
		auth.Identity{Email: "other@x.com"})
	req = testutil.WithChiURLParam(req, "id", d.ID.Hex())
	rec := httptest.NewRecorder()
	h.ListByDonation(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for another restaurant's donation", rec.Code)
	}
}

func TestCheckClaim(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	fx.CreateRequest(ctx, d, "Helping Hands", "help@charity.org")

	req := testutil.AuthenticatedRequest(t, "GET", "/requests/check/"+d.ID.Hex(), nil,
		auth.Identity{Email: "help@charity.org"})
	req = testutil.WithChiURLParam(req, "id", d.ID.Hex())
	rec := httptest.NewRecorder()
	h.CheckClaim(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var claim struct {
		AlreadyRequested bool `json:"already_requested"`
		DonationLocked   bool `json:"donation_locked"`
	}
	testutil.DecodeBody(t, rec, &claim)
	if !claim.AlreadyRequested {
		t.Error("expected already_requested=true")
	}
	if claim.DonationLocked {
		t.Error("expected donation_locked=false before any acceptance")
	}
}

func TestCancel_NotOwnRequest(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDonation(ctx, "Rice", "Spice House", "rest@x.com")
	r := fx.CreateRequest(ctx, d, "A", "a@charity.org")

	req := testutil.AuthenticatedRequest(t, "DELETE", "/requests/"+r.ID.Hex(), nil,
		auth.Identity{Email: "other@charity.org"})
	req = testutil.WithChiURLParam(req, "id", r.ID.Hex())
	rec := httptest.NewRecorder()
	h.Cancel(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for someone else's request", rec.Code)
	}
}
