package payments_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/helal366/flexora-server/internal/app/features/payments"
	transactionstore "github.com/helal366/flexora-server/internal/app/store/transactions"
	"github.com/helal366/flexora-server/internal/app/system/auth"
	syspayments "github.com/helal366/flexora-server/internal/app/system/payments"
	"github.com/helal366/flexora-server/internal/domain/models"
	"github.com/helal366/flexora-server/internal/testutil"
	"go.uber.org/zap"
)

func TestCreateIntent(t *testing.T) {
	proc := &testutil.StubProcessor{
		Intent: syspayments.Intent{ID: "pi_1", ClientSecret: "pi_1_secret"},
	}
	h := payments.NewHandler(proc, nil, zap.NewNop())

	req := testutil.AuthenticatedRequest(t, "POST", "/payments/create-payment-intent",
		map[string]int64{"amount": 25}, auth.Identity{Email: "a@x.com"})
	rec := httptest.NewRecorder()
	h.CreateIntent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	testutil.DecodeBody(t, rec, &resp)
	if resp["clientSecret"] != "pi_1_secret" {
		t.Errorf("clientSecret = %q", resp["clientSecret"])
	}
	if len(proc.Amounts) != 1 || proc.Amounts[0] != 25 {
		t.Errorf("processor amounts = %v, want [25]", proc.Amounts)
	}
}

func TestCreateIntent_NonPositiveAmount(t *testing.T) {
	h := payments.NewHandler(&testutil.StubProcessor{}, nil, zap.NewNop())

	req := testutil.AuthenticatedRequest(t, "POST", "/payments/create-payment-intent",
		map[string]int64{"amount": 0}, auth.Identity{Email: "a@x.com"})
	rec := httptest.NewRecorder()
	h.CreateIntent(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSave(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := payments.NewHandler(&testutil.StubProcessor{}, transactionstore.New(db), zap.NewNop())

	req := testutil.AuthenticatedRequest(t, "POST", "/payments/save-transection", map[string]any{
		"transection_id": "pi_abc",
		"amount":         2500,
		"currency":       "usd",
		"purpose":        "charity_role",
	}, auth.Identity{Email: "Payer@X.com"})
	rec := httptest.NewRecorder()
	h.Save(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var saved models.Transaction
	testutil.DecodeBody(t, rec, &saved)
	if saved.Email != "payer@x.com" {
		t.Errorf("email = %q, want normalized caller identity", saved.Email)
	}
	if saved.Status != models.TransactionPending {
		t.Errorf("status = %q, want pending", saved.Status)
	}
}

func TestSave_MissingReference(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := payments.NewHandler(&testutil.StubProcessor{}, transactionstore.New(db), zap.NewNop())

	req := testutil.AuthenticatedRequest(t, "POST", "/payments/save-transection",
		map[string]any{"amount": 2500}, auth.Identity{Email: "a@x.com"})
	rec := httptest.NewRecorder()
	h.Save(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
