package subscriptions

import (
	"errors"
	"testing"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	return cat
}

func TestBuildCheckoutMonthlyUsesPlanPrice(t *testing.T) {
	cat := testCatalog(t)
	plan, _ := cat.Plan("professional")
	req, err := BuildCheckoutRequest(cat, 7, "ana@example.com", plan, BillingMonthly,
		"http://localhost:3000", "/subscription", "/subscription", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.PriceID != "price_professional_monthly" {
		t.Fatalf("expected monthly price, got %q", req.PriceID)
	}
	if req.Metadata["plan_id"] != "professional" || req.Metadata["user_id"] != "7" {
		t.Fatalf("bad metadata: %v", req.Metadata)
	}
}

func TestBuildCheckoutYearlyResolvesAnnualVariant(t *testing.T) {
	cat := testCatalog(t)
	plan, _ := cat.Plan("professional")
	req, err := BuildCheckoutRequest(cat, 7, "ana@example.com", plan, BillingYearly,
		"http://localhost:3000", "/subscription", "/subscription", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.PriceID != "price_professional_annual" {
		t.Fatalf("yearly billing must use the annual variant price, got %q", req.PriceID)
	}
	if req.Metadata["plan_id"] != "professional-annual" {
		t.Fatalf("metadata should carry the resolved plan, got %q", req.Metadata["plan_id"])
	}
}

func TestBuildCheckoutYearlyWithoutVariantFails(t *testing.T) {
	cat, err := NewCatalog([]Plan{
		{ID: "free", Name: "Free", Price: 0, Interval: IntervalMonth, StripePriceID: "price_free"},
	}, nil)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	plan, _ := cat.Plan("free")
	_, err = BuildCheckoutRequest(cat, 1, "a@b.c", plan, BillingYearly,
		"http://localhost:3000", "/s", "/c", nil, nil)
	if !errors.Is(err, ErrNoAnnualPrice) {
		t.Fatalf("expected ErrNoAnnualPrice, got %v", err)
	}
}

func TestBuildCheckoutRejectsCustomPlan(t *testing.T) {
	cat := testCatalog(t)
	plan, _ := cat.Plan("enterprise")
	_, err := BuildCheckoutRequest(cat, 1, "a@b.c", plan, BillingMonthly,
		"http://localhost:3000", "/s", "/c", nil, nil)
	if !errors.Is(err, ErrCustomPlan) {
		t.Fatalf("expected ErrCustomPlan, got %v", err)
	}
}

func TestBuildCheckoutUnknownAddOn(t *testing.T) {
	cat := testCatalog(t)
	plan, _ := cat.Plan("starter")
	_, err := BuildCheckoutRequest(cat, 1, "a@b.c", plan, BillingMonthly,
		"http://localhost:3000", "/s", "/c", []string{"jetpack"}, nil)
	if !errors.Is(err, ErrUnknownAddOn) {
		t.Fatalf("expected ErrUnknownAddOn, got %v", err)
	}
}

func TestBuildCheckoutDeduplicatesAddOns(t *testing.T) {
	cat := testCatalog(t)
	plan, _ := cat.Plan("starter")
	req, err := BuildCheckoutRequest(cat, 1, "a@b.c", plan, BillingMonthly,
		"http://localhost:3000", "/s", "/c",
		[]string{"extra-events", "extra-events", "priority-support"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.AddOnPriceIDs) != 2 {
		t.Fatalf("expected 2 add-on prices after dedupe, got %v", req.AddOnPriceIDs)
	}
}

func TestBuildCheckoutURLMarkers(t *testing.T) {
	cat := testCatalog(t)
	plan, _ := cat.Plan("starter")
	req, err := BuildCheckoutRequest(cat, 1, "a@b.c", plan, BillingMonthly,
		"http://localhost:3000/", "/subscription", "/pricing?tab=plans", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.SuccessURL != "http://localhost:3000/subscription?success=true" {
		t.Fatalf("bad success url: %q", req.SuccessURL)
	}
	if req.CancelURL != "http://localhost:3000/pricing?tab=plans&canceled=true" {
		t.Fatalf("bad cancel url: %q", req.CancelURL)
	}
}

func TestBuildCheckoutMergesExtraMetadata(t *testing.T) {
	cat := testCatalog(t)
	plan, _ := cat.Plan("starter")
	req, err := BuildCheckoutRequest(cat, 1, "a@b.c", plan, BillingMonthly,
		"http://localhost:3000", "/s", "/c", nil, map[string]string{"campaign": "spring"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Metadata["campaign"] != "spring" || req.Metadata["interval"] != "monthly" {
		t.Fatalf("metadata merge failed: %v", req.Metadata)
	}
}
