package subscriptions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type BillingInterval string

const (
	BillingMonthly BillingInterval = "monthly"
	BillingYearly  BillingInterval = "yearly"
)

var (
	ErrCustomPlan    = errors.New("custom plans are quoted by sales, not checked out")
	ErrNoAnnualPrice = errors.New("plan has no annual variant")
	ErrUnknownAddOn  = errors.New("unknown add-on")
	ErrNoPriceRef    = errors.New("plan has no price reference")
)

// CheckoutRequest is the provider-agnostic payload a checkout session is
// created from. The caller redirects the browser to the URL the provider
// returns; nothing else changes client state after the call.
type CheckoutRequest struct {
	UserID        int
	CustomerEmail string
	PriceID       string
	AddOnPriceIDs []string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// BuildCheckoutRequest maps a selected plan, billing interval and add-on
// set to a checkout payload. Yearly billing on a monthly plan resolves the
// plan's annual catalog variant ("<id>-annual"); the monthly price is
// never reused for a yearly subscription. Success and cancel URLs are the
// given origin plus path, marked with success=true / canceled=true query
// parameters the host page reads after the redirect back.
func BuildCheckoutRequest(cat *Catalog, userID int, email string, plan Plan, interval BillingInterval, origin, successPath, cancelPath string, addOnIDs []string, extra map[string]string) (*CheckoutRequest, error) {
	if plan.IsCustom {
		return nil, ErrCustomPlan
	}
	priceID := plan.StripePriceID
	resolvedPlan := plan.ID
	if interval == BillingYearly && plan.Interval == IntervalMonth {
		annual, ok := cat.AnnualVariant(plan.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoAnnualPrice, plan.ID)
		}
		priceID = annual.StripePriceID
		resolvedPlan = annual.ID
	}
	if priceID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoPriceRef, resolvedPlan)
	}

	seen := map[string]bool{}
	var addOnPrices []string
	for _, id := range addOnIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		addOn, ok := cat.AddOn(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAddOn, id)
		}
		addOnPrices = append(addOnPrices, addOn.StripePriceID)
	}

	metadata := map[string]string{
		"user_id":  strconv.Itoa(userID),
		"plan_id":  resolvedPlan,
		"interval": string(interval),
	}
	for k, v := range extra {
		metadata[k] = v
	}

	return &CheckoutRequest{
		UserID:        userID,
		CustomerEmail: email,
		PriceID:       priceID,
		AddOnPriceIDs: addOnPrices,
		SuccessURL:    withMarker(origin, successPath, "success=true"),
		CancelURL:     withMarker(origin, cancelPath, "canceled=true"),
		Metadata:      metadata,
	}, nil
}

func withMarker(origin, path, marker string) string {
	url := strings.TrimSuffix(origin, "/") + path
	if strings.Contains(path, "?") {
		return url + "&" + marker
	}
	return url + "?" + marker
}
