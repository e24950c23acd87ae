package subscriptions

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// StripeService creates checkout and billing-portal sessions and reads
// billing history. If STRIPE_SECRET_KEY is not set the service is nil and
// the billing endpoints answer 503.
type StripeService struct {
	repo       *Repository
	catalog    *Catalog
	secretKey  string
	sc         *client.API
	invalidKey bool // once detected, short-circuit further remote calls
}

var ErrStripeInvalidAPIKey = errors.New("stripe_invalid_api_key")
var ErrNoCheckoutURL = errors.New("checkout session has no redirect url")

func maskKey(k string) string {
	if len(k) < 12 {
		return "****"
	}
	return k[:7] + "..." + k[len(k)-4:]
}

// NewStripeFromEnv returns a configured service or nil when the secret key
// is missing.
func NewStripeFromEnv(catalog *Catalog, repo *Repository) *StripeService {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		return nil
	}
	sc := &client.API{}
	sc.Init(key, nil)
	return &StripeService{repo: repo, catalog: catalog, secretKey: key, sc: sc}
}

func (s *StripeService) keyError(err error, op string) error {
	var se *stripe.Error
	if errors.As(err, &se) && (se.HTTPStatusCode == 401 || strings.Contains(strings.ToLower(se.Msg), "invalid api key")) {
		log.Printf("[STRIPE][%s] invalid api key (%s): %v", op, maskKey(s.secretKey), se)
		s.invalidKey = true
		return ErrStripeInvalidAPIKey
	}
	return err
}

// CreateCheckoutSession turns a built CheckoutRequest into a hosted
// checkout session and returns its redirect URL and id. A session without
// a URL is treated as a failure so the caller never redirects to nothing.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (string, string, error) {
	if s == nil {
		return "", "", errors.New("stripe not configured")
	}
	if s.invalidKey {
		return "", "", ErrStripeInvalidAPIKey
	}
	lineItems := []*stripe.CheckoutSessionLineItemParams{{
		Price:    stripe.String(req.PriceID),
		Quantity: stripe.Int64(1),
	}}
	for _, priceID := range req.AddOnPriceIDs {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(priceID),
			Quantity: stripe.Int64(1),
		})
	}
	params := &stripe.CheckoutSessionParams{
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail: stripe.String(req.CustomerEmail),
		LineItems:     lineItems,
		Metadata:      req.Metadata,
	}
	params.Context = ctx
	sess, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		log.Printf("[STRIPE][checkout] error: %v", err)
		return "", "", s.keyError(err, "checkout")
	}
	if sess.URL == "" {
		log.Printf("[STRIPE][checkout] session %s returned without url", sess.ID)
		return "", "", ErrNoCheckoutURL
	}
	return sess.URL, sess.ID, nil
}

// ConfirmSession queries the provider after the redirect back; when the
// session is complete it activates the purchased plan. Idempotent: an
// already-active matching plan is left untouched.
func (s *StripeService) ConfirmSession(sessionID string) (*State, error) {
	if s == nil {
		return nil, errors.New("stripe not configured")
	}
	if sessionID == "" {
		return nil, errors.New("empty session_id")
	}
	sess, err := s.sc.CheckoutSessions.Get(sessionID, nil)
	if err != nil {
		return nil, s.keyError(err, "confirm")
	}
	if sess.Status != stripe.CheckoutSessionStatusComplete {
		return nil, nil
	}
	userID, _ := strconv.Atoi(sess.Metadata["user_id"])
	planID := sess.Metadata["plan_id"]
	if userID == 0 || planID == "" {
		return nil, errors.New("incomplete session metadata")
	}
	plan, ok := s.catalog.Plan(planID)
	if !ok {
		return nil, errors.New("unknown plan in session metadata")
	}
	state, err := s.repo.Get(userID)
	if err != nil {
		return nil, err
	}
	if state != nil && state.Status == StatusActive && state.PlanID == plan.ID {
		return state, nil
	}
	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}
	if err := s.repo.Activate(userID, plan, customerID); err != nil {
		return nil, err
	}
	log.Printf("[STRIPE][confirm] activated plan=%s user=%d session=%s", plan.ID, userID, sessionID)
	return s.repo.Get(userID)
}

// BillingPortalURL creates a hosted billing-portal session.
func (s *StripeService) BillingPortalURL(customerID, returnURL string) (string, error) {
	if s == nil {
		return "", errors.New("stripe not configured")
	}
	sess, err := s.sc.BillingPortalSessions.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		return "", s.keyError(err, "portal")
	}
	return sess.URL, nil
}

// ListPaymentMethods returns the customer's cards, flagging the default.
func (s *StripeService) ListPaymentMethods(customerID string) ([]PaymentMethod, error) {
	if s == nil {
		return nil, errors.New("stripe not configured")
	}
	defaultID := ""
	if cust, err := s.sc.Customers.Get(customerID, nil); err == nil &&
		cust.InvoiceSettings != nil && cust.InvoiceSettings.DefaultPaymentMethod != nil {
		defaultID = cust.InvoiceSettings.DefaultPaymentMethod.ID
	}
	iter := s.sc.PaymentMethods.List(&stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String("card"),
	})
	methods := []PaymentMethod{}
	for iter.Next() {
		pm := iter.PaymentMethod()
		if pm.Card == nil {
			continue
		}
		methods = append(methods, PaymentMethod{
			ID:       pm.ID,
			Brand:    string(pm.Card.Brand),
			Last4:    pm.Card.Last4,
			ExpMonth: int(pm.Card.ExpMonth),
			ExpYear:  int(pm.Card.ExpYear),
			Default:  pm.ID == defaultID,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, s.keyError(err, "payment_methods")
	}
	return methods, nil
}

// ListInvoices returns the customer's billing history.
func (s *StripeService) ListInvoices(customerID string) ([]Invoice, error) {
	if s == nil {
		return nil, errors.New("stripe not configured")
	}
	iter := s.sc.Invoices.List(&stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
	})
	invoices := []Invoice{}
	for iter.Next() {
		inv := iter.Invoice()
		desc := inv.Description
		if desc == "" && len(inv.Lines.Data) > 0 {
			desc = inv.Lines.Data[0].Description
		}
		invoices = append(invoices, Invoice{
			ID:          inv.ID,
			Date:        time.Unix(inv.Created, 0),
			Description: desc,
			Amount:      float64(inv.AmountDue) / 100,
			Status:      string(inv.Status),
			DownloadURL: inv.InvoicePDF,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, s.keyError(err, "invoices")
	}
	return invoices, nil
}
