package subscriptions

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"inrooms-backend/email"
	"inrooms-backend/login"
)

// Member is the minimal projection of an authenticated user the billing
// surface needs.
type Member struct {
	ID    int
	Email string
}

// MemberResolver maps a session email to a member. Injected by main to
// avoid coupling to the user storage.
type MemberResolver func(email string) *Member

// CheckoutService is the payment-collaborator surface the handler
// consumes. Implemented by StripeService; faked in tests.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (url, sessionID string, err error)
	ConfirmSession(sessionID string) (*State, error)
	BillingPortalURL(customerID, returnURL string) (string, error)
	ListPaymentMethods(customerID string) ([]PaymentMethod, error)
	ListInvoices(customerID string) ([]Invoice, error)
}

// StateStore is the subscription-record surface the handler consumes.
// Implemented by Repository.
type StateStore interface {
	Get(userID int) (*State, error)
	EnsureTrial(userID int) error
	SetStatus(userID int, status Status) error
}

type Handler struct {
	catalog  *Catalog
	checkout CheckoutService
	states   StateStore
	members  MemberResolver
	origin   string
}

func NewHandler(catalog *Catalog, checkout CheckoutService, states StateStore, members MemberResolver) *Handler {
	origin := os.Getenv("APP_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}
	return &Handler{catalog: catalog, checkout: checkout, states: states, members: members, origin: origin}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/plans", h.getPlans)
	r.POST("/checkout", h.createCheckout)
	r.GET("/checkout/confirm", h.confirmCheckout)
	r.POST("/billing-portal", h.billingPortal)
	r.GET("/payment-methods", h.paymentMethods)
	r.GET("/invoices", h.invoices)
	r.POST("/cancel-subscription", h.cancelSubscription)
	r.GET("/subscription", h.getSubscription)
}

func (h *Handler) member(c *gin.Context) *Member {
	auth := c.GetHeader("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return nil
	}
	mail, ok := login.GetEmailFromToken(token)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return nil
	}
	m := h.members(mail)
	if m == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil
	}
	return m
}

func (h *Handler) getPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"plans":   h.catalog.Plans(),
		"add_ons": h.catalog.AddOns(),
	}})
}

func (h *Handler) getSubscription(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	if err := h.states.EnsureTrial(m.ID); err != nil {
		log.Printf("[BILLING][subscription] ensure trial failed user=%d: %v", m.ID, err)
	}
	state, err := h.states.Get(m.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": state})
}

// createCheckout builds the checkout payload and asks the payment
// collaborator for a redirect URL. Any failure, including a session that
// comes back without a URL, returns an error response and leaves no state
// behind so the client can simply retry.
func (h *Handler) createCheckout(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	var body struct {
		PlanID      string            `json:"plan_id"`
		Interval    BillingInterval   `json:"interval"`
		AddOns      []string          `json:"add_ons"`
		SuccessPath string            `json:"success_path"`
		CancelPath  string            `json:"cancel_path"`
		Metadata    map[string]string `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PlanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan_id required"})
		return
	}
	plan, ok := h.catalog.Plan(body.PlanID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown plan"})
		return
	}
	if body.Interval == "" {
		body.Interval = BillingMonthly
	}
	if body.SuccessPath == "" {
		body.SuccessPath = "/subscription"
	}
	if body.CancelPath == "" {
		body.CancelPath = "/subscription"
	}
	req, err := BuildCheckoutRequest(h.catalog, m.ID, m.Email, plan, body.Interval, h.origin, body.SuccessPath, body.CancelPath, body.AddOns, body.Metadata)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrCustomPlan) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if h.checkout == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments not configured"})
		return
	}
	url, sessionID, err := h.checkout.CreateCheckoutSession(c.Request.Context(), req)
	if err != nil || url == "" {
		log.Printf("[BILLING][checkout] session creation failed user=%d plan=%s err=%v", m.ID, plan.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "checkout session could not be created"})
		return
	}
	log.Printf("[BILLING][checkout] session=%s user=%d plan=%s interval=%s", sessionID, m.ID, plan.ID, body.Interval)
	c.JSON(http.StatusOK, gin.H{"checkout_url": url, "session_id": sessionID})
}

// confirmCheckout is called by the host page after the redirect back with
// ?success=true; it verifies the session with the provider and refetches
// the subscription state.
func (h *Handler) confirmCheckout(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	if h.checkout == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments not configured"})
		return
	}
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
		return
	}
	state, err := h.checkout.ConfirmSession(sessionID)
	if err != nil {
		log.Printf("[BILLING][confirm] session=%s user=%d err=%v", sessionID, m.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not confirm checkout session"})
		return
	}
	if state == nil {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"confirmed": false}})
		return
	}
	if plan, ok := h.catalog.Plan(state.PlanID); ok {
		if err := email.SendSubscriptionActivated(m.Email, plan.Name); err != nil {
			log.Printf("[BILLING][confirm] activation email failed for %s: %v", m.Email, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"confirmed": true, "subscription": state}})
}

func (h *Handler) billingPortal(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	if h.checkout == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments not configured"})
		return
	}
	var body struct {
		ReturnPath string `json:"return_path"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ReturnPath == "" {
		body.ReturnPath = "/subscription"
	}
	customerID, ok := h.customerID(c, m)
	if !ok {
		return
	}
	url, err := h.checkout.BillingPortalURL(customerID, strings.TrimSuffix(h.origin, "/")+body.ReturnPath)
	if err != nil {
		log.Printf("[BILLING][portal] user=%d err=%v", m.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not create billing portal session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"portal_url": url})
}

func (h *Handler) paymentMethods(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	if h.checkout == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments not configured"})
		return
	}
	customerID, ok := h.customerID(c, m)
	if !ok {
		return
	}
	methods, err := h.checkout.ListPaymentMethods(customerID)
	if err != nil {
		log.Printf("[BILLING][payment_methods] user=%d err=%v", m.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not list payment methods"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": methods})
}

func (h *Handler) invoices(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	if h.checkout == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments not configured"})
		return
	}
	customerID, ok := h.customerID(c, m)
	if !ok {
		return
	}
	invoices, err := h.checkout.ListInvoices(customerID)
	if err != nil {
		log.Printf("[BILLING][invoices] user=%d err=%v", m.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not list invoices"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

func (h *Handler) cancelSubscription(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	if err := h.states.SetStatus(m.ID, StatusCanceled); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[BILLING][cancel] user=%d", m.ID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) customerID(c *gin.Context, m *Member) (string, bool) {
	state, err := h.states.Get(m.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", false
	}
	if state == nil || state.StripeCustomerID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no billing profile"})
		return "", false
	}
	return state.StripeCustomerID, true
}
