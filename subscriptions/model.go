package subscriptions

import "time"

// UnlimitedQuota is the sentinel meaning "no cap" on a quota field.
const UnlimitedQuota = 999

type Interval string

const (
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

type Status string

const (
	StatusInactive Status = "inactive"
	StatusTrial    Status = "trial"
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
)

// Plan is one subscription tier. Price is the base amount per Interval,
// currency-minor-unit free (dollars, not cents). Catalog entries are
// immutable at runtime.
type Plan struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Interval      Interval `json:"interval"`
	EventsQuota   int      `json:"events_quota"`
	CourseCredits int      `json:"course_credits"`
	Features      []string `json:"features"`
	IsPopular     bool     `json:"is_popular"`
	IsCustom      bool     `json:"is_custom"`
	StripePriceID string   `json:"-"`
}

// AddOn is an optional extra billed alongside a plan. Multiple add-ons may
// be selected at once; selection has set semantics.
type AddOn struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Benefits      []string `json:"benefits"`
	StripePriceID string   `json:"-"`
}

// State is a member's subscription record as stored per user. Read-only
// for the access policy; written on checkout confirmation and quota use.
type State struct {
	UserID             int        `json:"user_id"`
	PlanID             string     `json:"plan_id"`
	Status             Status     `json:"status"`
	EventsQuota        int        `json:"events_quota"`
	EventsUsed         int        `json:"events_used"`
	CourseCreditsQuota int        `json:"course_credits_quota"`
	CourseCreditsUsed  int        `json:"course_credits_used"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	StripeCustomerID   string     `json:"-"`
}

// Badge is a course-completion marker on a member's profile.
type Badge struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	CourseKey string    `json:"course_key"`
	Badge     string    `json:"badge"`
	Points    int       `json:"points"`
	AwardedAt time.Time `json:"awarded_at"`
}

// PaymentMethod is the card summary shown on the billing page.
type PaymentMethod struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	Default  bool   `json:"default"`
}

// Invoice is one row of billing history.
type Invoice struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	DownloadURL string    `json:"download_url,omitempty"`
}
