package subscriptions

import "fmt"

// AnnualSuffix is the naming convention tying a monthly plan to its yearly
// counterpart: the annual variant's id is the monthly id plus this suffix.
// This is the single canonical resolution strategy for yearly billing.
const AnnualSuffix = "-annual"

// Catalog is the static, in-memory table of plans and add-ons. Built once
// at startup and never mutated afterwards.
type Catalog struct {
	plans   []Plan
	addOns  []AddOn
	byID    map[string]Plan
	addByID map[string]AddOn
}

// NewCatalog validates the snapshot: ids unique, quotas non-negative, and
// every paid monthly plan has its annual counterpart so yearly checkout
// can always resolve a price.
func NewCatalog(plans []Plan, addOns []AddOn) (*Catalog, error) {
	c := &Catalog{byID: map[string]Plan{}, addByID: map[string]AddOn{}}
	for _, p := range plans {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog: plan %q has empty id", p.Name)
		}
		if _, ok := c.byID[p.ID]; ok {
			return nil, fmt.Errorf("catalog: duplicate plan id %q", p.ID)
		}
		if p.EventsQuota < 0 || p.CourseCredits < 0 {
			return nil, fmt.Errorf("catalog: plan %q has negative quota", p.ID)
		}
		c.byID[p.ID] = p
		c.plans = append(c.plans, p)
	}
	for _, p := range c.plans {
		if p.Interval != IntervalMonth || p.Price == 0 || p.IsCustom {
			continue
		}
		if _, ok := c.byID[p.ID+AnnualSuffix]; !ok {
			return nil, fmt.Errorf("catalog: monthly plan %q has no %s variant", p.ID, AnnualSuffix)
		}
	}
	for _, a := range addOns {
		if a.ID == "" {
			return nil, fmt.Errorf("catalog: add-on %q has empty id", a.Name)
		}
		if _, ok := c.addByID[a.ID]; ok {
			return nil, fmt.Errorf("catalog: duplicate add-on id %q", a.ID)
		}
		c.addByID[a.ID] = a
		c.addOns = append(c.addOns, a)
	}
	return c, nil
}

func (c *Catalog) Plan(id string) (Plan, bool) {
	p, ok := c.byID[id]
	return p, ok
}

func (c *Catalog) AddOn(id string) (AddOn, bool) {
	a, ok := c.addByID[id]
	return a, ok
}

// Plans returns the tiers shown on the pricing page: monthly plans plus
// custom tiers. Annual variants stay internal to price resolution.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		if p.Interval == IntervalYear {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (c *Catalog) AddOns() []AddOn {
	return append([]AddOn(nil), c.addOns...)
}

// AnnualVariant resolves the yearly counterpart of a monthly plan.
func (c *Catalog) AnnualVariant(monthlyID string) (Plan, bool) {
	return c.Plan(monthlyID + AnnualSuffix)
}

// DefaultCatalog is the production plan table.
func DefaultCatalog() (*Catalog, error) {
	plans := []Plan{
		{
			ID: "starter", Name: "Starter", Price: 39, Interval: IntervalMonth,
			EventsQuota: 3, CourseCredits: 1,
			Features:      []string{"3 Rooms per month", "1 course credit", "Member directory", "Email support"},
			StripePriceID: "price_starter_monthly",
		},
		{
			ID: "starter-annual", Name: "Starter (annual)", Price: 390, Interval: IntervalYear,
			EventsQuota: 3, CourseCredits: 1,
			Features:      []string{"3 Rooms per month", "1 course credit", "Member directory", "Email support"},
			StripePriceID: "price_starter_annual",
		},
		{
			ID: "professional", Name: "Professional", Price: 79, Interval: IntervalMonth,
			EventsQuota: 8, CourseCredits: 3, IsPopular: true,
			Features:      []string{"8 Rooms per month", "3 course credits", "Host your own Rooms", "Priority support"},
			StripePriceID: "price_professional_monthly",
		},
		{
			ID: "professional-annual", Name: "Professional (annual)", Price: 790, Interval: IntervalYear,
			EventsQuota: 8, CourseCredits: 3,
			Features:      []string{"8 Rooms per month", "3 course credits", "Host your own Rooms", "Priority support"},
			StripePriceID: "price_professional_annual",
		},
		{
			ID: "unlimited", Name: "Unlimited", Price: 149, Interval: IntervalMonth,
			EventsQuota: UnlimitedQuota, CourseCredits: UnlimitedQuota,
			Features:      []string{"Unlimited Rooms", "All courses included", "Host your own Rooms", "Priority support"},
			StripePriceID: "price_unlimited_monthly",
		},
		{
			ID: "unlimited-annual", Name: "Unlimited (annual)", Price: 1490, Interval: IntervalYear,
			EventsQuota: UnlimitedQuota, CourseCredits: UnlimitedQuota,
			Features:      []string{"Unlimited Rooms", "All courses included", "Host your own Rooms", "Priority support"},
			StripePriceID: "price_unlimited_annual",
		},
		{
			ID: "enterprise", Name: "Enterprise", Price: 0, Interval: IntervalMonth, IsCustom: true,
			Features: []string{"Custom event volume", "Dedicated success manager", "SSO", "Invoiced billing"},
		},
	}
	addOns := []AddOn{
		{
			ID: "extra-events", Name: "Extra Events Pack", Price: 15,
			Benefits:      []string{"3 additional Rooms per month"},
			StripePriceID: "price_addon_extra_events",
		},
		{
			ID: "priority-support", Name: "Priority Support", Price: 9,
			Benefits:      []string{"Same-day responses", "Onboarding call"},
			StripePriceID: "price_addon_priority_support",
		},
	}
	return NewCatalog(plans, addOns)
}
