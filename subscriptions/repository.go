package subscriptions

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// TrialDays is the length of the trial granted to new members.
const TrialDays = 14

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the subscription state for a user, or nil when none exists.
func (r *Repository) Get(userID int) (*State, error) {
	row := r.db.QueryRow(`SELECT user_id, plan_id, status, events_quota, events_used, course_credits_quota, course_credits_used, trial_ends_at, stripe_customer_id
		FROM subscription_state WHERE user_id=? LIMIT 1`, userID)
	var s State
	var trialEnds sql.NullTime
	var customer sql.NullString
	if err := row.Scan(&s.UserID, &s.PlanID, &s.Status, &s.EventsQuota, &s.EventsUsed, &s.CourseCreditsQuota, &s.CourseCreditsUsed, &trialEnds, &customer); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if trialEnds.Valid {
		t := trialEnds.Time
		s.TrialEndsAt = &t
	}
	s.StripeCustomerID = customer.String
	return &s, nil
}

// EnsureTrial creates a trial state for users that have none yet, so the
// quota fields always resolve. Idempotent.
func (r *Repository) EnsureTrial(userID int) error {
	existing, err := r.Get(userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	ends := time.Now().AddDate(0, 0, TrialDays)
	_, err = r.db.Exec(`INSERT INTO subscription_state (user_id, plan_id, status, events_quota, events_used, course_credits_quota, course_credits_used, trial_ends_at)
		VALUES (?,?,?,?,?,?,?,?)`, userID, "", StatusTrial, 1, 0, 0, 0, ends)
	return err
}

// ApplyPatch merge-patches the whitelisted state fields. Unknown keys are
// ignored rather than rejected, matching the collaborator's merge-patch
// contract.
func (r *Repository) ApplyPatch(userID int, patch map[string]any) error {
	allowed := map[string]bool{
		"plan_id":              true,
		"status":               true,
		"events_quota":         true,
		"events_used":          true,
		"course_credits_quota": true,
		"course_credits_used":  true,
		"stripe_customer_id":   true,
	}
	sets := []string{}
	args := []any{}
	for k, v := range patch {
		if !allowed[k] {
			continue
		}
		sets = append(sets, k+"=?")
		args = append(args, v)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, userID)
	query := "UPDATE subscription_state SET " + strings.Join(sets, ", ") + " WHERE user_id=?"
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if err := r.EnsureTrial(userID); err != nil {
			return err
		}
		_, err = r.db.Exec(query, args...)
	}
	return err
}

// Activate replaces the state with the quotas of a freshly purchased plan.
func (r *Repository) Activate(userID int, plan Plan, stripeCustomerID string) error {
	if err := r.EnsureTrial(userID); err != nil {
		return err
	}
	_, err := r.db.Exec(`UPDATE subscription_state
		SET plan_id=?, status=?, events_quota=?, events_used=0, course_credits_quota=?, course_credits_used=0, trial_ends_at=NULL, stripe_customer_id=?
		WHERE user_id=?`,
		plan.ID, StatusActive, plan.EventsQuota, plan.CourseCredits, stripeCustomerID, userID)
	return err
}

func (r *Repository) SetStatus(userID int, status Status) error {
	res, err := r.db.Exec(`UPDATE subscription_state SET status=? WHERE user_id=?`, status, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no subscription state for user %d", userID)
	}
	return nil
}

// ConsumeCourseCredit decrements the remaining course credits by one,
// guarded against going past the quota. Returns false when nothing was
// left to consume. The unlimited sentinel is never decremented.
func (r *Repository) ConsumeCourseCredit(userID int) (bool, error) {
	state, err := r.Get(userID)
	if err != nil {
		return false, err
	}
	if state == nil {
		return false, nil
	}
	if state.CourseCreditsQuota == UnlimitedQuota {
		return true, nil
	}
	res, err := r.db.Exec(`UPDATE subscription_state SET course_credits_used = course_credits_used + 1
		WHERE user_id=? AND course_credits_used < course_credits_quota`, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AwardBadge records a course-completion badge with its points. One badge
// per user+course; re-completing a course does not duplicate it.
func (r *Repository) AwardBadge(userID int, courseKey, badge string, points int) error {
	_, err := r.db.Exec(`INSERT INTO course_badges (user_id, course_key, badge, points)
		SELECT ?,?,?,? FROM DUAL
		WHERE NOT EXISTS (SELECT 1 FROM course_badges WHERE user_id=? AND course_key=?)`,
		userID, courseKey, badge, points, userID, courseKey)
	return err
}

func (r *Repository) Badges(userID int) ([]Badge, error) {
	rows, err := r.db.Query(`SELECT id, user_id, course_key, badge, points, awarded_at FROM course_badges WHERE user_id=? ORDER BY awarded_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	badges := []Badge{}
	for rows.Next() {
		var b Badge
		if err := rows.Scan(&b.ID, &b.UserID, &b.CourseKey, &b.Badge, &b.Points, &b.AwardedAt); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}
