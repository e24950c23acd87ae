package access

import (
	"inrooms-backend/courses"
	"inrooms-backend/progress"
	"inrooms-backend/subscriptions"
)

const RoleAdmin = "admin"

// Account carries the identity and subscription fields the policy reads.
// A nil *Account means no authenticated user.
type Account struct {
	Role               string
	Status             subscriptions.Status
	CourseCreditsQuota int
	CourseCreditsUsed  int
}

// CanAccessModule decides whether an account may view a gated course
// module. Pure function of its inputs; rules apply in priority order:
//
//  1. no account: deny
//  2. admin: allow
//  3. course already completed: allow (review access)
//  4. unlimited course credits: allow
//  5. trial account on the first module: allow (free preview)
//  6. otherwise: allow while credits remain
func CanAccessModule(acct *Account, module courses.Module, doc progress.Document) bool {
	if acct == nil {
		return false
	}
	if acct.Role == RoleAdmin {
		return true
	}
	if doc.CourseCompleted() {
		return true
	}
	if acct.CourseCreditsQuota == subscriptions.UnlimitedQuota {
		return true
	}
	if acct.Status == subscriptions.StatusTrial && module.Order == 0 {
		return true
	}
	return acct.CourseCreditsUsed < acct.CourseCreditsQuota
}

// ForState builds the policy input from a user role and subscription
// state. A missing state yields zero quotas, so rule 6 denies.
func ForState(role string, state *subscriptions.State) *Account {
	acct := &Account{Role: role, Status: subscriptions.StatusInactive}
	if state != nil {
		acct.Status = state.Status
		acct.CourseCreditsQuota = state.CourseCreditsQuota
		acct.CourseCreditsUsed = state.CourseCreditsUsed
	}
	return acct
}
