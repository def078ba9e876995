// internal/models/subscription.go
package models

import "time"

// PlanTier is the subscription plan held by a creator.
type PlanTier string

const (
	PlanCreador     PlanTier = "CREADOR"
	PlanProfesional PlanTier = "PROFESIONAL"
	PlanElite       PlanTier = "ELITE"
)

func (p PlanTier) Valid() bool {
	switch p {
	case PlanCreador, PlanProfesional, PlanElite:
		return true
	}
	return false
}

// Registrations allowed per billing period, by plan.
var planLimits = map[PlanTier]int{
	PlanCreador:     4,
	PlanProfesional: 20,
	PlanElite:       100,
}

// RegistrationLimit returns the per-period registration quota for a plan.
// Unknown plans get the lowest tier's quota, matching how the billing
// metadata is interpreted when a plan name is missing.
func RegistrationLimit(plan PlanTier) int {
	if limit, ok := planLimits[plan]; ok {
		return limit
	}
	return planLimits[PlanCreador]
}

// Subscription is the billing system's view of a subscriber. It is read
// from the payment provider and never persisted locally.
type Subscription struct {
	ID                 string    `json:"id"`
	Plan               PlanTier  `json:"plan"`
	Status             string    `json:"status"`
	CurrentPeriodEnd   time.Time `json:"currentPeriodEnd"`
	RegistrationsUsed  int       `json:"registrationsUsed"`
	RegistrationsLimit int       `json:"registrationsLimit"`
}
