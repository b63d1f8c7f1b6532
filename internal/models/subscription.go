package models

import (
	"time"
)

// Subscription plan periods and statuses.
const (
	PlanPeriodMonthly = "monthly"
	PlanPeriodYearly  = "yearly"

	PlanStatusActive   = "active"
	PlanStatusInactive = "inactive"
	PlanStatusDeleted  = "deleted"
)

// SubscriptionPlan is a sellable plan an invoice can reference via selected_plan_id.
type SubscriptionPlan struct {
	ID        int64      `json:"id" db:"id"`
	UUID      string     `json:"uuid" db:"uuid"`
	Name      string     `json:"name" db:"name"`
	Price     float64    `json:"price" db:"price"`
	Period    string     `json:"period" db:"period"`
	Metadata  *string    `json:"metadata" db:"metadata"`
	Status    string     `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}
