package billing

import "time"

// Subscription mirrors the payment provider's subscription object. Rows are
// upserted from webhook events only; the rest of the app reads them as an
// entitlement gate.
type Subscription struct {
	ID     string `gorm:"primaryKey" json:"id"` // stripe subscription id
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Status string `gorm:"type:varchar(30);not null" json:"status"`
	PlanID string `gorm:"column:plan_id" json:"plan_id"` // stripe price id

	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	TrialStart         *time.Time `json:"trial_start,omitempty"`
	TrialEnd           *time.Time `json:"trial_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entitled reports whether a subscription status unlocks the product.
func Entitled(status string) bool {
	return status == "active" || status == "trialing"
}
