package stripewebhook

import (
	"fmt"
	"time"

	"agency-hub/database"
	"agency-hub/internal/domain/billing"
	infrastripe "agency-hub/internal/infra/stripe"

	stripego "github.com/stripe/stripe-go/v75"
	"gorm.io/gorm/clause"
)

func handleSubscriptionUpdated(sub *stripego.Subscription) error {
	if sub.ID == "" || sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return fmt.Errorf("subscription missing id/items/price")
	}

	userID := userIDFromMetadata(sub.Metadata)
	if userID == 0 {
		// Acknowledge to avoid Stripe retries: nothing to attach this to.
		var existing billing.Subscription
		if err := database.DB.Where("id = ?", sub.ID).First(&existing).Error; err != nil {
			return nil
		}
		userID = existing.UserID
	}

	return upsertSubscription(userID, sub)
}

// upsertSubscription mirrors the provider's subscription object into the
// local table, keyed by the provider's subscription id.
func upsertSubscription(userID uint, sub *stripego.Subscription) error {
	row := billing.Subscription{
		ID:                 sub.ID,
		UserID:             userID,
		Status:             infrastripe.NormalizeStatus(string(sub.Status)),
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0),
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		row.PlanID = sub.Items.Data[0].Price.ID
	}
	if sub.TrialStart != 0 {
		t := time.Unix(sub.TrialStart, 0)
		row.TrialStart = &t
	}
	if sub.TrialEnd != 0 {
		t := time.Unix(sub.TrialEnd, 0)
		row.TrialEnd = &t
	}

	return database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "status", "plan_id",
			"current_period_start", "current_period_end",
			"trial_start", "trial_end", "updated_at",
		}),
	}).Create(&row).Error
}
