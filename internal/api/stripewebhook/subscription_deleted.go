package stripewebhook

import (
	"time"

	"agency-hub/database"
	"agency-hub/internal/domain/billing"

	stripego "github.com/stripe/stripe-go/v75"
)

func handleSubscriptionDeleted(sub *stripego.Subscription) error {
	if sub.ID == "" {
		return nil
	}

	// Deleted subs stop counting toward entitlement; keep the row for history.
	return database.DB.Model(&billing.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]interface{}{
			"status":             "canceled",
			"current_period_end": time.Unix(sub.CurrentPeriodEnd, 0),
		}).Error
}
