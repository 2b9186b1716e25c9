package stripewebhook

import (
	"errors"
	"fmt"
	"strconv"

	"agency-hub/database"
	"agency-hub/internal/domain/users"

	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/subscription"
)

func handleCheckoutSessionCompleted(session *stripe.CheckoutSession) error {
	// Fetch full session with expansions
	fullSession, err := checkoutsession.Get(session.ID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Expand: []*string{
				stripe.String("subscription"),
				stripe.String("customer"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to fetch expanded checkout session: %w", err)
	}

	if fullSession.Subscription == nil || fullSession.Subscription.ID == "" {
		return errors.New("checkout session missing subscription")
	}

	subData, err := subscription.Get(fullSession.Subscription.ID, nil)
	if err != nil || subData == nil || subData.Items == nil || len(subData.Items.Data) == 0 || subData.Items.Data[0].Price == nil {
		return fmt.Errorf("failed to fetch subscription items: %w", err)
	}

	// Identify user: metadata.user_id preferred, else ClientReferenceID
	userID := userIDFromMetadata(subData.Metadata)
	if userID == 0 {
		userID = userIDFromRef(fullSession.ClientReferenceID)
	}
	if userID == 0 {
		return errors.New("missing user_id (metadata.user_id or client_reference_id)")
	}

	if fullSession.Customer != nil && fullSession.Customer.ID != "" {
		if err := database.DB.Model(&users.User{}).
			Where("id = ?", userID).
			Update("stripe_customer_id", fullSession.Customer.ID).Error; err != nil {
			return fmt.Errorf("failed to store stripe customer: %w", err)
		}
	}

	return upsertSubscription(userID, subData)
}

func userIDFromMetadata(md map[string]string) uint {
	if md == nil {
		return 0
	}
	return userIDFromRef(md["user_id"])
}

func userIDFromRef(s string) uint {
	if s == "" {
		return 0
	}
	uid, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(uid)
}
