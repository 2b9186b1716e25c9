package middleware

import (
	"net/http"
	"time"

	"agency-hub/database"
	"agency-hub/internal/domain/billing"
	"agency-hub/internal/domain/users"

	"github.com/gin-gonic/gin"
)

// RequireActiveSubscription gates the product behind either an entitled
// subscription or a still-running trial window.
func RequireActiveSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var user users.User
		if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		// Designers ride on the agency owner's plan.
		if user.Role == users.RoleDesigner && user.AgencyID != nil {
			var agency struct{ OwnerID uint }
			if err := database.DB.Table("agencies").
				Select("owner_id").
				Where("id = ?", *user.AgencyID).
				Scan(&agency).Error; err == nil && agency.OwnerID != 0 {
				userID = agency.OwnerID
				database.DB.Where("id = ?", userID).First(&user)
			}
		}

		var sub billing.Subscription
		err := database.DB.
			Where("user_id = ?", userID).
			Order("created_at DESC").
			First(&sub).Error
		if err == nil && billing.Entitled(sub.Status) {
			c.Next()
			return
		}

		if user.TrialEndAt != nil && time.Now().Before(*user.TrialEndAt) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
			"error": "Sua assinatura expirou. Assine um plano para continuar.",
		})
	}
}
