package users

import (
	"net/http"
	"time"

	"agency-hub/database"
	"agency-hub/internal/domain/billing"
	"agency-hub/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type meResponse struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Lastname   string  `json:"lastname"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	AgencyID   *uint   `json:"agency_id"`
	IsVerified bool    `json:"is_verified"`
	Plan       string  `json:"plan"`
	TrialEndAt *string `json:"trial_end_at,omitempty"`
}

// GetCurrentUser returns the profile plus the effective entitlement: the
// newest subscription status, or "trial"/"expired" from the trial window.
func GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	plan := "expired"
	var sub billing.Subscription
	err := database.DB.Where("user_id = ?", user.ID).
		Order("updated_at DESC").
		First(&sub).Error
	switch {
	case err == nil && billing.Entitled(sub.Status):
		plan = sub.Status
	case user.TrialEndAt != nil && time.Now().Before(*user.TrialEndAt):
		plan = "trial"
	}

	resp := meResponse{
		ID:         user.ID,
		Name:       user.Name,
		Lastname:   user.Lastname,
		Email:      user.Email,
		Role:       user.Role,
		AgencyID:   user.AgencyID,
		IsVerified: user.IsVerified,
		Plan:       plan,
	}
	if user.TrialEndAt != nil {
		s := user.TrialEndAt.Format(time.RFC3339)
		resp.TrialEndAt = &s
	}

	c.JSON(http.StatusOK, resp)
}
