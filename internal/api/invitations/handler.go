package invitations

import (
	"net/http"
	"strconv"
	"strings"

	"agency-hub/database"
	"agency-hub/internal/domain/agencies"
	"agency-hub/internal/domain/invitations"
	"agency-hub/internal/domain/users"
	"agency-hub/internal/feed"

	"github.com/gin-gonic/gin"
)

var changeFeed feed.Feed

func Configure(f feed.Feed) {
	changeFeed = f
}

// publishInvitations signals both the agency's collection and the
// designer-side feed. Designers without an agency subscribe under tenant
// zero, so invitation changes go out on both subjects.
func publishInvitations(agencyID uint) {
	changeFeed.Publish(feed.Change{AgencyID: agencyID, Table: feed.TableInvitations})
	changeFeed.Publish(feed.Change{AgencyID: 0, Table: feed.TableInvitations})
}

// ListInvitations returns the caller's pending invitations: by agency for
// owners, by email for designers.
func ListInvitations(c *gin.Context) {
	var invs []invitations.Invitation
	var err error
	if c.GetString("role") == users.RoleOwner {
		err = database.DB.Where("agency_id = ?", c.GetUint("agency_id")).Find(&invs).Error
	} else {
		err = database.DB.Where("email_designer = ?", c.GetString("email")).Find(&invs).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invitations"})
		return
	}
	c.JSON(http.StatusOK, invs)
}

// InviteDesigner creates a pending invitation for a designer email.
func InviteDesigner(c *gin.Context) {
	agencyID := c.GetUint("agency_id")

	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	var agency agencies.Agency
	if err := database.DB.First(&agency, agencyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agency not found"})
		return
	}
	if agency.Team.Contains(email) {
		c.JSON(http.StatusConflict, gin.H{"error": "Designer is already on the team"})
		return
	}

	var existing invitations.Invitation
	if err := database.DB.
		Where("agency_id = ? AND email_designer = ?", agencyID, email).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Invitation already pending"})
		return
	}

	inv := invitations.Invitation{
		AgencyID:      agencyID,
		AgencyName:    agency.Name,
		DesignerEmail: email,
	}
	if err := database.DB.Create(&inv).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invitation"})
		return
	}

	publishInvitations(agencyID)
	c.JSON(http.StatusCreated, inv)
}

// AcceptInvitation links the calling designer to the inviting agency and
// adds them to the team list. The client must re-login afterwards to get a
// token carrying the new agency_id.
func AcceptInvitation(c *gin.Context) {
	email := c.GetString("email")
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation id"})
		return
	}

	var inv invitations.Invitation
	if err := database.DB.First(&inv, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}
	if !strings.EqualFold(inv.DesignerEmail, email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This invitation belongs to another account"})
		return
	}

	var agency agencies.Agency
	if err := database.DB.First(&agency, inv.AgencyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agency no longer exists"})
		return
	}

	if !agency.Team.Contains(inv.DesignerEmail) {
		agency.Team = append(agency.Team, inv.DesignerEmail)
		if err := database.DB.Save(&agency).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update team"})
			return
		}
	}

	if err := database.DB.Model(&users.User{}).
		Where("email = ?", inv.DesignerEmail).
		Updates(map[string]interface{}{"agency_id": agency.ID, "role": users.RoleDesigner}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link designer"})
		return
	}

	database.DB.Delete(&inv)

	publishInvitations(agency.ID)
	changeFeed.Publish(feed.Change{AgencyID: agency.ID, Table: feed.TableAgencies})

	c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted", "agency_id": agency.ID})
}

// DeclineInvitation removes a pending invitation addressed to the caller.
func DeclineInvitation(c *gin.Context) {
	email := c.GetString("email")
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation id"})
		return
	}

	var inv invitations.Invitation
	if err := database.DB.First(&inv, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}
	if !strings.EqualFold(inv.DesignerEmail, email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This invitation belongs to another account"})
		return
	}

	database.DB.Delete(&inv)
	publishInvitations(inv.AgencyID)

	c.JSON(http.StatusOK, gin.H{"message": "Invitation declined"})
}

// RemoveDesigner takes a designer off the team and unlinks their account.
func RemoveDesigner(c *gin.Context) {
	agencyID := c.GetUint("agency_id")

	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	var agency agencies.Agency
	if err := database.DB.First(&agency, agencyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agency not found"})
		return
	}
	if !agency.Team.Contains(email) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Designer is not on the team"})
		return
	}

	agency.Team = agency.Team.Without(email)
	if err := database.DB.Save(&agency).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update team"})
		return
	}

	database.DB.Model(&users.User{}).
		Where("email = ? AND agency_id = ?", email, agencyID).
		Update("agency_id", nil)

	changeFeed.Publish(feed.Change{AgencyID: agencyID, Table: feed.TableAgencies})

	c.JSON(http.StatusOK, gin.H{"message": "Designer removed"})
}
