package agencies

import (
	"net/http"

	"agency-hub/database"
	"agency-hub/internal/domain/agencies"
	"agency-hub/internal/domain/users"
	"agency-hub/internal/feed"

	"github.com/gin-gonic/gin"
)

var changeFeed feed.Feed

// Configure wires the change feed; writes publish an invalidation so live
// sessions re-fetch the agency row.
func Configure(f feed.Feed) {
	changeFeed = f
}

func GetAgency(c *gin.Context) {
	agencyID := c.GetUint("agency_id")
	if agencyID == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No agency linked to this account"})
		return
	}

	var agency agencies.Agency
	if err := database.DB.First(&agency, agencyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agency not found"})
		return
	}
	c.JSON(http.StatusOK, agency)
}

// CreateAgency covers accounts that signed up through Google and still have
// no agency. The client must re-login afterwards to pick up the new
// agency_id claim.
func CreateAgency(c *gin.Context) {
	userID := c.GetUint("user_id")
	if c.GetUint("agency_id") != 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Account already has an agency"})
		return
	}

	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	agency := agencies.Agency{OwnerID: userID, Name: body.Name}
	if err := database.DB.Create(&agency).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create agency"})
		return
	}
	if err := database.DB.Model(&users.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"agency_id": agency.ID, "role": users.RoleOwner}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link agency"})
		return
	}

	c.JSON(http.StatusCreated, agency)
}

// UpdateAgency changes name and portal branding.
func UpdateAgency(c *gin.Context) {
	agencyID := c.GetUint("agency_id")
	if agencyID == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No agency linked to this account"})
		return
	}

	var body struct {
		Name      *string `json:"name"`
		BrandName *string `json:"brandName"`
		BrandLogo *string `json:"brandLogo"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if body.Name != nil {
		updates["name"] = *body.Name
	}
	if body.BrandName != nil {
		updates["brand_name"] = *body.BrandName
	}
	if body.BrandLogo != nil {
		updates["brand_logo"] = *body.BrandLogo
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := database.DB.Model(&agencies.Agency{}).
		Where("id = ?", agencyID).
		Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update agency"})
		return
	}

	changeFeed.Publish(feed.Change{AgencyID: agencyID, Table: feed.TableAgencies})

	var agency agencies.Agency
	database.DB.First(&agency, agencyID)
	c.JSON(http.StatusOK, agency)
}
