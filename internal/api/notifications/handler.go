package notifications

import (
	"net/http"

	"agency-hub/internal/state"

	"github.com/gin-gonic/gin"
)

const sessionHeader = "X-Session-ID"

var (
	dataStore state.Store
	sessions  *state.Manager
)

func Configure(st state.Store, m *state.Manager) {
	dataStore = st
	sessions = m
}

func session(c *gin.Context) *state.Session {
	return sessions.ForAgency(c.GetHeader(sessionHeader), c.GetUint("agency_id"))
}

func ListNotifications(c *gin.Context) {
	rows, err := dataStore.Notifications(c.Request.Context(), c.GetUint("agency_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func MarkAllRead(c *gin.Context) {
	if s := session(c); s != nil {
		if err := s.MarkAllNotificationsRead(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao marcar notificações como lidas."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read"})
		return
	}

	if err := dataStore.MarkAllNotificationsRead(c.Request.Context(), c.GetUint("agency_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao marcar notificações como lidas."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read"})
}

func ClearRead(c *gin.Context) {
	if s := session(c); s != nil {
		if err := s.ClearReadNotifications(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao limpar notificações."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Read notifications cleared"})
		return
	}

	if err := dataStore.DeleteReadNotifications(c.Request.Context(), c.GetUint("agency_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao limpar notificações."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Read notifications cleared"})
}
