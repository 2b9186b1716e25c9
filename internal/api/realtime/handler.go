package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agency-hub/internal/domain/users"
	"agency-hub/internal/feed"
	"agency-hub/internal/state"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const heartbeatInterval = 30 * time.Second

var (
	dataStore  state.Store
	changeFeed feed.Feed
	sessions   *state.Manager
	logger     *zap.Logger
)

func Configure(st state.Store, f feed.Feed, m *state.Manager, l *zap.Logger) {
	dataStore = st
	changeFeed = f
	sessions = m
	logger = l
}

type toast struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Stream opens the realtime SSE channel for the caller's tenant. It creates
// the live session, sends its handle id plus a snapshot of every tracked
// collection, then pushes full-collection replacements and toasts until the
// client disconnects.
func Stream(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	agencyID := c.GetUint("agency_id")
	role := c.GetString("role")
	email := c.GetString("email")

	// Toasts and collection updates funnel into channels so a single
	// goroutine owns the response writer.
	toasts := make(chan toast, 16)
	updates := make(chan string, 32)

	s := state.New(state.Config{
		AgencyID: agencyID,
		Role:     role,
		Email:    email,
		Store:    dataStore,
		Feed:     changeFeed,
		Logger:   logger,
		Toast: func(message, typ string) {
			select {
			case toasts <- toast{Message: message, Type: typ}:
			default:
			}
		},
	})

	unwatch := s.Watch(func(table string) {
		select {
		case updates <- table:
		default:
		}
	})
	defer unwatch()

	if err := s.Start(c.Request.Context()); err != nil {
		s.Close()
		logger.Error("failed to start realtime session", zap.Uint("agency_id", agencyID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open realtime stream"})
		return
	}

	id := sessions.Add(s)
	defer sessions.Remove(id)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	sendEvent(c, "session", map[string]string{"id": id})
	for _, table := range snapshotTables(agencyID, role) {
		sendCollection(c, s, table)
	}
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case table := <-updates:
			sendCollection(c, s, table)
			flusher.Flush()
		case t := <-toasts:
			sendEvent(c, "toast", t)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(c.Writer, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func snapshotTables(agencyID uint, role string) []string {
	if agencyID == 0 {
		return []string{feed.TableInvitations}
	}
	tables := []string{feed.TableAgencies, feed.TableNotifications, feed.TableProjects}
	if role == users.RoleOwner {
		tables = append(tables, feed.TableInvoices, feed.TableExpenses)
	}
	return tables
}

func sendCollection(c *gin.Context, s *state.Session, table string) {
	data := s.Collection(table)
	if data == nil {
		return
	}
	sendEvent(c, table, data)
}

func sendEvent(c *gin.Context, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal stream event", zap.String("event", event), zap.Error(err))
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\n", event)
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
}
