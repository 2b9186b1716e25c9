package state

import (
	"context"
	"strings"
	"time"

	"agency-hub/internal/domain/notifications"
	"agency-hub/internal/domain/projects"

	"go.uber.org/zap"
)

// deadlineLookahead is how far ahead a due date counts as "approaching".
const deadlineLookahead = 48 * time.Hour

// generateDeadlineNotifications runs on every project refresh and creates a
// deadline-approaching notification for projects due inside the lookahead
// window. Two guards keep it to one notification per project: the unread
// notification already in local state, and the session-scoped in-flight set
// that covers the gap until the realtime refresh delivers the created row.
func (s *Session) generateDeadlineNotifications(ctx context.Context, projs []projects.Project) {
	now := s.now()
	windowEnd := now.Add(deadlineLookahead)

	s.mu.Lock()
	var due []projects.Project
	for _, p := range projs {
		if p.DueDate == nil || !p.DueDate.After(now) || p.DueDate.After(windowEnd) {
			continue
		}
		if s.hasUnreadDeadlineLocked(notifications.ProjectLink(p.ID)) {
			continue
		}
		if _, inflight := s.notifying[p.ID]; inflight {
			continue
		}
		s.notifying[p.ID] = struct{}{}
		due = append(due, p)
	}
	s.mu.Unlock()

	for _, p := range due {
		n := notifications.Notification{
			AgencyID: s.agencyID,
			Message:  notifications.DeadlineMessage(p.Name),
			Type:     notifications.TypeWarning,
			Link:     notifications.ProjectLink(p.ID),
		}
		if _, err := s.store.InsertNotification(ctx, n); err != nil {
			s.logger.Warn("deadline notification failed", zap.Uint("project_id", p.ID), zap.Error(err))
		}
	}
}

func (s *Session) hasUnreadDeadlineLocked(link string) bool {
	for _, n := range s.notifications {
		if !n.Read && n.Link == link && strings.Contains(n.Message, notifications.DeadlinePhrase) {
			return true
		}
	}
	return false
}
