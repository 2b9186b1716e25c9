package state

import (
	"context"

	"agency-hub/internal/domain/content"
	"agency-hub/internal/domain/notifications"
	"agency-hub/internal/domain/projects"
	"agency-hub/internal/feed"

	"go.uber.org/zap"
)

// ApproveGroup approves every listed piece of the project. For carousels the
// caller passes the whole group's slide ids; a single static piece is a group
// of one.
func (s *Session) ApproveGroup(ctx context.Context, projectID uint, pieceIDs []string) error {
	return s.updatePieces(ctx, projectID, pieceIDs, content.ActionApprove, "")
}

// RequestAdjustment flags every listed piece for adjustment. The feedback
// text is attached to the first piece only; group feedback reads back from
// that slide. The owning project is pushed to Ajustes as a side effect.
func (s *Session) RequestAdjustment(ctx context.Context, projectID uint, pieceIDs []string, feedback string) error {
	return s.updatePieces(ctx, projectID, pieceIDs, content.ActionRequestAdjust, feedback)
}

// updatePieces applies the group transition to the local project first, then
// issues one portal RPC per piece, concurrently, and awaits them jointly. Any
// rejection rolls the local project back to its pre-action snapshot; calls
// that already committed stay committed remotely and are reconciled away by
// the next realtime refresh.
func (s *Session) updatePieces(ctx context.Context, projectID uint, pieceIDs []string, action content.Action, feedback string) error {
	if len(pieceIDs) == 0 {
		return ErrNotFound
	}

	s.mu.Lock()
	idx := -1
	for i := range s.projects {
		if s.projects[i].ID == projectID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	original := s.projects[idx].Clone()

	updated := original.Clone()
	var err error
	updated.StaticPieces, err = content.ApplyGroup(updated.StaticPieces, pieceIDs, action, feedback)
	if err == nil {
		updated.CarouselPieces, err = content.ApplyGroup(updated.CarouselPieces, pieceIDs, action, feedback)
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if action == content.ActionRequestAdjust {
		updated.MoveTo(projects.StatusAdjustments, s.now())
	}
	s.projects[idx] = updated
	s.mu.Unlock()
	s.emit(feed.TableProjects)

	status := content.StatusApproved
	if action == content.ActionRequestAdjust {
		status = content.StatusAdjust
	}

	errs := make(chan error, len(pieceIDs))
	for i, id := range pieceIDs {
		fb := ""
		if action == content.ActionRequestAdjust && i == 0 {
			fb = feedback
		}
		go func(id, fb string) {
			errs <- s.store.UpdatePortalPiece(ctx, PortalUpdate{
				AgencyID:  s.agencyID,
				ProjectID: projectID,
				PieceID:   id,
				Status:    status,
				Feedback:  fb,
			})
		}(id, fb)
	}

	var firstErr error
	for range pieceIDs {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		s.mu.Lock()
		for i := range s.projects {
			if s.projects[i].ID == projectID {
				s.projects[i] = original
				break
			}
		}
		s.mu.Unlock()
		s.emit(feed.TableProjects)
		s.toast("Ocorreu um erro ao atualizar. Tente novamente.", notifications.TypeError)
		s.logger.Warn("portal piece update failed",
			zap.Uint("project_id", projectID),
			zap.Int("pieces", len(pieceIDs)),
			zap.Error(firstErr))
		return firstErr
	}
	return nil
}
