package portal

import (
	"errors"
	"net/http"
	"strconv"

	"agency-hub/internal/domain/content"
	"agency-hub/internal/domain/projects"
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

func pathIDs(c *gin.Context) (agencyID, projectID uint, ok bool) {
	a, err := strconv.ParseUint(c.Param("agencyId"), 10, 64)
	if err != nil || a == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid portal link"})
		return 0, 0, false
	}
	p, err := strconv.ParseUint(c.Param("projectId"), 10, 64)
	if err != nil || p == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid portal link"})
		return 0, 0, false
	}
	return uint(a), uint(p), true
}

func loadProject(c *gin.Context, agencyID, projectID uint) (projects.Project, bool) {
	projs, err := dataStore.Projects(c.Request.Context(), agencyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load project"})
		return projects.Project{}, false
	}
	for _, p := range projs {
		if p.ID == projectID {
			return p, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	return projects.Project{}, false
}

// GetPortal serves the unauthenticated client view: agency branding plus the
// project's content pieces. Internal fields (finance links, team data) never
// leave this shape.
func GetPortal(c *gin.Context) {
	agencyID, projectID, ok := pathIDs(c)
	if !ok {
		return
	}

	agency, err := dataStore.Agency(c.Request.Context(), agencyID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agency not found"})
		return
	}

	project, ok := loadProject(c, agencyID, projectID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agency": agency.Branding(),
		"project": gin.H{
			"id":              project.ID,
			"nome":            project.Name,
			"cliente":         project.Client,
			"status":          project.Status,
			"data_entrega":    project.DueDate,
			"pecas_conteudo":  project.StaticPieces,
			"pecas_carrossel": project.CarouselPieces,
		},
	})
}

type groupActionInput struct {
	PieceIDs []string `json:"piece_ids" binding:"required,min=1"`
	Feedback string   `json:"feedback"`
}

// ApproveGroup approves every listed piece. A static piece is a group of one;
// carousels pass all slide ids so the group converges as a unit.
func ApproveGroup(c *gin.Context) {
	groupAction(c, content.ActionApprove)
}

// RequestAdjustment flags the listed pieces for adjustment. Feedback is
// required and is attached to the first listed piece.
func RequestAdjustment(c *gin.Context) {
	groupAction(c, content.ActionRequestAdjust)
}

func groupAction(c *gin.Context, action content.Action) {
	agencyID, projectID, ok := pathIDs(c)
	if !ok {
		return
	}

	var body groupActionInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A dashboard caller with a live session goes through the optimistic
	// engine so its local board updates immediately.
	if s := sessions.ForAgency(c.GetHeader(sessionHeader), agencyID); s != nil {
		var err error
		if action == content.ActionApprove {
			err = s.ApproveGroup(c.Request.Context(), projectID, body.PieceIDs)
		} else {
			err = s.RequestAdjustment(c.Request.Context(), projectID, body.PieceIDs, body.Feedback)
		}
		if err != nil {
			writeGroupError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	project, ok := loadProject(c, agencyID, projectID)
	if !ok {
		return
	}

	// Validate the whole group before touching the store, so a posted slide
	// or missing feedback rejects the action with no partial writes.
	if _, err := content.ApplyGroup(project.StaticPieces, body.PieceIDs, action, body.Feedback); err != nil {
		writeGroupError(c, err)
		return
	}
	if _, err := content.ApplyGroup(project.CarouselPieces, body.PieceIDs, action, body.Feedback); err != nil {
		writeGroupError(c, err)
		return
	}

	status := content.StatusApproved
	if action == content.ActionRequestAdjust {
		status = content.StatusAdjust
	}

	// One RPC per piece, dispatched concurrently and awaited jointly.
	errCh := make(chan error, len(body.PieceIDs))
	for n, id := range body.PieceIDs {
		feedback := ""
		if n == 0 {
			feedback = body.Feedback
		}
		go func(pieceID, feedback string) {
			errCh <- dataStore.UpdatePortalPiece(c.Request.Context(), state.PortalUpdate{
				AgencyID:  agencyID,
				ProjectID: projectID,
				PieceID:   pieceID,
				Status:    status,
				Feedback:  feedback,
			})
		}(id, feedback)
	}
	var firstErr error
	for range body.PieceIDs {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		writeGroupError(c, firstErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeGroupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, content.ErrFeedbackRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feedback é obrigatório para solicitar ajustes."})
	case errors.Is(err, content.ErrPostedImmutable):
		c.JSON(http.StatusConflict, gin.H{"error": "Conteúdo publicado não pode ser alterado."})
	case errors.Is(err, state.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ocorreu um erro ao atualizar. Tente novamente."})
	}
}
