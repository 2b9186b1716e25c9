package projects

import (
	"errors"
	"net/http"
	"strconv"

	"agency-hub/internal/briefing"
	"agency-hub/internal/domain/content"
	"agency-hub/internal/domain/projects"
	"agency-hub/internal/state"

	"github.com/gin-gonic/gin"
)

// sessionHeader carries the handle of the caller's realtime stream. Writes
// that arrive with it go through the live session (optimistic local state,
// rollback on failure); writes without it hit the store directly.
const sessionHeader = "X-Session-ID"

var (
	dataStore state.Store
	sessions  *state.Manager
	generator briefing.Generator
)

func Configure(st state.Store, m *state.Manager, gen briefing.Generator) {
	dataStore = st
	sessions = m
	generator = gen
}

func session(c *gin.Context) *state.Session {
	return sessions.ForAgency(c.GetHeader(sessionHeader), c.GetUint("agency_id"))
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
		return 0, false
	}
	return uint(id), true
}

func ListProjects(c *gin.Context) {
	rows, err := dataStore.Projects(c.Request.Context(), c.GetUint("agency_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load projects"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

type createProjectInput struct {
	Name     string   `json:"nome" binding:"required"`
	Client   string   `json:"cliente"`
	DueDate  *string  `json:"data_entrega"`
	Tags     []string `json:"tags"`
	Channels []string `json:"canais"`

	InstagramLink string `json:"link_instagram"`
	DriveLink     string `json:"link_google_drive"`
	ReferenceLink string `json:"link_referencia"`

	// When present, the content plan is generated before the insert.
	Briefing *briefing.Input `json:"briefing"`
}

// CreateProject inserts a new project in Briefing status. With a briefing
// block in the payload the generator fills tone, persona, calendar and the
// content pieces before the row is stored.
func CreateProject(c *gin.Context) {
	agencyID := c.GetUint("agency_id")

	var input createProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := projects.Project{
		AgencyID:      agencyID,
		CreatedBy:     c.GetUint("user_id"),
		Name:          input.Name,
		Client:        input.Client,
		Status:        projects.StatusBriefing,
		Tags:          input.Tags,
		Channels:      input.Channels,
		InstagramLink: input.InstagramLink,
		DriveLink:     input.DriveLink,
		ReferenceLink: input.ReferenceLink,
	}
	if input.DueDate != nil {
		due, err := parseDate(*input.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data_entrega"})
			return
		}
		p.DueDate = &due
	}

	if input.Briefing != nil {
		plan, err := generator.GenerateBriefing(c.Request.Context(), *input.Briefing)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Falha ao gerar o briefing. Tente novamente."})
			return
		}
		p.ToneOfVoice = plan.ToneOfVoice
		p.Persona = plan.Persona
		p.PublicationCalendar = plan.PublicationCalendar
		p.Segment = input.Briefing.Segment
		p.Objective = input.Briefing.Objective
		p.StaticPieces = plan.StaticPieceList()
		p.CarouselPieces = plan.CarouselPieceList()
		if len(input.Briefing.Channels) > 0 {
			p.Channels = input.Briefing.Channels
		}
	}

	saved, err := dataStore.InsertProject(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func GetProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	rows, err := dataStore.Projects(c.Request.Context(), c.GetUint("agency_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load project"})
		return
	}
	for _, p := range rows {
		if p.ID == id {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
}

// UpdateProject replaces the full row, which is how the project editor saves.
func UpdateProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var p projects.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.ID = id
	p.AgencyID = c.GetUint("agency_id")

	if s := session(c); s != nil {
		if err := s.UpdateProject(c.Request.Context(), p); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, state.ErrNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": "Failed to update project"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Project updated"})
		return
	}

	saved, err := dataStore.SaveProject(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

// MoveProject is the kanban drag-drop endpoint.
func MoveProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var body struct {
		Status projects.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !body.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	s := session(c)
	if s == nil {
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": "Realtime session required to move projects"})
		return
	}

	if err := s.MoveProject(c.Request.Context(), id, body.Status); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, state.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "Failed to move project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project moved"})
}

func DeleteProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if s := session(c); s != nil {
		if err := s.DeleteProject(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
		return
	}

	if err := dataStore.DeleteProject(c.Request.Context(), c.GetUint("agency_id"), id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, state.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "Failed to delete project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

// Carousels exposes the derived carousel grouping of one project, the same
// view the client portal renders.
func Carousels(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	rows, err := dataStore.Projects(c.Request.Context(), c.GetUint("agency_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load project"})
		return
	}
	for _, p := range rows {
		if p.ID != id {
			continue
		}
		groups := content.GroupCarousels(p.CarouselPieces)
		out := make([]gin.H, 0, len(groups))
		for _, g := range groups {
			art, caption := g.Cover()
			out = append(out, gin.H{
				"name":         g.Name,
				"slides":       g.Slides,
				"approved":     g.Approved(),
				"needs_adjust": g.NeedsAdjust(),
				"feedback":     g.Feedback(),
				"cover_art":    art,
				"caption":      caption,
			})
		}
		c.JSON(http.StatusOK, gin.H{"carousels": out})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
}
