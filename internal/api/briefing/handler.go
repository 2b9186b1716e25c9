package briefing

import (
	"net/http"

	"agency-hub/internal/briefing"

	"github.com/gin-gonic/gin"
)

var generator briefing.Generator

func Configure(gen briefing.Generator) {
	generator = gen
}

// GenerateBriefing runs the content planner without creating a project, so
// the client can preview and edit the plan first.
func GenerateBriefing(c *gin.Context) {
	var in briefing.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := generator.GenerateBriefing(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Falha ao gerar o briefing. Tente novamente."})
		return
	}

	c.JSON(http.StatusOK, out)
}

// OptimizeContent runs one copy-assistant command over a text field.
func OptimizeContent(c *gin.Context) {
	var in briefing.OptimizeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !in.Command.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown optimize command"})
		return
	}

	res, err := generator.OptimizeContent(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "A IA não conseguiu processar sua solicitação. Tente novamente."})
		return
	}

	c.JSON(http.StatusOK, res)
}
