// Package briefing turns a short project intake into a full content plan:
// tone of voice, persona, publication calendar and ready-to-review content
// pieces. Generation goes through an LLM when a key is configured and falls
// back to deterministic mock output otherwise, so the rest of the product
// works without one.
package briefing

import (
	"context"

	"agency-hub/internal/domain/content"
)

type ContentLength string

const (
	LengthCompact ContentLength = "compacto"
	LengthMedium  ContentLength = "médio"
	LengthLong    ContentLength = "longo"
)

// Input is the project intake form.
type Input struct {
	Client              string        `json:"client" binding:"required"`
	Segment             string        `json:"segment" binding:"required"`
	Objective           string        `json:"objective" binding:"required"`
	Channels            []string      `json:"channels"`
	ContentCount        int           `json:"content_count" binding:"required,min=1,max=20"`
	SpecificPostRequest string        `json:"specific_post_request"`
	ContentLength       ContentLength `json:"content_length"`
	CarouselCount       int           `json:"carousel_count"`
	CarouselSlideCount  int           `json:"carousel_slide_count"`
	DocumentContext     string        `json:"document_context"`
}

// PieceDraft is one generated piece before it gets an id and a status.
type PieceDraft struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	CTA         string `json:"cta"`
	Caption     string `json:"caption"`
	ImagePrompt string `json:"imagePrompt"`
}

// Output is the generated plan. Carousels come grouped; flattening into the
// stored piece list happens in Pieces.
type Output struct {
	ToneOfVoice         string         `json:"tom_de_voz"`
	Persona             string         `json:"persona"`
	PublicationCalendar string         `json:"calendario_publicacao"`
	StaticPieces        []PieceDraft   `json:"pecas_conteudo"`
	Carousels           [][]PieceDraft `json:"pecas_carrosseis,omitempty"`
}

// OptimizeCommand names one copywriting assistant action.
type OptimizeCommand string

const (
	CommandVariations    OptimizeCommand = "variations"
	CommandShorten       OptimizeCommand = "shorten"
	CommandImpact        OptimizeCommand = "impact"
	CommandRewriteFun    OptimizeCommand = "rewrite_fun"
	CommandRewriteFormal OptimizeCommand = "rewrite_formal"
	CommandAddHashtags   OptimizeCommand = "add_hashtags"
)

func (c OptimizeCommand) Valid() bool {
	switch c {
	case CommandVariations, CommandShorten, CommandImpact,
		CommandRewriteFun, CommandRewriteFormal, CommandAddHashtags:
		return true
	}
	return false
}

// OptimizeInput rewrites one text field under a project's context.
type OptimizeInput struct {
	Text      string          `json:"text" binding:"required"`
	Command   OptimizeCommand `json:"command" binding:"required"`
	Client    string          `json:"client"`
	Objective string          `json:"objective"`
}

// OptimizeResult carries either one rewritten text or, for variations, a set.
type OptimizeResult struct {
	Result     string   `json:"result,omitempty"`
	Variations []string `json:"variations,omitempty"`
}

// Generator produces briefings and runs the copy assistant.
type Generator interface {
	GenerateBriefing(ctx context.Context, in Input) (Output, error)
	OptimizeContent(ctx context.Context, in OptimizeInput) (OptimizeResult, error)
}

// StaticPieceList converts the static drafts into stored pending pieces.
func (o Output) StaticPieceList() content.PieceList {
	out := make(content.PieceList, 0, len(o.StaticPieces))
	for _, d := range o.StaticPieces {
		out = append(out, content.NewPiece(d.Title, d.Subtitle, d.CTA, d.Caption, d.ImagePrompt))
	}
	return out
}

// CarouselPieceList flattens the carousels into one stored list. Slide titles
// keep their "Carrossel N" markers, which is how the portal groups them back.
func (o Output) CarouselPieceList() content.PieceList {
	var out content.PieceList
	for _, group := range o.Carousels {
		for _, d := range group {
			out = append(out, content.NewPiece(d.Title, d.Subtitle, d.CTA, d.Caption, d.ImagePrompt))
		}
	}
	return out
}
