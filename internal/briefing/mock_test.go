package briefing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-hub/internal/domain/content"
)

func TestMockBriefingShape(t *testing.T) {
	out, err := Mock{}.GenerateBriefing(context.Background(), Input{
		Client:              "Padaria Pão Quente",
		Segment:             "alimentação",
		Objective:           "aumentar vendas no balcão",
		Channels:            []string{"Instagram"},
		ContentCount:        3,
		SpecificPostRequest: "promoção de inauguração",
		CarouselCount:       2,
		CarouselSlideCount:  4,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, out.ToneOfVoice)
	assert.NotEmpty(t, out.Persona)
	assert.NotEmpty(t, out.PublicationCalendar)

	require.Len(t, out.StaticPieces, 3)
	assert.Contains(t, out.StaticPieces[0].Caption, "promoção de inauguração")

	require.Len(t, out.Carousels, 2)
	for _, slides := range out.Carousels {
		require.Len(t, slides, 4)
		// caption only on the first slide, cta only on the last
		assert.NotEmpty(t, slides[0].Caption)
		assert.Empty(t, slides[1].Caption)
		assert.Empty(t, slides[0].CTA)
		assert.NotEmpty(t, slides[3].CTA)
	}
}

func TestCarouselPiecesGroupBackByTitle(t *testing.T) {
	out, err := Mock{}.GenerateBriefing(context.Background(), Input{
		Client:             "Cliente",
		Segment:            "varejo",
		Objective:          "lançamento",
		ContentCount:       1,
		CarouselCount:      2,
		CarouselSlideCount: 3,
	})
	require.NoError(t, err)

	list := out.CarouselPieceList()
	require.Len(t, list, 6)
	for _, p := range list {
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, content.StatusPending, p.Status)
	}

	groups := content.GroupCarousels(list)
	require.Len(t, groups, 2)
	assert.Equal(t, "Carrossel 1", groups[0].Name)
	assert.Equal(t, "Carrossel 2", groups[1].Name)
	assert.Len(t, groups[0].SlideIDs(), 3)
}

func TestMockOptimizeCommands(t *testing.T) {
	res, err := Mock{}.OptimizeContent(context.Background(), OptimizeInput{
		Text: "Texto base", Command: CommandVariations,
	})
	require.NoError(t, err)
	assert.Len(t, res.Variations, 2)
	assert.Empty(t, res.Result)

	res, err = Mock{}.OptimizeContent(context.Background(), OptimizeInput{
		Text: "Texto base", Command: CommandAddHashtags,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Result, "#")
}
