package briefing

import (
	"context"
	"fmt"
	"strings"
)

// Mock generates deterministic Portuguese placeholder content. It is the
// production fallback when no LLM key is configured, not just a test double,
// so its output keeps the same shape and markers the LLM is instructed to use.
type Mock struct{}

func NewMock() Mock { return Mock{} }

func (Mock) GenerateBriefing(ctx context.Context, in Input) (Output, error) {
	length := in.ContentLength
	if length == "" {
		length = LengthMedium
	}

	pieces := make([]PieceDraft, 0, in.ContentCount)
	for i := 1; i <= in.ContentCount; i++ {
		caption := fmt.Sprintf("Legenda completa gerada para o conteúdo sobre %s.", in.Objective)
		if in.SpecificPostRequest != "" && i == 1 {
			caption += fmt.Sprintf(" Este post atende ao pedido específico: %s.", in.SpecificPostRequest)
		}
		if in.DocumentContext != "" {
			caption += " Esta legenda foi informada pelo contexto do documento."
		}
		pieces = append(pieces, PieceDraft{
			Title:       fmt.Sprintf("Título %s %d", length, i),
			Subtitle:    fmt.Sprintf("Subtítulo de tamanho %s para o conteúdo %d", length, i),
			CTA:         fmt.Sprintf("Call to action para o conteúdo %d", i),
			Caption:     caption,
			ImagePrompt: fmt.Sprintf("Um prompt de imagem para IA sobre: %s no estilo de %s", in.Objective, in.Segment),
		})
	}

	var carousels [][]PieceDraft
	if in.CarouselCount > 0 && in.CarouselSlideCount > 0 {
		for c := 1; c <= in.CarouselCount; c++ {
			slides := make([]PieceDraft, 0, in.CarouselSlideCount)
			for s := 1; s <= in.CarouselSlideCount; s++ {
				cta := ""
				if s == in.CarouselSlideCount {
					cta = "Chamada final do carrossel"
				}
				caption := ""
				if s == 1 {
					caption = fmt.Sprintf("Legenda completa do carrossel %d sobre %s.", c, in.Objective)
				}
				slides = append(slides, PieceDraft{
					Title:       fmt.Sprintf("Carrossel %d: Lâmina %d", c, s),
					Subtitle:    fmt.Sprintf("Subtítulo da lâmina %d", s),
					CTA:         cta,
					Caption:     caption,
					ImagePrompt: fmt.Sprintf("Imagem para a lâmina %d do carrossel %d", s, c),
				})
			}
			carousels = append(carousels, slides)
		}
	}

	return Output{
		ToneOfVoice: "Institucional e confiável",
		Persona: fmt.Sprintf(
			"Público-alvo detalhado (persona) para o cliente %s, com foco em interesses e dores relacionados a %s.",
			in.Client, in.Segment),
		PublicationCalendar: "Calendário de publicação sugerido:\n- Conteúdo 1: Segunda-feira\n- Conteúdo 2: Quarta-feira\n- Conteúdo 3: Sexta-feira",
		StaticPieces:        pieces,
		Carousels:           carousels,
	}, nil
}

func (Mock) OptimizeContent(ctx context.Context, in OptimizeInput) (OptimizeResult, error) {
	if in.Command == CommandVariations {
		return OptimizeResult{Variations: []string{
			fmt.Sprintf("Variação 1 para %q", in.Text),
			fmt.Sprintf("Variação 2 para %q", in.Text),
		}}, nil
	}
	if in.Command == CommandAddHashtags {
		return OptimizeResult{Result: strings.TrimSpace(in.Text) + " #marketing #conteudo #agencia"}, nil
	}
	return OptimizeResult{Result: fmt.Sprintf("Resultado para o comando %q no texto: %q", in.Command, in.Text)}, nil
}
