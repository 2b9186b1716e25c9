package briefing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// maxDocumentContext truncates pasted client documents before prompting.
const maxDocumentContext = 15000

// LLM generates briefings through an OpenAI-compatible chat model. Briefing
// generation degrades to the mock on model errors; the copy assistant
// surfaces them, since the user is waiting on that exact text.
type LLM struct {
	model  llms.Model
	mock   Mock
	logger *zap.Logger
}

func NewLLM(apiKey, model string, logger *zap.Logger) (*LLM, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := openai.New(openai.WithToken(apiKey), openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("briefing llm init: %w", err)
	}
	return &LLM{model: client, mock: NewMock(), logger: logger}, nil
}

func (l *LLM) GenerateBriefing(ctx context.Context, in Input) (Output, error) {
	prompt := briefingPrompt(in)

	raw, err := llms.GenerateFromSinglePrompt(ctx, l.model, prompt, llms.WithJSONMode())
	if err != nil {
		l.logger.Warn("briefing generation failed, using mock output", zap.Error(err))
		return l.mock.GenerateBriefing(ctx, in)
	}

	var out Output
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		l.logger.Warn("briefing response was not valid JSON, using mock output", zap.Error(err))
		return l.mock.GenerateBriefing(ctx, in)
	}
	if len(out.StaticPieces) == 0 {
		l.logger.Warn("briefing response had no content pieces, using mock output")
		return l.mock.GenerateBriefing(ctx, in)
	}
	return out, nil
}

func briefingPrompt(in Input) string {
	length := in.ContentLength
	if length == "" {
		length = LengthMedium
	}

	var b strings.Builder
	b.WriteString("Você é um estrategista de marketing digital sênior de uma agência. Crie um briefing completo para um novo projeto de cliente.\n\n")

	if in.DocumentContext != "" {
		doc := in.DocumentContext
		if len(doc) > maxDocumentContext {
			doc = doc[:maxDocumentContext]
		}
		fmt.Fprintf(&b, "CONTEXTO ADICIONAL (extraído de documento do cliente):\n---\n%s\n---\nUse o contexto acima como principal fonte de verdade sobre o cliente: tom de voz, produtos e persona devem refletir o documento.\n\n", doc)
	}

	fmt.Fprintf(&b, "- Nome da empresa/cliente: %s\n", in.Client)
	fmt.Fprintf(&b, "- Segmento/mercado: %s\n", in.Segment)
	fmt.Fprintf(&b, "- Objetivo do conteúdo: %s\n", in.Objective)
	fmt.Fprintf(&b, "- Canais de atuação: %s\n", strings.Join(in.Channels, ", "))
	fmt.Fprintf(&b, "- Quantidade de posts estáticos: %d\n", in.ContentCount)
	fmt.Fprintf(&b, "- Tamanho preferido para títulos e subtítulos: %s\n", length)
	if in.SpecificPostRequest != "" {
		fmt.Fprintf(&b, "- Pelo menos uma das peças DEVE ser sobre: %q\n", in.SpecificPostRequest)
	}

	b.WriteString(`
Responda com um único objeto JSON, chaves em snake_case:
- "tom_de_voz": tom de voz apropriado para a marca.
- "persona": descrição detalhada do público-alvo.
- "calendario_publicacao": calendário sugerido em texto simples.
- "pecas_conteudo": array com exatamente o número pedido de peças estáticas; cada peça tem "title", "subtitle", "cta", "caption" (legenda completa com hashtags) e "imagePrompt" (prompt detalhado para IA de imagem).
`)

	if in.CarouselCount > 0 && in.CarouselSlideCount > 0 {
		fmt.Fprintf(&b, `- "pecas_carrosseis": array com %d carrosséis; cada carrossel é um array de %d lâminas com os mesmos campos das peças.
Regras dos carrosséis: fluxo narrativo contínuo com começo, meio e fim; o campo "cta" fica vazio em todas as lâminas exceto a última; a legenda completa vai SOMENTE no "caption" da primeira lâmina, as demais ficam vazias; o "title" de cada lâmina deve indicar o carrossel e a posição, por exemplo "Carrossel 1: Título da lâmina".
`, in.CarouselCount, in.CarouselSlideCount)
	}

	b.WriteString("\nRegra de capitalização: use capitalização natural da língua portuguesa, nunca Title Case.\n")
	return b.String()
}

func (l *LLM) OptimizeContent(ctx context.Context, in OptimizeInput) (OptimizeResult, error) {
	task := ""
	wantList := false
	switch in.Command {
	case CommandVariations:
		task = "Gere 5 variações criativas e diferentes para o texto, mantendo o objetivo principal."
		wantList = true
	case CommandShorten:
		task = "Reescreva o texto para ser mais curto, conciso e direto, mantendo a mensagem principal."
	case CommandImpact:
		task = "Reescreva o texto para ser mais impactante e persuasivo, com palavras fortes e estrutura que prenda a atenção."
	case CommandRewriteFun:
		task = "Reescreva o texto com um tom mais divertido, descontraído e informal."
	case CommandRewriteFormal:
		task = "Reescreva o texto com um tom mais formal, profissional e institucional."
	case CommandAddHashtags:
		task = "Adicione ao final do texto uma lista de 5 a 7 hashtags altamente relevantes, separadas por espaços."
	default:
		return OptimizeResult{}, fmt.Errorf("unknown optimize command %q", in.Command)
	}

	shape := `{"result": "texto reescrito"}`
	if wantList {
		shape = `{"result": ["variação 1", "variação 2", "variação 3", "variação 4", "variação 5"]}`
	}

	prompt := fmt.Sprintf(`Você é um assistente de IA especialista em redação publicitária.

Contexto do projeto:
- Cliente: %s
- Objetivo principal: %s

Tarefa: %s

Texto original:
%q

Use capitalização natural da língua portuguesa, nunca Title Case.
Responda com um único objeto JSON no formato: %s`,
		in.Client, in.Objective, task, in.Text, shape)

	raw, err := llms.GenerateFromSinglePrompt(ctx, l.model, prompt, llms.WithJSONMode())
	if err != nil {
		return OptimizeResult{}, fmt.Errorf("optimize content: %w", err)
	}

	if wantList {
		var parsed struct {
			Result []string `json:"result"`
		}
		if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
			return OptimizeResult{}, fmt.Errorf("optimize content: bad response: %w", err)
		}
		return OptimizeResult{Variations: parsed.Result}, nil
	}

	var parsed struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return OptimizeResult{}, fmt.Errorf("optimize content: bad response: %w", err)
	}
	return OptimizeResult{Result: parsed.Result}, nil
}
