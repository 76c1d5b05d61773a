package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash"

const prompt = "Eres un analista financiero para una floristería. Resume los indicadores clave en 2-3 oraciones claras. " +
	"Destaca tendencias positivas o riesgos, y menciona las categorías que más contribuyen."

type Gemini struct {
	client *genai.Client
	model  string
}

// New returns a Gemini generator, or Noop when apiKey is empty.
func New(ctx context.Context, apiKey, model string) (Generator, error) {
	if apiKey == "" {
		return Noop{}, nil
	}

	return NewGemini(ctx, apiKey, model)
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, stats Stats) (string, error) {
	payload, err := json.Marshal(stats)
	if err != nil {
		return "", fmt.Errorf("encoding stats: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{Text: string(payload)},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty response from model")
	}

	return text, nil
}
