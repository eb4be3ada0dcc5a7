package summarizer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"paperapi/internal/config"
)

// Generator sends a multi-part prompt to a generative model and returns its text answer.
type Generator interface {
	GenerateText(ctx context.Context, parts ...genai.Part) (string, error)
}

var errEmptyResponse = errors.New("no response from model")

// Gemini is a Generator backed by a Gemini model.
type Gemini struct {
	model *genai.GenerativeModel
}

// NewGemini configures the model named in cfg.
func NewGemini(client *genai.Client, cfg config.AIConfig) *Gemini {
	m := client.GenerativeModel(cfg.Model)
	m.SetTemperature(float32(cfg.Temperature))
	m.SetMaxOutputTokens(int32(cfg.MaxOutputTokens))
	return &Gemini{model: m}
}

// GenerateText returns the text of the first candidate.
func (g *Gemini) GenerateText(ctx context.Context, parts ...genai.Part) (string, error) {
	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", errEmptyResponse
	}
	return sb.String(), nil
}
