package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/vhducng/certprep/config"
	"github.com/vhducng/certprep/internal/errs"
	"google.golang.org/api/option"
)

// CompletionService is the black-box text-generation capability: one prompt
// in, the model's full text reply out.
type CompletionService interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
}

type geminiCompletionService struct {
	model *genai.GenerativeModel
	cfg   *config.Config
}

func NewGeminiCompletionService(cfg *config.Config) (CompletionService, error) {
	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Test generation will be non-functional.")
		return &geminiCompletionService{cfg: cfg, model: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Gemini.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel(cfg.Gemini.Model)
	return &geminiCompletionService{model: model, cfg: cfg}, nil
}

func (s *geminiCompletionService) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	if s.model == nil {
		return "", fmt.Errorf("gemini client not initialized (missing API key)")
	}

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: gemini call: %v", errs.ErrTimeout, err)
		}
		log.Error().Err(err).Str("model", s.cfg.Gemini.Model).Msg("Gemini API error")
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Msg("Gemini returned no candidates or parts in response")
		return "", fmt.Errorf("gemini returned no content")
	}

	var reply string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			reply += string(txt)
		}
	}
	if reply == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return reply, nil
}
