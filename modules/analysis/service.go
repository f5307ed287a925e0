package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"magic-mirror-server/modules/common/config"
	"magic-mirror-server/modules/common/domain"
)

// Service is a single-call wrapper around the Gemini vision model. It does
// not retry; callers treat any failure as terminal for the attempt.
type Service struct {
	genaiClient *genai.Client
	model       string
	domain      *domain.Domain
}

func NewService(ctx context.Context, d *domain.Domain) (*Service, error) {
	cfg := config.GetConfig()

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Genai client: %w", err)
	}

	log.Printf("✅ [Analysis] Genai client initialized (model: %s)", cfg.GeminiVisionModel)
	return &Service{
		genaiClient: genaiClient,
		model:       cfg.GeminiVisionModel,
		domain:      d,
	}, nil
}

// Analyze sends one normalized subject image and returns the validated
// attribute record.
func (s *Service) Analyze(ctx context.Context, imageData []byte) (Result, error) {
	log.Printf("🔍 [Analysis] Calling Gemini (model: %s, image: %d bytes)", s.model, len(imageData))

	content := &genai.Content{Parts: buildParts(s.domain, imageData)}

	resp, err := s.genaiClient.Models.GenerateContent(
		ctx,
		s.model,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   buildSchema(s.domain),
		},
	)
	if err != nil {
		return nil, &Error{Err: err}
	}

	text := firstText(resp)
	if text == "" {
		return nil, &Error{Err: fmt.Errorf("no text in response")}
	}

	return ParseResult(s.domain, text)
}

// ParseResult decodes and validates the model's JSON against the domain's
// required field set.
func ParseResult(d *domain.Domain, text string) (Result, error) {
	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, &Error{Err: fmt.Errorf("malformed JSON: %w", err)}
	}

	for _, name := range d.RequiredFieldNames() {
		if strings.TrimSpace(result[name]) == "" {
			return nil, &Error{Err: fmt.Errorf("missing required field %q", name)}
		}
	}

	log.Printf("✅ [Analysis] Parsed %d attributes", len(result))
	return result, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}
