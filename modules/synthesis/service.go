package synthesis

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"magic-mirror-server/modules/common/config"
	"magic-mirror-server/modules/common/domain"
)

// Service is a single-call wrapper around the Gemini image model. No retries:
// callers treat any failure as terminal for the attempt.
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

	log.Printf("✅ [Synthesis] Genai client initialized (model: %s)", cfg.GeminiImageModel)
	return &Service{
		genaiClient: genaiClient,
		model:       cfg.GeminiImageModel,
		domain:      d,
	}, nil
}

// Generate renders the try-on composite: the subject wearing the described
// (or referenced) style. Returns the raw bytes of the first inline image part.
func (s *Service) Generate(ctx context.Context, subjectImage []byte, description string, referenceImage []byte) ([]byte, error) {
	log.Printf("🎨 [Synthesis] Calling Gemini (model: %s, subject: %d bytes, reference: %v)",
		s.model, len(subjectImage), len(referenceImage) > 0)

	content := &genai.Content{Parts: buildParts(s.domain, subjectImage, description, referenceImage)}

	resp, err := s.genaiClient.Models.GenerateContent(ctx, s.model, []*genai.Content{content}, nil)
	if err != nil {
		return nil, &Error{Err: err}
	}

	if len(resp.Candidates) == 0 {
		return nil, &Error{Err: fmt.Errorf("no candidates in response")}
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				log.Printf("✅ [Synthesis] Received image: %d bytes", len(part.InlineData.Data))
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, &Error{Err: fmt.Errorf("no image data in response")}
}
