package synthesis

import (
	"google.golang.org/genai"

	"magic-mirror-server/modules/common/domain"
)

// buildParts assembles the generation request. The subject image always comes
// first. With a custom reference image the service relies on the reference,
// otherwise on the item's textual description alone.
func buildParts(d *domain.Domain, subjectImage []byte, description string, referenceImage []byte) []*genai.Part {
	parts := []*genai.Part{
		genai.NewPartFromBytes(subjectImage, "image/jpeg"),
	}

	if len(referenceImage) > 0 {
		parts = append(parts,
			genai.NewPartFromBytes(referenceImage, "image/jpeg"),
			genai.NewPartFromText(d.ReferenceTryOnPrompt()),
		)
	} else {
		parts = append(parts, genai.NewPartFromText(d.TextTryOnPrompt(description)))
	}

	return parts
}
