package analysis

import (
	"google.golang.org/genai"

	"magic-mirror-server/modules/common/domain"
)

// buildSchema maps the domain's analysis fields onto a structured-output
// schema so the model returns exactly the required JSON object.
func buildSchema(d *domain.Domain) *genai.Schema {
	properties := make(map[string]*genai.Schema, len(d.AnalysisFields))
	for _, f := range d.AnalysisFields {
		properties[f.Name] = &genai.Schema{
			Type:        genai.TypeString,
			Description: f.Description,
		}
	}

	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
		Required:   d.RequiredFieldNames(),
	}
}

// buildParts assembles the subject image plus the fixed analysis instruction.
func buildParts(d *domain.Domain, imageData []byte) []*genai.Part {
	return []*genai.Part{
		genai.NewPartFromBytes(imageData, "image/jpeg"),
		genai.NewPartFromText(d.AnalysisInstruction),
	}
}
