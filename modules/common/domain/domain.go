package domain

import "fmt"

// Field is one attribute the vision model must return for a domain.
type Field struct {
	Name        string
	Description string
}

// Domain parameterizes the generic try-on pipeline. The hairstyle and clothing
// mirrors share one state machine and differ only in these values.
type Domain struct {
	Key   string // config value, catalog fallback key
	Label string // user-facing app label

	// Analysis
	AnalysisInstruction string
	AnalysisFields      []Field

	// Synthesis prompt templates
	textTryOnTemplate    string // takes the catalog item description
	referenceInstruction string // used when a custom reference image is attached

	// Catalog
	CatalogTable string

	// CustomItemDescription labels user-uploaded reference items.
	CustomItemDescription string
}

// TextTryOnPrompt builds the synthesis instruction for a catalog item description.
func (d *Domain) TextTryOnPrompt(description string) string {
	return fmt.Sprintf(d.textTryOnTemplate, description)
}

// ReferenceTryOnPrompt returns the instruction used alongside a custom
// reference image. The service relies on the image, not on item text.
func (d *Domain) ReferenceTryOnPrompt() string {
	return d.referenceInstruction
}

// RequiredFieldNames lists the JSON keys the analysis response must contain.
func (d *Domain) RequiredFieldNames() []string {
	names := make([]string, 0, len(d.AnalysisFields))
	for _, f := range d.AnalysisFields {
		names = append(names, f.Name)
	}
	return names
}

// Hairstyle is the hair studio variant of the mirror.
var Hairstyle = &Domain{
	Key:   "hairstyle",
	Label: "Hair Studio",

	AnalysisInstruction: `Analyze this person's face for a hairstyle try-on application.
Identify face shape, skin tone, and current hair. Be polite and professional.
Provide the output strictly in JSON format.`,
	AnalysisFields: []Field{
		{Name: "faceShape", Description: "Estimated face shape (e.g., 'Oval', 'Square', 'Heart', 'Round')"},
		{Name: "skinTone", Description: "Description of skin tone"},
		{Name: "currentHairTexture", Description: "Current hair texture (e.g., 'Straight', 'Curly', 'Wavy')"},
		{Name: "hairColorEstimate", Description: "Current hair color"},
		{Name: "styleAdvice", Description: "One sentence hairstyle advice based on face shape"},
	},

	textTryOnTemplate: `Change the person's hairstyle to: %s.
Maintain the person's exact face features, expression, skin texture, and current clothing.
Only modify the hair.
Make it look photorealistic. High quality salon photography.`,
	referenceInstruction: `Using the second image (hairstyle) as a reference, apply this hairstyle to the person in the first image.
Maintain the person's exact face features, skin texture, makeup, and clothing.
Only change the hair. Blend it naturally with the forehead and ears.
Make it look photorealistic.`,

	CatalogTable:          "hairstyles",
	CustomItemDescription: "A custom uploaded hairstyle reference",
}

// Clothing is the outfit fitting room variant of the mirror.
var Clothing = &Domain{
	Key:   "clothing",
	Label: "Fitting Room",

	AnalysisInstruction: `Analyze this person's body for a clothing try-on application.
Estimate height, shoulder width, body shape and a suggested garment size. Be polite and professional.
Provide the output strictly in JSON format.`,
	AnalysisFields: []Field{
		{Name: "heightEstimate", Description: "Estimated height range (e.g., '165-170cm')"},
		{Name: "shoulderWidth", Description: "Description of shoulder width"},
		{Name: "bodyShape", Description: "Estimated body shape (e.g., 'Rectangle', 'Triangle', 'Hourglass')"},
		{Name: "suggestedSize", Description: "Suggested garment size (e.g., 'S', 'M', 'L')"},
		{Name: "styleAdvice", Description: "One sentence outfit advice based on body shape"},
	},

	textTryOnTemplate: `Change the person's outfit to: %s.
Maintain the person's exact face features, expression, skin texture, and hairstyle.
Only modify the clothing.
Make it look photorealistic. High quality fashion photography.`,
	referenceInstruction: `Using the second image (outfit) as a reference, dress the person in the first image in this outfit.
Maintain the person's exact face features, skin texture, and hairstyle.
Only change the clothing. Fit it naturally to the person's body.
Make it look photorealistic.`,

	CatalogTable:          "outfits",
	CustomItemDescription: "A custom uploaded outfit reference",
}

// ByKey resolves a configured domain key.
func ByKey(key string) (*Domain, error) {
	switch key {
	case Hairstyle.Key:
		return Hairstyle, nil
	case Clothing.Key:
		return Clothing, nil
	default:
		return nil, fmt.Errorf("unknown try-on domain: %q", key)
	}
}
