package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"magic-mirror-server/modules/common/domain"
)

func TestParseResultValidPayload(t *testing.T) {
	text := `{
		"faceShape": "Oval",
		"skinTone": "warm beige",
		"currentHairTexture": "Wavy",
		"hairColorEstimate": "dark brown",
		"styleAdvice": "A layered cut would frame your face well."
	}`

	result, err := ParseResult(domain.Hairstyle, text)
	require.NoError(t, err)
	assert.Equal(t, "Oval", result["faceShape"])
	assert.Equal(t, "Wavy", result["currentHairTexture"])
	assert.Len(t, result, 5)
}

func TestParseResultRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "not json", text: "sorry, I cannot analyze this image"},
		{name: "wrong shape", text: `["faceShape", "Oval"]`},
		{
			name: "missing required field",
			text: `{"faceShape": "Oval", "skinTone": "warm", "currentHairTexture": "Wavy", "hairColorEstimate": "brown"}`,
		},
		{
			name: "empty required field",
			text: `{"faceShape": "", "skinTone": "warm", "currentHairTexture": "Wavy", "hairColorEstimate": "brown", "styleAdvice": "x"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResult(domain.Hairstyle, tt.text)
			require.Error(t, err)

			var analysisErr *Error
			assert.ErrorAs(t, err, &analysisErr)
		})
	}
}

func TestParseResultPerDomainFields(t *testing.T) {
	text := `{
		"heightEstimate": "around 175cm",
		"shoulderWidth": "average",
		"bodyShape": "rectangle",
		"suggestedSize": "M",
		"styleAdvice": "Structured jackets add definition."
	}`

	result, err := ParseResult(domain.Clothing, text)
	require.NoError(t, err)
	assert.Equal(t, "M", result["suggestedSize"])

	// Clothing payloads do not satisfy the hairstyle contract.
	_, err = ParseResult(domain.Hairstyle, text)
	assert.Error(t, err)
}

func TestBuildSchemaCoversAllDomainFields(t *testing.T) {
	schema := buildSchema(domain.Hairstyle)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.ElementsMatch(t, domain.Hairstyle.RequiredFieldNames(), schema.Required)
	for _, f := range domain.Hairstyle.AnalysisFields {
		prop, ok := schema.Properties[f.Name]
		require.True(t, ok, "missing schema property %q", f.Name)
		assert.Equal(t, genai.TypeString, prop.Type)
		assert.Equal(t, f.Description, prop.Description)
	}
}

func TestBuildPartsOrdersImageBeforeInstruction(t *testing.T) {
	parts := buildParts(domain.Hairstyle, []byte("jpeg-bytes"))

	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, []byte("jpeg-bytes"), parts[0].InlineData.Data)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MIMEType)
	assert.Equal(t, domain.Hairstyle.AnalysisInstruction, parts[1].Text)
}
