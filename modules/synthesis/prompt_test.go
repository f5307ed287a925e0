package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magic-mirror-server/modules/common/domain"
)

func TestBuildPartsWithCatalogDescription(t *testing.T) {
	parts := buildParts(domain.Hairstyle, []byte("subject"), "a sleek bob", nil)

	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, []byte("subject"), parts[0].InlineData.Data)

	assert.Contains(t, parts[1].Text, "a sleek bob")
}

func TestBuildPartsWithReferenceImage(t *testing.T) {
	parts := buildParts(domain.Hairstyle, []byte("subject"), "ignored", []byte("reference"))

	require.Len(t, parts, 3)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, []byte("reference"), parts[1].InlineData.Data)

	// With a reference the prompt instructs off the second image; the item
	// description does not leak in.
	assert.Equal(t, domain.Hairstyle.ReferenceTryOnPrompt(), parts[2].Text)
	assert.NotContains(t, parts[2].Text, "ignored")
}

func TestBuildPartsSubjectAlwaysFirst(t *testing.T) {
	for _, ref := range [][]byte{nil, []byte("reference")} {
		parts := buildParts(domain.Clothing, []byte("subject"), "denim jacket", ref)
		require.NotNil(t, parts[0].InlineData)
		assert.Equal(t, []byte("subject"), parts[0].InlineData.Data)
	}
}
