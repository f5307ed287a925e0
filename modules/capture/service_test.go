package capture

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magic-mirror-server/modules/common/utils"
)

func smallJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, imaging.New(64, 64, color.White), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestStillFromUploadIsNormalized(t *testing.T) {
	out, err := Still(SourceUpload, smallJPEG(t))
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, utils.MirrorWidth, img.Bounds().Dx())
	assert.Equal(t, utils.MirrorHeight, img.Bounds().Dy())
}

func TestStillFromCameraKeepsFrameSize(t *testing.T) {
	out, err := Still(SourceCamera, smallJPEG(t))
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
}

func TestStillRejectsBadInput(t *testing.T) {
	_, err := Still(SourceCamera, nil)
	assert.Error(t, err)

	_, err = Still(Source("screenshot"), smallJPEG(t))
	assert.Error(t, err)

	// A camera frame that cannot be decoded is a hard failure, not a
	// pass-through.
	_, err = Still(SourceCamera, []byte("junk"))
	assert.Error(t, err)
}
