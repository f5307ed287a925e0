package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // PNG 디코더 등록
	"log"
	"strings"

	"github.com/disintegration/imaging"
	_ "github.com/kolesa-team/go-webp/decoder" // WebP 디코더 등록
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// Mirror canvas: portrait 9:16, the capture device's native output.
const (
	MirrorWidth  = 1080
	MirrorHeight = 1920

	// JPEG quality for every encoded frame.
	FrameQuality = 90
)

// Normalize letterboxes an arbitrary image onto a black 1080x1920 canvas
// (aspect-preserving contain fit) and re-encodes it as JPEG. Uploads become
// interchangeable with live captures this way. If the input cannot be decoded
// it is returned unchanged rather than failing the capture.
func Normalize(imageData []byte) []byte {
	src, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		log.Printf("⚠️  Normalize: decode failed, passing image through: %v", err)
		return imageData
	}

	fitted := imaging.Fit(src, MirrorWidth, MirrorHeight, imaging.Lanczos)
	canvas := imaging.New(MirrorWidth, MirrorHeight, color.Black)
	canvas = imaging.PasteCenter(canvas, fitted)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: FrameQuality}); err != nil {
		log.Printf("⚠️  Normalize: encode failed, passing image through: %v", err)
		return imageData
	}

	return buf.Bytes()
}

// MirrorFrame flips a camera frame horizontally so the output matches what
// the user sees in the mirror, then encodes it as JPEG.
func MirrorFrame(imageData []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode camera frame: %w", err)
	}

	flipped := imaging.FlipH(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flipped, &jpeg.Options{Quality: FrameQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode camera frame: %w", err)
	}

	return buf.Bytes(), nil
}

// ConvertToWebP re-encodes an image as lossy WebP at the given quality.
func ConvertToWebP(imageData []byte, quality float32) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	if err := webp.Encode(&webpBuffer, img, options); err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	webpData := webpBuffer.Bytes()
	log.Printf("✅ Converted to WebP: %d bytes → %d bytes (%.1f%% reduction)",
		len(imageData), len(webpData),
		float64(len(imageData)-len(webpData))/float64(len(imageData))*100)

	return webpData, nil
}

// StripDataURL removes a data-URL prefix if present and decodes the base64
// payload. Raw base64 without a prefix is accepted too.
func StripDataURL(dataURL string) ([]byte, error) {
	payload := dataURL
	if strings.HasPrefix(dataURL, "data:") {
		idx := strings.Index(dataURL, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		payload = dataURL[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return data, nil
}

// ToDataURL rebuilds a displayable data URL around a binary image payload.
func ToDataURL(mimeType string, imageData []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(imageData)
}
