package capture

import (
	"fmt"

	"magic-mirror-server/modules/common/utils"
)

// Source identifies which provider produced a frame. Both providers share one
// output contract: a mirror-ready JPEG still or a failure.
type Source string

const (
	// SourceCamera frames arrive from the live device stream. They are
	// produced at the mirror's native aspect already, so they skip
	// normalization, but get the horizontal flip so the output matches what
	// the user sees rather than the sensor's raw orientation.
	SourceCamera Source = "camera"

	// SourceUpload frames come from a user-selected file and are letterboxed
	// onto the mirror canvas first.
	SourceUpload Source = "upload"
)

// Still turns a raw payload from either provider into a session-ready frame.
func Still(source Source, raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty frame payload")
	}

	switch source {
	case SourceCamera:
		return utils.MirrorFrame(raw)
	case SourceUpload:
		return utils.Normalize(raw), nil
	default:
		return nil, fmt.Errorf("unknown capture source: %q", source)
	}
}
