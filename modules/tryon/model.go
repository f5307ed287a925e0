package tryon

import (
	"context"
	"errors"
	"time"

	"magic-mirror-server/modules/analysis"
	"magic-mirror-server/modules/catalog"
)

// Phase is the session's position in the try-on state machine. Exactly one
// phase is active at a time.
type Phase string

const (
	PhaseIdle         Phase = "IDLE"
	PhaseAnalyzing    Phase = "ANALYZING"
	PhaseSelecting    Phase = "SELECTING"
	PhaseSynthesizing Phase = "SYNTHESIZING"
	PhaseResultReady  Phase = "RESULT_READY"
)

const (
	// transientErrorTTL is how long a user-facing failure message stays up
	// unless a successful transition clears it first.
	transientErrorTTL = 5 * time.Second

	// poseFlagTTL is the cosmetic "pose success" affordance duration. It has
	// no bearing on analysis correctness.
	poseFlagTTL = 1 * time.Second

	// userErrorMessage is the only failure text a session ever surfaces.
	// Raw service errors stay in the logs.
	userErrorMessage = "Something went wrong. Please check your connection or try again."
)

// ErrInvalidPhase is returned when an action is triggered outside its source
// phase. The caller treats it as a no-op, not a session failure.
var ErrInvalidPhase = errors.New("action not allowed in current phase")

// Analyzer is the analysis client contract the worker invokes while the
// session is in Analyzing.
type Analyzer interface {
	Analyze(ctx context.Context, imageData []byte) (analysis.Result, error)
}

// Synthesizer is the synthesis client contract the worker invokes while the
// session is in Synthesizing.
type Synthesizer interface {
	Generate(ctx context.Context, subjectImage []byte, description string, referenceImage []byte) ([]byte, error)
}

// Invocation carries everything a queued analysis/synthesis call needs. The
// epoch tags which session generation started the call so a completion that
// arrives after a reset is discarded instead of resurrecting stale data.
type Invocation struct {
	SessionID   string `json:"sessionId"`
	Kind        string `json:"kind"` // "analysis" or "synthesis"
	Epoch       uint64 `json:"epoch"`
	Subject     []byte `json:"subject"`
	Description string `json:"description,omitempty"`
	Reference   []byte `json:"reference,omitempty"`
}

const (
	KindAnalysis  = "analysis"
	KindSynthesis = "synthesis"
)

// Snapshot is the read-only view of a session handed to HTTP responses and
// the websocket mirror feed.
type Snapshot struct {
	SessionID          string          `json:"sessionId"`
	Domain             string          `json:"domain"`
	Phase              Phase           `json:"phase"`
	CapturedImage      string          `json:"capturedImage,omitempty"`
	Analysis           analysis.Result `json:"analysis,omitempty"`
	SelectedItem       *catalog.Item   `json:"selectedItem,omitempty"`
	ResultImage        string          `json:"resultImage,omitempty"`
	TransientError     string          `json:"transientError,omitempty"`
	CaptureUnavailable bool            `json:"captureUnavailable,omitempty"`
	PoseSuccess        bool            `json:"poseSuccess,omitempty"`
}
