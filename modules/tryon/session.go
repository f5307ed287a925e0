package tryon

import (
	"log"
	"sync"
	"time"

	"magic-mirror-server/modules/analysis"
	"magic-mirror-server/modules/catalog"
	"magic-mirror-server/modules/common/domain"
	"magic-mirror-server/modules/common/utils"
)

// Controller owns one try-on session. Every field below mutates only through
// the transition methods, which hold the mutex, so the session invariants
// hold after every call:
//
//   - analysisResult is non-nil only if capturedImage is non-nil
//   - resultImage is non-nil only in ResultReady
//   - selectedItem is non-nil only in Selecting/Synthesizing/ResultReady
//
// At most one analysis or synthesis call is outstanding per session: each is
// only reachable from its triggering phase.
type Controller struct {
	mu     sync.Mutex
	id     string
	domain *domain.Domain
	now    func() time.Time

	phase          Phase
	capturedImage  []byte
	analysisResult analysis.Result
	selectedItem   *catalog.Item
	resultImage    []byte

	errMsg   string
	errUntil time.Time

	poseUntil          time.Time
	captureUnavailable bool

	// epoch increments on reset; completions tagged with an older epoch are
	// discarded instead of resurrecting stale data into a fresh session.
	epoch uint64

	// customItems are session-lifetime uploads, most recent first.
	customItems []catalog.Item

	createdAt    time.Time
	lastActivity time.Time

	onChange func(Snapshot)
}

func NewController(id string, d *domain.Domain) *Controller {
	now := time.Now()
	return &Controller{
		id:           id,
		domain:       d,
		now:          time.Now,
		phase:        PhaseIdle,
		createdAt:    now,
		lastActivity: now,
	}
}

// BeginCapture accepts a captured or uploaded frame and enters Analyzing.
// Only legal from Idle; anywhere else it is a no-op.
func (c *Controller) BeginCapture(frame []byte) (Invocation, error) {
	c.mu.Lock()

	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return Invocation{}, ErrInvalidPhase
	}
	if len(frame) == 0 {
		c.mu.Unlock()
		return Invocation{}, ErrInvalidPhase
	}

	c.capturedImage = frame
	c.phase = PhaseAnalyzing
	c.clearTransientLocked()
	c.touchLocked()

	inv := Invocation{
		SessionID: c.id,
		Kind:      KindAnalysis,
		Epoch:     c.epoch,
		Subject:   frame,
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	log.Printf("📸 [Session %s] Frame captured, analyzing...", c.id)
	c.notify(snap)
	return inv, nil
}

// CompleteAnalysis applies the outcome of the analysis call. Success moves to
// Selecting; failure recovers to Idle (no useful partial state exists before
// a first analysis, so the user re-captures). Stale epochs are discarded.
func (c *Controller) CompleteAnalysis(epoch uint64, result analysis.Result, err error) {
	c.mu.Lock()

	if epoch != c.epoch || c.phase != PhaseAnalyzing {
		c.mu.Unlock()
		log.Printf("⏭️  [Session %s] Discarding stale analysis completion (epoch %d)", c.id, epoch)
		return
	}

	if err != nil {
		log.Printf("❌ [Session %s] Analysis failed: %v", c.id, err)
		c.capturedImage = nil
		c.analysisResult = nil
		c.phase = PhaseIdle
		c.setTransientLocked()
	} else {
		c.analysisResult = result
		c.phase = PhaseSelecting
		c.clearTransientLocked()
		log.Printf("✅ [Session %s] Analysis complete, selecting", c.id)
	}

	c.touchLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// SelectItem records the user's catalog choice. Only legal while Selecting.
func (c *Controller) SelectItem(item catalog.Item) error {
	c.mu.Lock()

	if c.phase != PhaseSelecting {
		c.mu.Unlock()
		return ErrInvalidPhase
	}

	chosen := item
	c.selectedItem = &chosen
	c.touchLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	log.Printf("👗 [Session %s] Selected item %q", c.id, item.Name)
	c.notify(snap)
	return nil
}

// AddCustomItem prepends a session-lifetime uploaded style (most recent
// first) and selects it, matching the gallery behavior.
func (c *Controller) AddCustomItem(item catalog.Item) error {
	c.mu.Lock()

	if c.phase != PhaseSelecting {
		c.mu.Unlock()
		return ErrInvalidPhase
	}

	c.customItems = append([]catalog.Item{item}, c.customItems...)
	chosen := item
	c.selectedItem = &chosen
	c.touchLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	log.Printf("📤 [Session %s] Custom style uploaded (%s)", c.id, item.ID)
	c.notify(snap)
	return nil
}

// BeginSynthesis enters Synthesizing and hands back the invocation inputs.
// Requires a captured image and a selection; otherwise a no-op, per the
// state machine guard.
func (c *Controller) BeginSynthesis() (Invocation, error) {
	c.mu.Lock()

	if c.phase != PhaseSelecting || len(c.capturedImage) == 0 || c.selectedItem == nil {
		c.mu.Unlock()
		return Invocation{}, ErrInvalidPhase
	}

	inv := Invocation{
		SessionID:   c.id,
		Kind:        KindSynthesis,
		Epoch:       c.epoch,
		Subject:     c.capturedImage,
		Description: c.selectedItem.Description,
	}

	// Custom uploads carry their own reference image; the service then works
	// from the picture instead of the item text. Catalog items send text only.
	if c.selectedItem.IsCustom {
		if ref, err := utils.StripDataURL(c.selectedItem.Image); err == nil {
			inv.Reference = ref
		} else {
			log.Printf("⚠️  [Session %s] Custom reference unreadable, falling back to text: %v", c.id, err)
		}
	}

	c.phase = PhaseSynthesizing
	c.clearTransientLocked()
	c.touchLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	log.Printf("🎨 [Session %s] Synthesizing with %q", c.id, inv.Description)
	c.notify(snap)
	return inv, nil
}

// CompleteSynthesis applies the outcome of the synthesis call. Success moves
// to ResultReady; failure recovers to Selecting - the captured image and the
// selection stay valid, so a re-attempt never forces a re-capture. Stale
// epochs are discarded.
func (c *Controller) CompleteSynthesis(epoch uint64, image []byte, err error) {
	c.mu.Lock()

	if epoch != c.epoch || c.phase != PhaseSynthesizing {
		c.mu.Unlock()
		log.Printf("⏭️  [Session %s] Discarding stale synthesis completion (epoch %d)", c.id, epoch)
		return
	}

	if err != nil {
		log.Printf("❌ [Session %s] Synthesis failed: %v", c.id, err)
		c.phase = PhaseSelecting
		c.resultImage = nil
		c.setTransientLocked()
	} else {
		c.resultImage = image
		c.phase = PhaseResultReady
		c.clearTransientLocked()
		log.Printf("✅ [Session %s] Result ready (%d bytes)", c.id, len(image))
	}

	c.touchLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// BackToGallery returns from ResultReady to Selecting, dropping the result
// but keeping the captured image, analysis and selection.
func (c *Controller) BackToGallery() error {
	c.mu.Lock()

	if c.phase != PhaseResultReady {
		c.mu.Unlock()
		return ErrInvalidPhase
	}

	c.resultImage = nil
	c.phase = PhaseSelecting
	c.clearTransientLocked()
	c.touchLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// Reset clears every session field and returns to Idle, from any phase,
// idempotently. The epoch bump invalidates any in-flight call.
func (c *Controller) Reset() {
	c.mu.Lock()

	c.epoch++
	c.phase = PhaseIdle
	c.capturedImage = nil
	c.analysisResult = nil
	c.selectedItem = nil
	c.resultImage = nil
	c.customItems = nil
	c.errMsg = ""
	c.errUntil = time.Time{}
	c.poseUntil = time.Time{}

	c.touchLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	log.Printf("🔄 [Session %s] Reset", c.id)
	c.notify(snap)
}

// MarkCaptureUnavailable records a device permission failure. This is a
// persistent capability degradation, not a session error: the phase and the
// transient error are untouched, and the upload path stays available.
func (c *Controller) MarkCaptureUnavailable() {
	c.mu.Lock()
	c.captureUnavailable = true
	c.touchLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	log.Printf("📵 [Session %s] Camera unavailable, upload only", c.id)
	c.notify(snap)
}

// TriggerPoseSuccess raises the cosmetic pose flag for its fixed duration.
func (c *Controller) TriggerPoseSuccess() {
	c.mu.Lock()
	c.poseUntil = c.now().Add(poseFlagTTL)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// CustomItems returns the session's uploaded styles, most recent first.
func (c *Controller) CustomItems() []catalog.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]catalog.Item, len(c.customItems))
	copy(out, c.customItems)
	return out
}

// ResultImage returns the synthesized composite, or nil outside ResultReady.
func (c *Controller) ResultImage() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseResultReady {
		return nil
	}
	out := make([]byte, len(c.resultImage))
	copy(out, c.resultImage)
	return out
}

// Snapshot returns the current read-only session view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	now := c.now()

	snap := Snapshot{
		SessionID:          c.id,
		Domain:             c.domain.Key,
		Phase:              c.phase,
		Analysis:           c.analysisResult,
		SelectedItem:       c.selectedItem,
		CaptureUnavailable: c.captureUnavailable,
		PoseSuccess:        now.Before(c.poseUntil),
	}
	if len(c.capturedImage) > 0 {
		snap.CapturedImage = utils.ToDataURL("image/jpeg", c.capturedImage)
	}
	if len(c.resultImage) > 0 {
		snap.ResultImage = utils.ToDataURL("image/png", c.resultImage)
	}
	if c.errMsg != "" && now.Before(c.errUntil) {
		snap.TransientError = c.errMsg
	}
	return snap
}

func (c *Controller) setTransientLocked() {
	c.errMsg = userErrorMessage
	c.errUntil = c.now().Add(transientErrorTTL)
}

func (c *Controller) clearTransientLocked() {
	c.errMsg = ""
	c.errUntil = time.Time{}
}

func (c *Controller) touchLocked() {
	c.lastActivity = c.now()
}

func (c *Controller) notify(snap Snapshot) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
