package tryon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magic-mirror-server/modules/analysis"
	"magic-mirror-server/modules/common/domain"
)

type fakeAnalyzer struct {
	mu     sync.Mutex
	result analysis.Result
	err    error
	calls  int
	gotImg []byte
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, imageData []byte) (analysis.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotImg = imageData
	return f.result, f.err
}

type fakeSynthesizer struct {
	mu     sync.Mutex
	image  []byte
	err    error
	calls  int
	gotRef []byte
}

func (f *fakeSynthesizer) Generate(ctx context.Context, subjectImage []byte, description string, referenceImage []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotRef = referenceImage
	return f.image, f.err
}

func newTestWorker(t *testing.T, an *fakeAnalyzer, syn *fakeSynthesizer) (*Worker, *Manager) {
	t.Helper()
	manager := NewManager(domain.Hairstyle)
	worker := NewWorker(manager, an, syn, nil)
	worker.Start()
	return worker, manager
}

func TestWorkerRunsAnalysisJobThroughToSelecting(t *testing.T) {
	an := &fakeAnalyzer{result: analysis.Result{"faceShape": "Oval"}}
	worker, manager := newTestWorker(t, an, &fakeSynthesizer{})

	controller := manager.Create()
	inv, err := controller.BeginCapture(testFrame())
	require.NoError(t, err)

	worker.Enqueue(inv)

	assert.Eventually(t, func() bool {
		return controller.Snapshot().Phase == PhaseSelecting
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Oval", controller.Snapshot().Analysis["faceShape"])

	an.mu.Lock()
	defer an.mu.Unlock()
	assert.Equal(t, 1, an.calls)
	assert.Equal(t, testFrame(), an.gotImg)
}

func TestWorkerAnalysisFailureReturnsSessionToIdle(t *testing.T) {
	an := &fakeAnalyzer{err: errors.New("model unavailable")}
	worker, manager := newTestWorker(t, an, &fakeSynthesizer{})

	controller := manager.Create()
	inv, err := controller.BeginCapture(testFrame())
	require.NoError(t, err)

	worker.Enqueue(inv)

	assert.Eventually(t, func() bool {
		snap := controller.Snapshot()
		return snap.Phase == PhaseIdle && snap.TransientError != ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerRunsSynthesisJobThroughToResult(t *testing.T) {
	syn := &fakeSynthesizer{image: []byte("generated-png")}
	worker, manager := newTestWorker(t, &fakeAnalyzer{}, syn)

	controller := manager.Create()
	inv, _ := controller.BeginCapture(testFrame())
	controller.CompleteAnalysis(inv.Epoch, analysis.Result{"faceShape": "Oval"}, nil)
	require.NoError(t, controller.SelectItem(testItem()))

	inv, err := controller.BeginSynthesis()
	require.NoError(t, err)
	worker.Enqueue(inv)

	assert.Eventually(t, func() bool {
		return controller.Snapshot().Phase == PhaseResultReady
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []byte("generated-png"), controller.ResultImage())
}

func TestWorkerDropsJobForUnknownSession(t *testing.T) {
	worker, _ := newTestWorker(t, &fakeAnalyzer{}, &fakeSynthesizer{})

	// Must not panic or block; the job is simply dropped.
	worker.Enqueue(Invocation{SessionID: "gone", Kind: KindAnalysis, Subject: testFrame()})
	time.Sleep(50 * time.Millisecond)
}

func TestWorkerCompletionAfterResetIsDiscarded(t *testing.T) {
	an := &fakeAnalyzer{result: analysis.Result{"faceShape": "Oval"}}
	blocked := make(chan struct{})
	slow := &blockingAnalyzer{inner: an, release: blocked}
	manager := NewManager(domain.Hairstyle)
	worker := NewWorker(manager, slow, &fakeSynthesizer{}, nil)
	worker.Start()

	controller := manager.Create()
	inv, err := controller.BeginCapture(testFrame())
	require.NoError(t, err)
	worker.Enqueue(inv)

	// Reset while the call is in flight, then let it finish.
	assert.Eventually(t, func() bool {
		return slow.started()
	}, 2*time.Second, 10*time.Millisecond)
	controller.Reset()
	close(blocked)

	// The stale outcome never surfaces.
	time.Sleep(100 * time.Millisecond)
	snap := controller.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Nil(t, snap.Analysis)
}

type blockingAnalyzer struct {
	inner   Analyzer
	release chan struct{}
	mu      sync.Mutex
	begun   bool
}

func (b *blockingAnalyzer) Analyze(ctx context.Context, imageData []byte) (analysis.Result, error) {
	b.mu.Lock()
	b.begun = true
	b.mu.Unlock()
	<-b.release
	return b.inner.Analyze(ctx, imageData)
}

func (b *blockingAnalyzer) started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.begun
}
