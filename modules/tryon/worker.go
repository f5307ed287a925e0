package tryon

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// queueKey is the Redis list the mirror's analysis/synthesis jobs go through.
const queueKey = "mirror:jobs"

// jobTimeout bounds one Gemini call. There is no cancellation primitive for
// an in-flight call beyond this: a session reset does not abort the network
// operation, its completion is simply discarded by the epoch check.
const jobTimeout = 120 * time.Second

// Worker consumes queued invocations and applies their outcomes back onto
// the owning session. With Redis configured the queue survives in Redis
// (LPUSH/BRPOP, the same shape the canvas workers use); without it an
// in-process channel serves the single instance.
type Worker struct {
	manager     *Manager
	analyzer    Analyzer
	synthesizer Synthesizer
	rdb         *redis.Client
	local       chan Invocation
}

func NewWorker(manager *Manager, analyzer Analyzer, synthesizer Synthesizer, rdb *redis.Client) *Worker {
	w := &Worker{
		manager:     manager,
		analyzer:    analyzer,
		synthesizer: synthesizer,
		rdb:         rdb,
	}
	if rdb == nil {
		w.local = make(chan Invocation, 64)
	}
	return w
}

// Enqueue submits an invocation for processing. Failures to enqueue are
// applied immediately as job failures so the session always recovers.
func (w *Worker) Enqueue(inv Invocation) {
	if w.rdb == nil {
		w.local <- inv
		return
	}

	payload, err := json.Marshal(inv)
	if err != nil {
		log.Printf("❌ Failed to marshal job for session %s: %v", inv.SessionID, err)
		w.fail(inv, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := w.rdb.LPush(ctx, queueKey, payload).Err(); err != nil {
		log.Printf("❌ Failed to enqueue job for session %s: %v", inv.SessionID, err)
		w.fail(inv, err)
	}
}

// Start launches the queue consumer loop.
func (w *Worker) Start() {
	if w.rdb == nil {
		log.Println("🔄 Worker starting (in-process queue)")
		go func() {
			for inv := range w.local {
				go w.process(inv)
			}
		}()
		return
	}

	log.Printf("🔄 Worker starting (Redis queue: %s)", queueKey)
	go func() {
		ctx := context.Background()
		for {
			result, err := w.rdb.BRPop(ctx, 0, queueKey).Result()
			if err != nil {
				log.Printf("❌ Redis BRPOP error: %v", err)
				time.Sleep(5 * time.Second)
				continue
			}

			var inv Invocation
			if err := json.Unmarshal([]byte(result[1]), &inv); err != nil {
				log.Printf("❌ Failed to decode queued job: %v", err)
				continue
			}

			go w.process(inv)
		}
	}()
}

// process runs one invocation against the matching client and applies the
// completion. The session may have moved on (or been reset) meanwhile; the
// controller's epoch/phase checks decide whether the outcome still counts.
func (w *Worker) process(inv Invocation) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	controller := w.manager.Get(inv.SessionID)
	if controller == nil {
		log.Printf("⏭️  Dropping job for unknown session %s", inv.SessionID)
		return
	}

	switch inv.Kind {
	case KindAnalysis:
		result, err := w.analyzer.Analyze(ctx, inv.Subject)
		controller.CompleteAnalysis(inv.Epoch, result, err)

	case KindSynthesis:
		image, err := w.synthesizer.Generate(ctx, inv.Subject, inv.Description, inv.Reference)
		controller.CompleteSynthesis(inv.Epoch, image, err)

	default:
		log.Printf("⚠️  Unknown job kind %q for session %s", inv.Kind, inv.SessionID)
	}
}

// fail short-circuits an invocation that never reached the queue.
func (w *Worker) fail(inv Invocation, err error) {
	controller := w.manager.Get(inv.SessionID)
	if controller == nil {
		return
	}
	switch inv.Kind {
	case KindAnalysis:
		controller.CompleteAnalysis(inv.Epoch, nil, err)
	case KindSynthesis:
		controller.CompleteSynthesis(inv.Epoch, nil, err)
	}
}
