package tryon

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"magic-mirror-server/modules/common/domain"
)

// Manager is the session registry: one Controller per mirror, created on
// demand and cleaned up after inactivity.
type Manager struct {
	domain   *domain.Domain
	sessions map[string]*Controller
	mutex    sync.RWMutex
	metrics  *guardedMetrics

	// listener receives every snapshot change, for the websocket mirror feed.
	listener func(Snapshot)
}

// Metrics are the counters exposed on /metrics.
type Metrics struct {
	TotalSessions  int       `json:"totalSessions"`
	ActiveSessions int       `json:"activeSessions"`
	StartTime      time.Time `json:"startTime"`
}

type guardedMetrics struct {
	Metrics
	mutex sync.RWMutex
}

func NewManager(d *domain.Domain) *Manager {
	return &Manager{
		domain:   d,
		sessions: make(map[string]*Controller),
		metrics:  &guardedMetrics{Metrics: Metrics{StartTime: time.Now()}},
	}
}

// SetListener registers the snapshot broadcast hook. Must be called before
// any session is created.
func (m *Manager) SetListener(fn func(Snapshot)) {
	m.listener = fn
}

// Create starts a fresh Idle session and returns its controller.
func (m *Manager) Create() *Controller {
	sessionID := uuid.New().String()
	controller := NewController(sessionID, m.domain)
	controller.onChange = m.listener

	m.mutex.Lock()
	m.sessions[sessionID] = controller
	m.mutex.Unlock()

	m.metrics.mutex.Lock()
	m.metrics.TotalSessions++
	m.metrics.ActiveSessions++
	m.metrics.mutex.Unlock()

	log.Printf("✅ Created session %s (Total: %d, Active: %d)",
		sessionID, m.metrics.TotalSessions, m.metrics.ActiveSessions)
	return controller
}

// Get returns a session controller, or nil when unknown/expired.
func (m *Manager) Get(sessionID string) *Controller {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.sessions[sessionID]
}

// Remove drops a session from the registry.
func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	_, exists := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mutex.Unlock()

	if exists {
		m.metrics.mutex.Lock()
		m.metrics.ActiveSessions--
		m.metrics.mutex.Unlock()
		log.Printf("🧹 Removed session %s (Active: %d)", sessionID, m.metrics.ActiveSessions)
	}
}

// CleanupInactive removes sessions idle longer than the threshold and
// returns how many were removed.
func (m *Manager) CleanupInactive(threshold time.Duration) int {
	now := time.Now()

	m.mutex.Lock()
	var expired []string
	for sessionID, controller := range m.sessions {
		controller.mu.Lock()
		idle := now.Sub(controller.lastActivity)
		controller.mu.Unlock()
		if idle > threshold {
			expired = append(expired, sessionID)
		}
	}
	for _, sessionID := range expired {
		delete(m.sessions, sessionID)
	}
	m.mutex.Unlock()

	if len(expired) > 0 {
		m.metrics.mutex.Lock()
		m.metrics.ActiveSessions -= len(expired)
		m.metrics.mutex.Unlock()
		log.Printf("⏰ Cleaned up %d inactive sessions (Active: %d)", len(expired), m.metrics.ActiveSessions)
	}
	return len(expired)
}

// StartCleanupRoutine prunes inactive sessions every 30 minutes. The mirror
// keeps no state across reloads, so a stale session only wastes memory.
func (m *Manager) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			m.CleanupInactive(2 * time.Hour)
		}
	}()
	log.Printf("🔄 Started session cleanup routine (every 30min, idle > 2h)")
}

// MetricsSnapshot returns a copy of the counters.
func (m *Manager) MetricsSnapshot() Metrics {
	m.metrics.mutex.RLock()
	defer m.metrics.mutex.RUnlock()
	return m.metrics.Metrics
}
