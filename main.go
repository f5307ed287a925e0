package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"magic-mirror-server/modules/analysis"
	"magic-mirror-server/modules/catalog"
	"magic-mirror-server/modules/common/config"
	"magic-mirror-server/modules/common/domain"
	redisutil "magic-mirror-server/modules/common/redis"
	"magic-mirror-server/modules/synthesis"
	"magic-mirror-server/modules/tryon"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The mirror UI is served from arbitrary kiosk origins.
		return true
	},
}

// Client is one connected mirror UI following a session's phase feed.
type Client struct {
	conn      *websocket.Conn
	sessionId string
	send      chan []byte
}

// Feed fans session snapshots out to every UI following that session.
type Feed struct {
	clients map[string]map[*Client]bool
	mutex   sync.RWMutex
}

func NewFeed() *Feed {
	return &Feed{clients: make(map[string]map[*Client]bool)}
}

func (f *Feed) addClient(client *Client) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.clients[client.sessionId] == nil {
		f.clients[client.sessionId] = make(map[*Client]bool)
	}
	f.clients[client.sessionId][client] = true
	log.Printf("👤 Feed client joined session %s (followers: %d)", client.sessionId, len(f.clients[client.sessionId]))
}

func (f *Feed) removeClient(client *Client) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if followers, ok := f.clients[client.sessionId]; ok {
		if followers[client] {
			delete(followers, client)
			close(client.send)
		}
		if len(followers) == 0 {
			delete(f.clients, client.sessionId)
		}
	}
}

// Broadcast pushes a session snapshot to its followers. Slow followers are
// dropped rather than blocking the state machine.
func (f *Feed) Broadcast(snap tryon.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Printf("Error marshaling snapshot: %v", err)
		return
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	for client := range f.clients[snap.SessionID] {
		select {
		case client.send <- payload:
		default:
			delete(f.clients[snap.SessionID], client)
			close(client.send)
		}
	}
}

func (f *Feed) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	sessionId := r.URL.Query().Get("session")
	if sessionId == "" {
		log.Printf("Missing session parameter")
		conn.Close()
		return
	}

	client := &Client{
		conn:      conn,
		sessionId: sessionId,
		send:      make(chan []byte, 256),
	}

	f.addClient(client)
	go client.writePump()
	go client.readPump(f)
}

// readPump drains the connection until it closes. The feed is one-way; the
// UI drives the session over HTTP.
func (c *Client) readPump(feed *Feed) {
	defer func() {
		feed.removeClient(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// enableCORS adds permissive CORS headers for the kiosk UI.
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "magic-mirror-tryon",
	})
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	tryOnDomain, err := domain.ByKey(cfg.TryOnDomain)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx := context.Background()

	analysisService, err := analysis.NewService(ctx, tryOnDomain)
	if err != nil {
		log.Fatalf("❌ Failed to initialize analysis client: %v", err)
	}
	synthesisService, err := synthesis.NewService(ctx, tryOnDomain)
	if err != nil {
		log.Fatalf("❌ Failed to initialize synthesis client: %v", err)
	}
	catalogService := catalog.NewService(tryOnDomain)

	// Redis is optional; the worker degrades to an in-process queue.
	rdb := redisutil.Connect(cfg)

	feed := NewFeed()
	manager := tryon.NewManager(tryOnDomain)
	manager.SetListener(feed.Broadcast)
	manager.StartCleanupRoutine()

	worker := tryon.NewWorker(manager, analysisService, synthesisService, rdb)
	worker.Start()

	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ws", feed.handleWebSocket)
	r.HandleFunc("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics := manager.MetricsSnapshot()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"uptime":         time.Since(metrics.StartTime).String(),
			"startTime":      metrics.StartTime,
			"totalSessions":  metrics.TotalSessions,
			"activeSessions": metrics.ActiveSessions,
		})
	}).Methods("GET")

	handler := tryon.NewHandler(manager, worker, catalogService, tryOnDomain)
	handler.RegisterRoutes(r)

	log.Printf("🚀 Magic Mirror server (%s) starting on port %s", tryOnDomain.Label, cfg.Port)
	log.Printf("📡 WebSocket feed: ws://localhost:%s/ws?session=<id>", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
