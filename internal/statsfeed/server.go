package statsfeed

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CXK-Computer/proxy-scan/internal/applog"
)

// Server serves a periodic JSON snapshot of Stats over a websocket and a
// plain GET for one-shot polling, mirroring the
// grishkovelli-httptines/httptines.go upgrader/clients/broadcast pattern.
type Server struct {
	stats    *Stats
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewServer builds a Server broadcasting snapshots of stats.
func NewServer(stats *Stats) *Server {
	return &Server{
		stats:   stats,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns an http.Handler exposing GET / (one-shot JSON snapshot)
// and GET /ws (live websocket feed).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveSnapshot)
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.stats.Snapshot())
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("statsfeed: upgrade: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
}

// Run periodically broadcasts a stats snapshot to every connected client
// until ctx-like stop is closed. Intended to run in its own goroutine.
func (s *Server) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.broadcast(s.stats.Snapshot())
		}
	}
}

func (s *Server) broadcast(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}
