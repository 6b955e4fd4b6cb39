// Package hub fans connection events out to Server-Sent Events clients.
//
// Each event is written as a named SSE message with an increasing id:
//
//	id: 7
//	event: connection-updated
//	data: {"uuid":"...","id":"office"}
//
// A client may pass ?types=connection-added,connection-removed to receive
// only those event names.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// message is one encoded event
type message struct {
	name  string
	frame []byte
}

type subscriber struct {
	id     string
	types  map[string]bool // nil means every event
	frames chan []byte
}

func (s *subscriber) wants(name string) bool {
	return s.types == nil || s.types[name]
}

// Hub manages SSE subscribers
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	join        chan *subscriber
	leave       chan *subscriber
	outbox      chan message
	done        chan struct{}
	seqMu       sync.Mutex
	seq         uint64
	keepAlive   time.Duration
	logger      *slog.Logger
}

// New creates a new Hub
func New() *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		join:        make(chan *subscriber),
		leave:       make(chan *subscriber),
		outbox:      make(chan message, 256),
		done:        make(chan struct{}),
		keepAlive:   30 * time.Second,
		logger:      slog.Default(),
	}
}

// SetLogger replaces the hub's logger
func (h *Hub) SetLogger(l *slog.Logger) {
	h.logger = l
}

// Run delivers events until ctx is done, then closes every stream
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for s := range h.subscribers {
				delete(h.subscribers, s)
				close(s.frames)
			}
			h.mu.Unlock()
			return

		case s := <-h.join:
			h.mu.Lock()
			h.subscribers[s] = struct{}{}
			n := len(h.subscribers)
			h.mu.Unlock()
			h.logger.Debug("event subscriber joined", "subscriber", s.id, "total", n)

		case s := <-h.leave:
			h.mu.Lock()
			if _, ok := h.subscribers[s]; ok {
				delete(h.subscribers, s)
				close(s.frames)
			}
			n := len(h.subscribers)
			h.mu.Unlock()
			h.logger.Debug("event subscriber left", "subscriber", s.id, "total", n)

		case m := <-h.outbox:
			h.mu.RLock()
			for s := range h.subscribers {
				if !s.wants(m.name) {
					continue
				}
				select {
				case s.frames <- m.frame:
				default:
					h.logger.Warn("event subscriber too slow, dropping event", "subscriber", s.id, "event", m.name)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues a named event for every interested subscriber. The
// payload is sent as JSON.
func (h *Hub) Broadcast(name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal event", "event", name, "error", err)
		return
	}

	// Numbering and queueing happen together so ids reach subscribers in
	// order.
	h.seqMu.Lock()
	defer h.seqMu.Unlock()
	h.seq++
	frame := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", h.seq, name, data))
	select {
	case h.outbox <- message{name: name, frame: frame}:
	default:
		h.seq--
		h.logger.Warn("event queue full, dropping event", "event", name)
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func parseTypes(q string) map[string]bool {
	if q == "" {
		return nil
	}
	types := make(map[string]bool)
	for _, t := range strings.Split(q, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types[t] = true
		}
	}
	if len(types) == 0 {
		return nil
	}
	return types
}

// ServeHTTP streams events to one subscriber until it disconnects or the
// hub stops
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	s := &subscriber{
		id:     uuid.NewString(),
		types:  parseTypes(r.URL.Query().Get("types")),
		frames: make(chan []byte, 64),
	}
	select {
	case h.join <- s:
	case <-h.done:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer func() {
		select {
		case h.leave <- s:
		case <-h.done:
		}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	fmt.Fprintf(w, ": subscribed %s\n\n", s.id)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-s.frames:
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
