// Package stream exposes decoded button events to display collaborators
// over HTTP: a websocket feed of events and a JSON view of the active
// keymap.
package stream

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/derktes/ir-remote-decoder/ir"
	"github.com/derktes/ir-remote-decoder/pipeline"
)

const writeTimeout = time.Second

// subscriberBuffer absorbs short stalls in a websocket peer; events beyond
// it are dropped rather than stalling the decode loop.
const subscriberBuffer = 8

// Server broadcasts pipeline events to websocket subscribers.
type Server struct {
	logger *slog.Logger
	keymap ir.Keymap

	mu          sync.Mutex
	subscribers map[string]chan pipeline.Event
}

// New returns a Server that reports keymap on /keymap and streams events on
// /events/stream.
func New(keymap ir.Keymap, logger *slog.Logger) *Server {
	return &Server{
		logger:      logger,
		keymap:      keymap,
		subscribers: make(map[string]chan pipeline.Event),
	}
}

// Broadcast fans an event out to every subscriber without blocking. Slow
// subscribers lose events. Safe to use as a pipeline.Handler.
func (s *Server) Broadcast(ev pipeline.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			s.logger.Debug("dropping event for slow subscriber", "subscriber", id)
		}
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/keymap", s.keymapHandler)
	mux.HandleFunc("/events/stream", s.eventStreamHandler)
	return mux
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down event server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	s.logger.Info("event server started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) keymapHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	output, err := json.Marshal(s.keymap)
	if err != nil {
		s.logger.Error("encoding keymap", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.Header().Add("Access-Control-Allow-Origin", "*")
	w.Write(output)
}

func (s *Server) eventStreamHandler(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Error("accepting websocket", "error", err)
		return
	}
	s.logger.Info("accepted websocket subscriber", "remote", r.RemoteAddr)
	defer s.logger.Info("closing websocket subscriber", "remote", r.RemoteAddr)
	defer c.Close(websocket.StatusNormalClosure, "")

	id := subscriberID(r.RemoteAddr)
	events := s.subscribe(id)
	defer s.unsubscribe(id)

	ctx := c.CloseRead(r.Context())
	for {
		select {
		case ev := <-events:
			if err := writeEvent(ctx, c, ev); err != nil {
				s.logger.Debug("writing event", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) subscribe(id string) chan pipeline.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan pipeline.Event, subscriberBuffer)
	s.subscribers[id] = ch
	return ch
}

func (s *Server) unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, id)
}

func (s *Server) subscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

func writeEvent(ctx context.Context, c *websocket.Conn, ev pipeline.Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c, ev)
}

func subscriberID(remoteAddr string) string {
	h := sha1.Sum([]byte(remoteAddr))
	return hex.EncodeToString(h[:])
}
