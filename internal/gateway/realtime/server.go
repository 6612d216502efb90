package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syntrixbase/showroom/internal/catalog"
	"github.com/syntrixbase/showroom/internal/gateway/config"
	"github.com/syntrixbase/showroom/internal/server"
)

// Heartbeat interval for SSE clients.
const sseHeartbeatInterval = 15 * time.Second

// Server pushes catalog session views to browsers over WebSocket or SSE.
type Server struct {
	sessions *catalog.Sessions
	cfg      config.RealtimeConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger

	heartbeat time.Duration
}

func NewServer(sessions *catalog.Sessions, cfg config.RealtimeConfig) *Server {
	if cfg.SendBuffer < 1 {
		cfg.SendBuffer = config.DefaultGatewayConfig().Realtime.SendBuffer
	}
	s := &Server{
		sessions:  sessions,
		cfg:       cfg,
		logger:    slog.Default().With("component", "realtime"),
		heartbeat: sseHeartbeatInterval,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return checkAllowedOrigin(r.Header.Get("Origin"), r.Host, s.cfg) == nil
		},
	}
	return s
}

// HandleWS upgrades GET /realtime/v1/sessions/{id} to a WebSocket bound to the session.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Session not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the response.
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	newClient(ctrl, conn, s.cfg.SendBuffer).serve()
}

// HandleSSE streams the session's view and notice messages as Server-Sent Events.
// It is read-only; searches go through REST.
func (s *Server) HandleSSE(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	origin := r.Header.Get("Origin")
	if err := checkAllowedOrigin(origin, r.Host, s.cfg); err != nil {
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
		return
	}

	ctrl, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Session not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}

	// A stream outlives http.Server.WriteTimeout, so each write carries its own deadline.
	rc := http.NewResponseController(w)
	send := func(write func() error) error {
		if err := rc.SetWriteDeadline(time.Now().Add(writeWait)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
		if err := write(); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	updates, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	if err := send(func() error { return writeComment(w, "connected") }); err != nil {
		s.logger.Warn("SSE write failed", "session", ctrl.ID(), "error", err)
		return
	}
	s.logger.Info("SSE connection established", "session", ctrl.ID())

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			s.logger.Info("SSE connection closed", "session", ctrl.ID())
			return
		case <-ticker.C:
			err = send(func() error { return writeComment(w, "heartbeat") })
		case u, ok := <-updates:
			if !ok {
				// Session deleted.
				return
			}
			err = send(func() error {
				if err := writeEvent(w, BaseMessage{Type: TypeView, Payload: mustMarshal(u.View)}); err != nil {
					return err
				}
				if u.Notice != nil {
					return writeEvent(w, BaseMessage{Type: TypeNotice, Payload: mustMarshal(u.Notice)})
				}
				return nil
			})
		}
		if err != nil {
			s.logger.Debug("SSE stream ended", "session", ctrl.ID(), "error", err)
			return
		}
	}
}

func writeComment(w http.ResponseWriter, text string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", text)
	return err
}

func writeEvent(w http.ResponseWriter, msg BaseMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

var writeError = server.WriteError
