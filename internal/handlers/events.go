package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/splatform/playback-engine/internal/session"
	"github.com/splatform/playback-engine/pkg/events"
)

// EventsHandler streams a session's runtime events over a websocket:
// the retained backlog first, then live events as they are emitted.
type EventsHandler struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewEventsHandler(logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The session id is unguessable and the stream carries no
			// credentials, so cross-origin viewers are accepted.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second

	// streamBuffer absorbs bursts; events beyond it are dropped for slow
	// clients rather than stalling the runtime.
	streamBuffer = 64
)

// Stream upgrades the connection and forwards the session's events until
// the client disconnects.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request, s *session.Session) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "session", s.ID, "error", err)
		return
	}
	defer conn.Close()

	backlog := s.Runtime.Events()

	live := make(chan events.Event, streamBuffer)
	id := s.Runtime.AddHandler(func(e events.Event) {
		select {
		case live <- e:
		default:
			// Slow consumer; drop rather than block the runtime.
		}
	})
	defer s.Runtime.RemoveHandler(id)

	// We never expect client messages, but reading is required to notice
	// closes and process control frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for _, e := range backlog {
		if err := h.writeEvent(conn, e); err != nil {
			return
		}
	}

	pings := time.NewTicker(pingInterval)
	defer pings.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case e := <-live:
			if err := h.writeEvent(conn, e); err != nil {
				return
			}
		case <-pings.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

func (h *EventsHandler) writeEvent(conn *websocket.Conn, e events.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(e)
}
