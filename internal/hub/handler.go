package hub

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the app's origin, not ours.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler serves the WebSocket endpoint that streams a group's events.
type Handler struct {
	hub *Hub
	log zerolog.Logger
}

// NewHandler creates a handler over the hub.
func NewHandler(hub *Hub, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, log: log}
}

// Router returns the HTTP routes. GET /ws/{group} upgrades to a
// WebSocket streaming the group's events as JSON; GET /healthz
// reports liveness.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws/{group}", h.serveWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	return r
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	group := mux.Vars(r)["group"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := h.hub.Subscribe(group)
	h.log.Debug().Str("group", group).Msg("subscriber connected")

	// The client never sends application data, but reading is what
	// surfaces close frames and broken connections.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.hub.Unsubscribe(sub)
		conn.Close()
		h.log.Debug().Str("group", group).Msg("subscriber disconnected")
	}()

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
