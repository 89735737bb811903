package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/unmute/internal/app"
	"github.com/ayusman/unmute/internal/detector"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// streamMessage is one inbound landmark observation.
type streamMessage struct {
	Hands []detector.Hand `json:"hands"`
	// TimestampMS is the capture time in Unix milliseconds; 0 means now.
	TimestampMS int64 `json:"timestamp_ms"`
}

// StreamHandler connects a host to the pipeline over a WebSocket: the host
// pushes landmark observations, the server pushes pipeline events.
type StreamHandler struct {
	app *app.App
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(a *app.App) *StreamHandler {
	return &StreamHandler{app: a}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := h.app.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go h.writeLoop(conn, events, done)
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("stream read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		ts := time.Now()
		if msg.TimestampMS > 0 {
			ts = time.UnixMilli(msg.TimestampMS)
		}
		h.app.Submit(app.Observation{Hands: msg.Hands, Timestamp: ts})
	}
}

// writeLoop is the connection's only writer.
func (h *StreamHandler) writeLoop(conn *websocket.Conn, events <-chan app.Event, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
