// Package ws serves the per-session frame analysis protocol over
// WebSocket. Each connection owns one session; frames are processed in
// arrival order on the connection's read loop, which satisfies the
// engines' single-thread-per-session model without extra locking.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stride-data/gait.report/internal/config"
	"github.com/stride-data/gait.report/internal/gait"
	"github.com/stride-data/gait.report/internal/marker"
	"github.com/stride-data/gait.report/internal/monitoring"
	"github.com/stride-data/gait.report/internal/pose"
	"github.com/stride-data/gait.report/internal/session"
	"github.com/stride-data/gait.report/internal/vision"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating
	// the connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often ping frames are sent. Must be less
	// than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// maxFrameBytes bounds inbound messages; frames arrive base64-encoded.
	maxFrameBytes = 8 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Allow all origins; origin policy belongs at the reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope for both directions of the protocol.
type Message struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// Handler upgrades connections and runs the analysis protocol. The
// estimator is shared across sessions (it holds no per-session state);
// the result log feeds the chart endpoints and may be nil.
type Handler struct {
	estimator pose.Estimator
	tuning    *config.TuningConfig
	log       *session.Log

	mu       sync.Mutex
	sessions int
}

// NewHandler creates a WebSocket handler.
func NewHandler(estimator pose.Estimator, tuning *config.TuningConfig, log *session.Log) *Handler {
	return &Handler{estimator: estimator, tuning: tuning, log: log}
}

// SessionCount returns the number of currently connected sessions.
func (h *Handler) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions
}

// ServeHTTP upgrades the connection, creates a fresh session, and blocks
// serving it until the client disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	sess := session.New(h.estimator, h.tuning)
	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}

	h.mu.Lock()
	h.sessions++
	total := h.sessions
	h.mu.Unlock()
	monitoring.Logf("session %s connected (%d active)", sess.ID(), total)

	go c.writePump()
	h.readLoop(c, sess)

	h.mu.Lock()
	h.sessions--
	total = h.sessions
	h.mu.Unlock()
	close(c.send)
	monitoring.Logf("session %s disconnected (%d active)", sess.ID(), total)
}

// readLoop processes inbound messages strictly in order until the
// connection closes.
func (h *Handler) readLoop(c *client, sess *session.Session) {
	c.conn.SetReadLimit(maxFrameBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("invalid JSON")
			continue
		}
		h.dispatch(c, sess, msg)
	}
}

func (h *Handler) dispatch(c *client, sess *session.Session, msg Message) {
	switch msg.Type {
	case "frame":
		h.handleFrame(c, sess, msg)
	case "calibrate":
		h.handleCalibrate(c, sess, msg)
	case "set_mode":
		h.handleSetMode(c, sess, msg)
	case "update_marker_configs":
		h.handleUpdateConfigs(c, sess, msg)
	case "confirm_calibration":
		h.handleConfirmCalibration(c, sess, msg)
	default:
		// Unknown message types are skipped, not errors.
	}
}

func (h *Handler) handleFrame(c *client, sess *session.Session, msg Message) {
	frame, err := decodeFramePayload(msg.Data)
	if err != nil {
		c.sendError("failed to decode frame")
		return
	}

	result := sess.ProcessFrame(frame, msg.Timestamp)
	if h.log != nil && result.Keypoints != nil {
		h.log.Append(result)
	}
	c.sendJSON("result", result)
}

func (h *Handler) handleCalibrate(c *client, sess *session.Session, msg Message) {
	frame, err := decodeFramePayload(msg.Data)
	if err != nil {
		c.sendError("failed to decode frame")
		return
	}

	detections := sess.Calibrate(frame)
	if detections == nil {
		detections = []marker.Detection{}
	}
	c.sendJSON("calibration", detections)
}

func (h *Handler) handleSetMode(c *client, sess *session.Session, msg Message) {
	var payload struct {
		Mode gait.DetectionMode `json:"mode"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.sendError("invalid set_mode payload")
		return
	}
	if err := sess.SetMode(payload.Mode); err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendJSON("status", map[string]any{"mode": sess.Mode()})
}

func (h *Handler) handleUpdateConfigs(c *client, sess *session.Session, msg Message) {
	var configs []marker.Config
	if err := json.Unmarshal(msg.Data, &configs); err != nil {
		c.sendError("invalid marker configs payload")
		return
	}
	if err := sess.UpdateMarkerConfigs(configs); err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendJSON("status", map[string]any{"marker_configs": len(configs)})
}

func (h *Handler) handleConfirmCalibration(c *client, sess *session.Session, msg Message) {
	var labels map[string]string
	if err := json.Unmarshal(msg.Data, &labels); err != nil {
		c.sendError("invalid calibration labels payload")
		return
	}
	sess.ConfirmCalibration(labels)
	c.sendJSON("status", map[string]any{"calibrated": true})
}

// decodeFramePayload unwraps the JSON string payload and decodes the
// base64 image inside it.
func decodeFramePayload(data json.RawMessage) (*vision.Image, error) {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return nil, err
	}
	return vision.DecodeFrame(encoded)
}

// client represents one connected WebSocket client.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) sendJSON(msgType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		monitoring.Logf("failed to marshal %s payload: %v", msgType, err)
		return
	}
	out, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		return
	}
	select {
	case c.send <- out:
	default:
		// Outgoing buffer full; drop rather than block frame processing.
	}
}

func (c *client) sendError(text string) {
	c.sendJSON("error", text)
}

// writePump drains the client's send channel and forwards messages to the
// connection, interleaving periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
