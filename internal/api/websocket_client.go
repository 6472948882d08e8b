package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gadget-registry/internal/auth"
	"github.com/nerrad567/gadget-registry/internal/gadget"
	"github.com/nerrad567/gadget-registry/internal/infrastructure/config"
)

// upgrader accepts any origin; the CORS middleware has already vetted it.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// wsRequest is a frame received from a client.
type wsRequest struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSClient is one event stream connection.
type WSClient struct {
	hub     *Hub
	conn    *websocket.Conn
	subject string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.RWMutex
	filter wsFilter
}

// handleWebSocket upgrades an authenticated request to an event stream.
// Browsers cannot set headers on the upgrade, so the token may also arrive
// as the "token" query parameter.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		writeUnauthorized(w, "authorization token is required")
		return
	}
	claims, err := auth.ParseToken(token, s.secCfg.JWT.Secret)
	if err != nil {
		writeUnauthorized(w, "invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:     s.hub,
		conn:    conn,
		subject: claims.Subject,
		send:    make(chan []byte, wsSendBufferSize),
		done:    make(chan struct{}),
		filter:  newWSFilter(),
	}
	if !s.hub.add(client) {
		conn.Close()
		return
	}
	s.logger.Debug("websocket client connected",
		"subject", client.subject,
		"clients", s.hub.ClientCount(),
	)

	go client.writeLoop(s.wsCfg)
	go client.readLoop(s.wsCfg)
}

// wsDeadlines derives the keepalive timings from config.
func wsDeadlines(cfg config.WebSocketConfig) (readWait, pingEvery, writeWait time.Duration) {
	pingEvery = time.Duration(cfg.PingInterval) * time.Second
	writeWait = time.Duration(cfg.PongTimeout) * time.Second
	return pingEvery + writeWait, pingEvery, writeWait
}

// close stops the client. The write loop sends a close frame and releases
// the connection, which in turn ends the read loop.
func (c *WSClient) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// enqueue hands data to the write loop. It reports false when the client is
// gone or its queue is full.
func (c *WSClient) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *WSClient) wants(e gadget.Event) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter.matches(e)
}

func (c *WSClient) readLoop(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.remove(c)
		c.close()
		c.hub.logger.Debug("websocket client disconnected", "subject", c.subject)
	}()

	readWait, _, _ := wsDeadlines(cfg)
	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(readWait)) }

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	if err := extend(); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read failed", "subject", c.subject, "error", err)
			}
			return
		}
		// Application frames count as liveness too.
		if err := extend(); err != nil {
			return
		}
		c.dispatch(data)
	}
}

func (c *WSClient) writeLoop(cfg config.WebSocketConfig) {
	_, pingEvery, writeWait := wsDeadlines(cfg)
	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.close()
	}()

	write := func(kind int, data []byte) error {
		//nolint:errcheck // a missed deadline surfaces as a write error
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case <-c.done:
			//nolint:errcheck // best-effort close frame
			write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case data := <-c.send:
			if err := write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch handles one client frame.
func (c *WSClient) dispatch(data []byte) {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.replyError("", "invalid JSON message")
		return
	}

	switch req.Type {
	case WSTypeSubscribe:
		c.subscribe(req)
	case WSTypeUnsubscribe:
		c.unsubscribe(req)
	case WSTypePing:
		c.reply(req.ID, WSTypePong, nil)
	default:
		c.replyError(req.ID, "unknown message type: "+req.Type)
	}
}

// channelsFrom decodes and validates a subscribe or unsubscribe payload.
func (c *WSClient) channelsFrom(req wsRequest) (WSSubscribePayload, bool) {
	var p WSSubscribePayload
	if len(req.Payload) > 0 {
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			c.replyError(req.ID, "invalid "+req.Type+" payload")
			return p, false
		}
	}
	if len(p.Channels) == 0 {
		c.replyError(req.ID, "at least one channel is required")
		return p, false
	}
	if unknown := unknownChannels(p.Channels); len(unknown) > 0 {
		c.replyError(req.ID, "unknown channel: "+strings.Join(unknown, ", "))
		return p, false
	}
	return p, true
}

func (c *WSClient) subscribe(req wsRequest) {
	p, ok := c.channelsFrom(req)
	if !ok {
		return
	}

	c.mu.Lock()
	for _, ch := range p.Channels {
		c.filter.channels[ch] = struct{}{}
	}
	if p.GadgetIDs != nil {
		clear(c.filter.gadgets)
		for _, id := range p.GadgetIDs {
			c.filter.gadgets[id] = struct{}{}
		}
	}
	c.mu.Unlock()

	c.hub.logger.Debug("websocket client subscribed",
		"subject", c.subject,
		"channels", p.Channels,
		"gadget_ids", p.GadgetIDs,
	)
	resp := map[string]any{"subscribed": p.Channels}
	if p.GadgetIDs != nil {
		resp["gadget_ids"] = p.GadgetIDs
	}
	c.reply(req.ID, WSTypeResponse, resp)
}

func (c *WSClient) unsubscribe(req wsRequest) {
	p, ok := c.channelsFrom(req)
	if !ok {
		return
	}

	c.mu.Lock()
	for _, ch := range p.Channels {
		delete(c.filter.channels, ch)
	}
	c.mu.Unlock()

	c.reply(req.ID, WSTypeResponse, map[string]any{"unsubscribed": p.Channels})
}

func (c *WSClient) reply(id, msgType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.enqueue(data)
}

func (c *WSClient) replyError(id, message string) {
	c.reply(id, WSTypeError, map[string]string{"message": message})
}
