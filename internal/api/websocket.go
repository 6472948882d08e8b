package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gadget-registry/internal/gadget"
	"github.com/nerrad567/gadget-registry/internal/infrastructure/config"
	"github.com/nerrad567/gadget-registry/internal/infrastructure/logging"
)

// Event stream message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"

	// WSChannelAll subscribes a client to every gadget event type.
	WSChannelAll = "*"

	// wsSendBufferSize is the per-client outbound queue length. Events for a
	// client whose queue is full are dropped.
	wsSendBufferSize = 64
)

// wsChannels are the subscribable channels: one per gadget event type, plus
// the wildcard.
var wsChannels = map[string]struct{}{
	gadget.EventCreated:       {},
	gadget.EventStatusChanged: {},
	gadget.EventDestroyed:     {},
	WSChannelAll:              {},
}

// WSMessage is a frame sent to a client.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload is the payload of subscribe and unsubscribe frames.
//
// GadgetIDs narrows a subscription to the listed gadgets. A subscribe frame
// that carries GadgetIDs replaces the previous gadget filter; unsubscribe
// ignores it.
type WSSubscribePayload struct {
	Channels  []string `json:"channels"`
	GadgetIDs []string `json:"gadget_ids,omitempty"`
}

// unknownChannels returns the entries of channels that are not subscribable.
func unknownChannels(channels []string) []string {
	var unknown []string
	for _, ch := range channels {
		if _, ok := wsChannels[ch]; !ok {
			unknown = append(unknown, ch)
		}
	}
	return unknown
}

// wsFilter decides which gadget events reach a client.
type wsFilter struct {
	channels map[string]struct{}
	gadgets  map[string]struct{} // empty: every gadget
}

func newWSFilter() wsFilter {
	return wsFilter{
		channels: make(map[string]struct{}),
		gadgets:  make(map[string]struct{}),
	}
}

func (f *wsFilter) matches(e gadget.Event) bool {
	_, all := f.channels[WSChannelAll]
	_, typed := f.channels[e.Type]
	if !all && !typed {
		return false
	}
	if len(f.gadgets) == 0 {
		return true
	}
	_, ok := f.gadgets[e.GadgetID]
	return ok
}

// Hub tracks event stream clients and fans gadget events out to them.
// It implements gadget.EventPublisher.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*WSClient]struct{}
	closed  bool
}

// NewHub creates an event hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.shutdown()
}

// add registers a client. It reports false once the hub has shut down.
func (h *Hub) add(c *WSClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *WSClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Publish queues event for every client whose subscription matches it.
// Slow clients lose events rather than block the caller.
func (h *Hub) Publish(_ context.Context, event gadget.Event) error {
	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: event.Type,
		Timestamp: event.At.UTC().Format(time.RFC3339),
		Payload:   event,
	})
	if err != nil {
		return fmt.Errorf("encoding websocket event: %w", err)
	}

	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		if c.wants(event) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	dropped := 0
	for _, c := range targets {
		if !c.enqueue(data) {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("websocket event dropped for slow clients",
			"type", event.Type,
			"gadget_id", event.GadgetID,
			"dropped", dropped,
		)
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	clear(h.clients)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	if len(clients) > 0 {
		h.logger.Info("websocket clients disconnected", "clients", len(clients))
	}
}
