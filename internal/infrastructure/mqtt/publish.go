package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/gadget-registry/internal/gadget"
)

// maxPayloadSize is the largest payload accepted for publishing (1MB).
const maxPayloadSize = 1 << 20

// Publish sends a message to the specified MQTT topic.
//
// QoS is 0, 1 or 2. Retained messages are stored by the broker for new
// subscribers; use them for state, not for events.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// publisher is the subset of Client used by EventPublisher.
type publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// EventPublisher publishes gadget lifecycle events as JSON on
// gadgets/events/{gadget_id}. It implements gadget.EventPublisher.
type EventPublisher struct {
	client publisher
	qos    byte
}

// NewEventPublisher returns an EventPublisher using the client's configured QoS.
func NewEventPublisher(c *Client) *EventPublisher {
	return &EventPublisher{client: c, qos: byte(c.cfg.QoS)}
}

// Publish encodes event and sends it, not retained.
func (p *EventPublisher) Publish(ctx context.Context, event gadget.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publishing %s: %w", event.Type, err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.Type, err)
	}

	if err := p.client.Publish(Topics{}.GadgetEvent(event.GadgetID), payload, p.qos, false); err != nil {
		return fmt.Errorf("publishing %s event: %w", event.Type, err)
	}
	return nil
}
