package gadget

import (
	"context"
	"errors"
	"time"
)

// Event types published after a change is committed.
const (
	EventCreated       = "gadget.created"
	EventStatusChanged = "gadget.status_changed"
	EventDestroyed     = "gadget.destroyed"
)

// Event describes a committed gadget change.
type Event struct {
	Type      string    `json:"type"`
	GadgetID  string    `json:"gadget_id"`
	Codename  string    `json:"codename"`
	OldStatus Status    `json:"old_status,omitempty"`
	NewStatus Status    `json:"new_status"`
	At        time.Time `json:"at"`
}

// EventPublisher receives committed gadget events. Publishing is best effort:
// the change is already durable when Publish is called.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// MultiPublisher fans an event out to every publisher and joins their errors.
type MultiPublisher []EventPublisher

// Publish delivers event to each publisher in order.
func (m MultiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }
