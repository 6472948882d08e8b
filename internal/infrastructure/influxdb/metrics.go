package influxdb

import (
	"context"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gadget-registry/internal/gadget"
)

// Measurement names written by the registry.
const (
	MeasurementTransition = "gadget_transition"
	MeasurementInventory  = "gadget_inventory"
)

// pointWriter is the subset of api.WriteAPI used for metrics.
type pointWriter interface {
	WritePoint(point *write.Point)
}

// transitionPoint builds the point recorded for one lifecycle event.
// Tags stay low-cardinality; the gadget ID is a field.
func transitionPoint(event gadget.Event) *write.Point {
	tags := map[string]string{
		"event":      event.Type,
		"new_status": string(event.NewStatus),
	}
	if event.OldStatus != "" {
		tags["old_status"] = string(event.OldStatus)
	}

	return write.NewPoint(
		MeasurementTransition,
		tags,
		map[string]any{
			"count":     1,
			"gadget_id": event.GadgetID,
		},
		event.At,
	)
}

// inventoryPoints builds one point per status with its gadget count.
// Every known status is written, including zeros.
func inventoryPoints(counts map[gadget.Status]int, at time.Time) []*write.Point {
	points := make([]*write.Point, 0, len(gadget.AllStatuses))
	for _, status := range gadget.AllStatuses {
		points = append(points, write.NewPoint(
			MeasurementInventory,
			map[string]string{"status": string(status)},
			map[string]any{"count": counts[status]},
			at,
		))
	}
	return points
}

// Publish records a lifecycle event as a gadget_transition point.
// It implements gadget.EventPublisher. Writes are batched; failures
// surface through SetOnError.
func (c *Client) Publish(_ context.Context, event gadget.Event) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	c.writePoints(c.writeAPI, transitionPoint(event))
	return nil
}

// RecordInventory writes a gadget_inventory snapshot of per-status counts.
func (c *Client) RecordInventory(counts map[gadget.Status]int, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writePoints(c.writeAPI, inventoryPoints(counts, at)...)
}

func (c *Client) writePoints(w pointWriter, points ...*write.Point) {
	for _, p := range points {
		w.WritePoint(p)
	}
}
