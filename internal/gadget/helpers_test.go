package gadget

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gadget-registry/internal/infrastructure/database"
	_ "github.com/nerrad567/gadget-registry/migrations" // registers embedded schema
)

// setupTestDB opens an in-memory database with the full schema applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(context.Background(), database.Config{Path: ":memory:", BusyTimeout: 1})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // Test cleanup
	})

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db.DB
}

// seqRandom replays a fixed sequence of draws, cycling when exhausted.
type seqRandom struct {
	mu     sync.Mutex
	values []int
	next   int
}

func (r *seqRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.values[r.next%len(r.values)]
	r.next++
	return v % n
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

func ptr[T any](v T) *T { return &v }
