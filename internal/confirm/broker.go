package confirm

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const (
	// Alphabet is the symbol set for confirmation codes. Ambiguous glyphs
	// (I, O, 0, 1) are excluded.
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// CodeLength is the number of symbols in a confirmation code.
	CodeLength = 6

	// DefaultTTL is how long an issued code stays valid.
	DefaultTTL = 5 * time.Minute
)

// Random is the randomness source for code symbols.
type Random interface {
	IntN(n int) int
}

type runtimeRandom struct{}

func (runtimeRandom) IntN(n int) int { return rand.IntN(n) }

// Logger is the logging interface used by the Broker.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Broker issues and verifies single-use confirmation codes, one live code
// per gadget.
//
// Per gadget: no code → issued → absent. Consumption and expiry both delete
// the entry, so there is no stored consumed or expired state. Expiry is
// evaluated lazily by Verify; Sweep only reclaims memory.
type Broker struct {
	// mu makes each Issue and Verify a single step against the store, so a
	// code can succeed at most once.
	mu     sync.Mutex
	store  Store
	now    func() time.Time
	random Random
	ttl    time.Duration
	logger Logger
}

// Option configures a Broker.
type Option func(*Broker)

// WithStore sets the code store. The default is a new MemoryStore.
func WithStore(s Store) Option {
	return func(b *Broker) { b.store = s }
}

// WithClock sets the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(b *Broker) { b.now = now }
}

// WithRandom sets the randomness source for code symbols.
func WithRandom(r Random) Option {
	return func(b *Broker) { b.random = r }
}

// WithTTL sets how long issued codes stay valid.
func WithTTL(ttl time.Duration) Option {
	return func(b *Broker) { b.ttl = ttl }
}

// WithLogger sets the logger used by Sweep.
func WithLogger(l Logger) Option {
	return func(b *Broker) { b.logger = l }
}

// New creates a Broker.
func New(opts ...Option) *Broker {
	b := &Broker{
		store:  NewMemoryStore(),
		now:    time.Now,
		random: runtimeRandom{},
		ttl:    DefaultTTL,
		logger: noopLogger{},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.ttl <= 0 {
		b.ttl = DefaultTTL
	}
	return b
}

// TTL returns how long issued codes stay valid.
func (b *Broker) TTL() time.Duration {
	return b.ttl
}

// Issue generates a fresh code for gadgetID, replacing any unconsumed one.
// Concurrent calls for the same gadget are last-writer-wins.
func (b *Broker) Issue(gadgetID string) string {
	code := b.generateCode()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.store.Put(gadgetID, Entry{
		Code:      code,
		ExpiresAt: b.now().Add(b.ttl),
	})
	return code
}

// Verify consumes the live code for gadgetID if code matches it.
//
// An empty code fails with ErrMissingCode without touching the store. An
// expired code is deleted and fails with ErrExpiredCode. A mismatch fails
// with ErrCodeMismatch and leaves the live code in place. A match deletes
// the code.
func (b *Broker) Verify(gadgetID, code string) error {
	if code == "" {
		return ErrMissingCode
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.store.Get(gadgetID)
	if !ok {
		return ErrNoActiveCode
	}

	if b.now().After(entry.ExpiresAt) {
		b.store.Delete(gadgetID)
		return ErrExpiredCode
	}

	if entry.Code != code {
		return ErrCodeMismatch
	}

	b.store.Delete(gadgetID)
	return nil
}

// Sweep deletes every expired code and returns how many were removed.
func (b *Broker) Sweep() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := b.store.DeleteExpired(b.now())
	if removed > 0 {
		b.logger.Debug("swept expired confirmation codes", "count", removed)
	}
	return removed
}

// Run sweeps expired codes every interval until ctx is cancelled.
// A non-positive interval disables sweeping; Run then just waits for ctx.
func (b *Broker) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			b.Sweep()
		}
	}
}

func (b *Broker) generateCode() string {
	var sb strings.Builder
	sb.Grow(CodeLength)
	for range CodeLength {
		sb.WriteByte(Alphabet[b.random.IntN(len(Alphabet))])
	}
	return sb.String()
}
