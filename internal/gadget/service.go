package gadget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logger defines the logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// CodeBroker issues and verifies self-destruct confirmation codes.
// *confirm.Broker satisfies it.
type CodeBroker interface {
	Issue(gadgetID string) string
	Verify(gadgetID, code string) error
	TTL() time.Duration
}

// ServiceDeps holds the collaborators of a Service. Repo, History and Broker
// are required; the rest fall back to production defaults.
type ServiceDeps struct {
	Repo      Repository
	History   HistoryRepository
	Broker    CodeBroker
	Publisher EventPublisher
	Logger    Logger
	Random    Random
	Clock     func() time.Time
}

// Service applies the lifecycle rules to stored gadgets.
//
// It consults the guard before every status write and hands accepted
// transitions to Repository.ApplyTransition, which commits status, terminal
// timestamp and history together. Concurrent requests for the same gadget are
// serialised by that compare-and-set, not by the Service.
type Service struct {
	repo      Repository
	history   HistoryRepository
	broker    CodeBroker
	publisher EventPublisher
	logger    Logger
	random    Random
	now       func() time.Time
}

// NewService creates a gadget service.
func NewService(deps ServiceDeps) *Service {
	s := &Service{
		repo:      deps.Repo,
		history:   deps.History,
		broker:    deps.Broker,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		random:    deps.Random,
		now:       deps.Clock,
	}
	if s.publisher == nil {
		s.publisher = noopPublisher{}
	}
	if s.logger == nil {
		s.logger = noopLogger{}
	}
	if s.random == nil {
		s.random = DefaultRandom()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Random returns the randomness source used for mission probabilities.
func (s *Service) Random() Random {
	return s.random
}

// Create registers a new AVAILABLE gadget with a unique codename.
func (s *Service) Create(ctx context.Context, description string) (*Gadget, error) {
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}

	codename, err := GenerateUniqueCodename(ctx, s.random, s.repo.CodenameExists)
	if err != nil {
		if errors.Is(err, ErrCodenameExhausted) {
			s.logger.Warn("codename space exhausted", "attempts", MaxCodenameAttempts)
		}
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	g := &Gadget{
		ID:          uuid.NewString(),
		Codename:    codename,
		Description: description,
		Status:      StatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("creating gadget: %w", err)
	}

	s.logger.Info("gadget created", "gadget_id", g.ID, "codename", g.Codename)
	s.publish(ctx, Event{
		Type:      EventCreated,
		GadgetID:  g.ID,
		Codename:  g.Codename,
		NewStatus: g.Status,
		At:        now,
	})

	return g, nil
}

// List returns gadgets, optionally filtered by status. An empty filter
// returns every gadget; an unknown status fails with ErrInvalidStatus.
func (s *Service) List(ctx context.Context, statusFilter string) ([]Gadget, error) {
	var status Status
	if statusFilter != "" {
		parsed, err := ParseStatus(statusFilter)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	gadgets, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("listing gadgets: %w", err)
	}
	return gadgets, nil
}

// Get returns a single gadget.
func (s *Service) Get(ctx context.Context, id string) (*Gadget, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update. A status change is checked by
// ProcessStatusChange; DESTROYED is only reachable through the
// self-destruct confirmation sequence.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Gadget, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		if err := ValidateDescription(*req.Description); err != nil {
			return nil, err
		}
	}

	var changed bool
	if req.Status != nil {
		if _, err := ParseStatus(string(*req.Status)); err != nil {
			return nil, err
		}
		changed, err = ProcessStatusChange(g.Status, *req.Status)
		if err != nil {
			return nil, err
		}
		if changed && *req.Status == StatusDestroyed {
			return nil, ErrConfirmationRequired
		}
	}

	now := s.now().UTC().Truncate(time.Second)

	var description *string
	if req.Description != nil && *req.Description != g.Description {
		description = req.Description
	}

	switch {
	case changed:
		t := Transition{GadgetID: g.ID, From: g.Status, To: *req.Status, At: now, Description: description}
		if err := s.transition(ctx, g, t, EventStatusChanged); err != nil {
			return nil, err
		}
	case description != nil:
		if err := s.repo.UpdateDescription(ctx, id, *description, now); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("updating gadget: %w", err)
		}
	}

	return s.repo.GetByID(ctx, id)
}

// Decommission retires a gadget. It bypasses the transition table: any
// non-terminal gadget may be decommissioned.
func (s *Service) Decommission(ctx context.Context, id string) (*Gadget, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := CheckDecommission(g.Status); err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	if err := s.transition(ctx, g, Transition{GadgetID: g.ID, From: g.Status, To: StatusDecommissioned, At: now}, EventStatusChanged); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// RequestSelfDestruct issues a confirmation code for a gadget that may be
// destroyed. Only the most recently issued code for a gadget is valid.
func (s *Service) RequestSelfDestruct(ctx context.Context, id string) (*SelfDestructTicket, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := ProcessStatusChange(g.Status, StatusDestroyed)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, &TerminalStateError{Current: g.Status}
	}

	code := s.broker.Issue(g.ID)
	s.logger.Info("self-destruct sequence initiated", "gadget_id", g.ID, "codename", g.Codename)

	return &SelfDestructTicket{
		GadgetID:  g.ID,
		Code:      code,
		ExpiresIn: s.broker.TTL(),
	}, nil
}

// ConfirmSelfDestruct verifies a confirmation code and destroys the gadget.
func (s *Service) ConfirmSelfDestruct(ctx context.Context, id, code string) (*Gadget, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The gadget may have moved since the code was issued. Checked before
	// Verify so a refused request leaves a live code in place.
	changed, err := ProcessStatusChange(g.Status, StatusDestroyed)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, &TerminalStateError{Current: g.Status}
	}

	if err := s.broker.Verify(g.ID, code); err != nil {
		s.logger.Warn("self-destruct confirmation rejected", "gadget_id", g.ID, "error", err)
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	if err := s.transition(ctx, g, Transition{GadgetID: g.ID, From: g.Status, To: StatusDestroyed, At: now}, EventDestroyed); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// Stats returns gadget counts per status and in total.
func (s *Service) Stats(ctx context.Context) (map[Status]int, int, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("reading gadget stats: %w", err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return counts, total, nil
}

// History returns a gadget's status history, newest first.
func (s *Service) History(ctx context.Context, id string, limit int) ([]StatusHistoryEntry, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	entries, err := s.history.GetHistory(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("reading status history: %w", err)
	}
	return entries, nil
}

// transition commits an accepted status change and publishes it.
func (s *Service) transition(ctx context.Context, g *Gadget, t Transition, eventType string) error {
	if err := s.repo.ApplyTransition(ctx, t); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConcurrentUpdate) {
			return err
		}
		return fmt.Errorf("applying status transition: %w", err)
	}

	s.logger.Info("gadget status changed",
		"gadget_id", g.ID,
		"codename", g.Codename,
		"from", g.Status,
		"to", t.To,
	)
	s.publish(ctx, Event{
		Type:      eventType,
		GadgetID:  g.ID,
		Codename:  g.Codename,
		OldStatus: g.Status,
		NewStatus: t.To,
		At:        t.At,
	})
	return nil
}

func (s *Service) publish(ctx context.Context, event Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publishing gadget event failed",
			"type", event.Type,
			"gadget_id", event.GadgetID,
			"error", err,
		)
	}
}
