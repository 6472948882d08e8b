package gadget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/nerrad567/gadget-registry/internal/infrastructure/database"
)

// Repository defines the interface for gadget persistence operations.
type Repository interface {
	// Create inserts a new gadget.
	// Returns ErrCodenameTaken if the codename is already assigned.
	Create(ctx context.Context, g *Gadget) error

	// GetByID retrieves a gadget by ID.
	// Returns ErrNotFound if the gadget does not exist.
	GetByID(ctx context.Context, id string) (*Gadget, error)

	// List retrieves gadgets, optionally restricted to one status.
	// An empty status returns every gadget.
	List(ctx context.Context, status Status) ([]Gadget, error)

	// CodenameExists reports whether a codename is already assigned.
	CodenameExists(ctx context.Context, codename string) (bool, error)

	// UpdateDescription replaces a gadget's description.
	// Returns ErrNotFound if the gadget does not exist.
	UpdateDescription(ctx context.Context, id, description string, at time.Time) error

	// CountByStatus returns the number of gadgets in each status.
	CountByStatus(ctx context.Context) (map[Status]int, error)

	// ApplyTransition commits an accepted status change: the new status, the
	// matching terminal timestamp, a history row and any description change,
	// all in one transaction. Returns ErrConcurrentUpdate if the stored status is no longer t.From.
	ApplyTransition(ctx context.Context, t Transition) error
}

const gadgetColumns = `id, codename, description, status, decommissioned_at, destroyed_at, created_at, updated_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new gadget.
func (r *SQLiteRepository) Create(ctx context.Context, g *Gadget) error {
	query := `
		INSERT INTO gadgets (` + gadgetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		g.ID,
		g.Codename,
		g.Description,
		string(g.Status),
		formatNullableTime(g.DecommissionedAt),
		formatNullableTime(g.DestroyedAt),
		g.CreatedAt.UTC().Format(time.RFC3339),
		g.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodenameTaken
		}
		return fmt.Errorf("inserting gadget: %w", err)
	}
	return nil
}

// GetByID retrieves a gadget by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Gadget, error) {
	query := `SELECT ` + gadgetColumns + ` FROM gadgets WHERE id = ?`

	g, err := scanGadget(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying gadget by id: %w", err)
	}
	return g, nil
}

// List retrieves gadgets ordered by creation time.
func (r *SQLiteRepository) List(ctx context.Context, status Status) ([]Gadget, error) {
	query := `SELECT ` + gadgetColumns + ` FROM gadgets`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at, codename`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying gadgets: %w", err)
	}
	defer rows.Close()

	gadgets := make([]Gadget, 0)
	for rows.Next() {
		g, err := scanGadget(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning gadget: %w", err)
		}
		gadgets = append(gadgets, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gadgets: %w", err)
	}
	return gadgets, nil
}

// CodenameExists reports whether a codename is already assigned.
func (r *SQLiteRepository) CodenameExists(ctx context.Context, codename string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM gadgets WHERE codename = ?)`, codename,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking codename: %w", err)
	}
	return exists, nil
}

// CountByStatus returns the number of gadgets in each status. Statuses with
// no gadgets are reported as zero.
func (r *SQLiteRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	counts := make(map[Status]int, len(AllStatuses))
	for _, s := range AllStatuses {
		counts[s] = 0
	}

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM gadgets GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting gadgets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning gadget count: %w", err)
		}
		counts[Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gadget counts: %w", err)
	}
	return counts, nil
}

// UpdateDescription replaces a gadget's description.
func (r *SQLiteRepository) UpdateDescription(ctx context.Context, id, description string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE gadgets SET description = ?, updated_at = ? WHERE id = ?`,
		description, at.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating gadget description: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyTransition commits an accepted status change atomically.
func (r *SQLiteRepository) ApplyTransition(ctx context.Context, t Transition) error {
	at := t.At.UTC().Format(time.RFC3339)

	var query string
	switch t.To {
	case StatusDestroyed:
		query = `UPDATE gadgets SET status = ?, updated_at = ?, destroyed_at = ? WHERE id = ? AND status = ?`
	case StatusDecommissioned:
		query = `UPDATE gadgets SET status = ?, updated_at = ?, decommissioned_at = ? WHERE id = ? AND status = ?`
	default:
		query = `UPDATE gadgets SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	}

	args := []any{string(t.To), at}
	if t.To.Terminal() {
		args = append(args, at)
	}
	args = append(args, t.GadgetID, string(t.From))

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("updating gadget status: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if rows == 0 {
			return r.missingTransitionTarget(ctx, tx, t.GadgetID)
		}

		if t.Description != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE gadgets SET description = ? WHERE id = ?`,
				*t.Description, t.GadgetID,
			); err != nil {
				return fmt.Errorf("updating gadget description: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO status_history (gadget_id, old_status, new_status, created_at) VALUES (?, ?, ?, ?)`,
			t.GadgetID, string(t.From), string(t.To), at,
		)
		if err != nil {
			return fmt.Errorf("inserting status history: %w", err)
		}
		return nil
	})
}

// missingTransitionTarget explains why a compare-and-set update matched no row.
func (r *SQLiteRepository) missingTransitionTarget(ctx context.Context, tx *sql.Tx, id string) error {
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM gadgets WHERE id = ?)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking gadget existence: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConcurrentUpdate
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGadget(row scanner) (*Gadget, error) {
	var (
		g                    Gadget
		status               string
		decommissionedAt     sql.NullString
		destroyedAt          sql.NullString
		createdAt, updatedAt string
	)

	if err := row.Scan(
		&g.ID,
		&g.Codename,
		&g.Description,
		&status,
		&decommissionedAt,
		&destroyedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	g.Status = Status(status)
	g.DecommissionedAt = parseNullableTime(decommissionedAt)
	g.DestroyedAt = parseNullableTime(destroyedAt)
	g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // written by this package
	g.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // written by this package

	return &g, nil
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
