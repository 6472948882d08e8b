package gadget

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// HistoryRepository reads the append-only status history. Rows are written
// only by Repository.ApplyTransition.
type HistoryRepository interface {
	// GetHistory returns recent entries for a gadget, newest first.
	GetHistory(ctx context.Context, gadgetID string, limit int) ([]StatusHistoryEntry, error)
}

// SQLiteHistoryRepository implements HistoryRepository using SQLite.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteHistoryRepository creates a new SQLite status history repository.
func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

// GetHistory returns recent status history entries for a gadget, ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - gadgetID: Unique gadget identifier
//   - limit: Maximum entries to return (default 50, max 200)
func (r *SQLiteHistoryRepository) GetHistory(ctx context.Context, gadgetID string, limit int) ([]StatusHistoryEntry, error) {
	limit = clampHistoryLimit(limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, gadget_id, old_status, new_status, created_at
		FROM status_history
		WHERE gadget_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		gadgetID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying status history: %w", err)
	}
	defer rows.Close()

	entries := make([]StatusHistoryEntry, 0)
	for rows.Next() {
		var (
			entry          StatusHistoryEntry
			oldStatus      string
			newStatus      string
			createdAtValue string
		)
		if err := rows.Scan(&entry.ID, &entry.GadgetID, &oldStatus, &newStatus, &createdAtValue); err != nil {
			return nil, fmt.Errorf("scanning status history: %w", err)
		}
		entry.OldStatus = Status(oldStatus)
		entry.NewStatus = Status(newStatus)

		createdAt, err := time.Parse(time.RFC3339, createdAtValue)
		if err != nil {
			return nil, fmt.Errorf("parsing status history timestamp: %w", err)
		}
		entry.CreatedAt = createdAt

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status history: %w", err)
	}

	return entries, nil
}

func clampHistoryLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
