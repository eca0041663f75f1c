package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SequenceRepository is the PostgreSQL counter store backing
// identifier generation. The upsert-and-increment runs as one atomic
// statement, so "read max, add one" never happens as two steps.
type SequenceRepository struct {
	db DB
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(db DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next advances the (clinic, kind, day) counter and returns its new
// value. Concurrent callers serialize on the counter row.
func (r *SequenceRepository) Next(ctx context.Context, clinicID uuid.UUID, kind, day string) (int, error) {
	sql := `INSERT INTO sequence_counters (clinic_id, kind, day, value)
            VALUES ($1, $2, $3, 1)
            ON CONFLICT (clinic_id, kind, day)
            DO UPDATE SET value = sequence_counters.value + 1
            RETURNING value`
	var value int
	if err := r.db.QueryRow(ctx, sql, clinicID, kind, day).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to advance sequence counter: %w", err)
	}
	return value, nil
}
