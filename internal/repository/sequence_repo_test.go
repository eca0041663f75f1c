package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceRepository_Next(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSequenceRepository(mock)
	clinicID := uuid.New()

	mock.ExpectQuery(`INSERT INTO sequence_counters`).
		WithArgs(clinicID, "PAT", "20260315").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(42))

	value, err := repo.Next(context.Background(), clinicID, "PAT", "20260315")

	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceRepository_Next_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSequenceRepository(mock)
	clinicID := uuid.New()

	cause := errors.New("connection refused")
	mock.ExpectQuery(`INSERT INTO sequence_counters`).
		WithArgs(clinicID, "INV", "20260315").
		WillReturnError(cause)

	_, err = repo.Next(context.Background(), clinicID, "INV", "20260315")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.NoError(t, mock.ExpectationsWereMet())
}
