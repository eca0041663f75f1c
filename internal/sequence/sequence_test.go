package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic_manager/internal/apperr"
)

// memoryCounters is an in-memory CounterStore for tests.
type memoryCounters struct {
	mu     sync.Mutex
	values map[string]int
}

func newMemoryCounters() *memoryCounters {
	return &memoryCounters{values: make(map[string]int)}
}

func (m *memoryCounters) Next(_ context.Context, clinicID uuid.UUID, kind, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := clinicID.String() + ":" + kind + ":" + day
	m.values[key]++
	return m.values[key], nil
}

// seed positions a counter so the next call returns value+1.
func (m *memoryCounters) seed(clinicID uuid.UUID, kind, day string, value int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[clinicID.String()+":"+kind+":"+day] = value
}

type failingCounters struct{ err error }

func (f *failingCounters) Next(context.Context, uuid.UUID, string, string) (int, error) {
	return 0, f.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGenerator_Format(t *testing.T) {
	clinicID := uuid.New()
	gen := NewGeneratorWithClock(newMemoryCounters(),
		fixedClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)))

	id, err := gen.Generate(context.Background(), KindPatient, clinicID)
	require.NoError(t, err)
	assert.Equal(t, "PAT-20260315-0001", id)

	id, err = gen.Generate(context.Background(), KindPatient, clinicID)
	require.NoError(t, err)
	assert.Equal(t, "PAT-20260315-0002", id)
}

func TestGenerator_Prefixes(t *testing.T) {
	clinicID := uuid.New()
	gen := NewGeneratorWithClock(newMemoryCounters(),
		fixedClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)))

	for kind, prefix := range map[Kind]string{
		KindPatient: "PAT",
		KindVisit:   "VIS",
		KindInvoice: "INV",
		KindPayment: "PAY",
	} {
		id, err := gen.Generate(context.Background(), kind, clinicID)
		require.NoError(t, err)
		assert.Equal(t, prefix+"-20260315-0001", id, "kind %s starts its own sequence", prefix)
	}
}

func TestGenerator_SequencesAreIndependentPerClinic(t *testing.T) {
	store := newMemoryCounters()
	gen := NewGeneratorWithClock(store,
		fixedClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)))

	clinicA := uuid.New()
	clinicB := uuid.New()

	idA, err := gen.Generate(context.Background(), KindVisit, clinicA)
	require.NoError(t, err)
	idB, err := gen.Generate(context.Background(), KindVisit, clinicB)
	require.NoError(t, err)

	assert.Equal(t, "VIS-20260315-0001", idA)
	assert.Equal(t, "VIS-20260315-0001", idB)
}

func TestGenerator_ResetsAtMidnight(t *testing.T) {
	store := newMemoryCounters()
	clinicID := uuid.New()

	day1 := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
	gen := NewGeneratorWithClock(store, fixedClock(day1))
	id, err := gen.Generate(context.Background(), KindInvoice, clinicID)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260315-0001", id)

	day2 := time.Date(2026, 3, 16, 0, 1, 0, 0, time.UTC)
	gen = NewGeneratorWithClock(store, fixedClock(day2))
	id, err = gen.Generate(context.Background(), KindInvoice, clinicID)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260316-0001", id)
}

func TestGenerator_CapacityExceeded(t *testing.T) {
	store := newMemoryCounters()
	clinicID := uuid.New()
	day := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	gen := NewGeneratorWithClock(store, fixedClock(day))

	store.seed(clinicID, "PAY", "20260315", MaxPerDay-1)

	id, err := gen.Generate(context.Background(), KindPayment, clinicID)
	require.NoError(t, err)
	assert.Equal(t, "PAY-20260315-9999", id)

	_, err = gen.Generate(context.Background(), KindPayment, clinicID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindCapacityExceeded, apperr.KindOf(err))
}

func TestGenerator_StoreErrorIsWrapped(t *testing.T) {
	cause := errors.New("connection reset")
	gen := NewGenerator(&failingCounters{err: cause})

	_, err := gen.Generate(context.Background(), KindPatient, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestGenerator_ConcurrentUniqueness(t *testing.T) {
	const workers = 50

	gen := NewGeneratorWithClock(newMemoryCounters(),
		fixedClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)))
	clinicID := uuid.New()

	ids := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := gen.Generate(context.Background(), KindVisit, clinicID)
			if err != nil {
				ids <- fmt.Sprintf("error: %v", err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate identifier %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
}
