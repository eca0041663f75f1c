// Package sequence issues human-readable, clinic-scoped, date-scoped
// identifiers of the form PREFIX-YYYYMMDD-NNNN. The sequence resets
// daily per clinic and entity kind, and numbering is backed by an
// atomic counter so concurrent callers never observe the same value.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"clinic_manager/internal/apperr"
)

// Kind selects the entity family an identifier belongs to.
type Kind int

const (
	KindPatient Kind = iota
	KindVisit
	KindInvoice
	KindPayment
)

// Prefix returns the fixed identifier prefix for a kind.
func (k Kind) Prefix() string {
	switch k {
	case KindPatient:
		return "PAT"
	case KindVisit:
		return "VIS"
	case KindInvoice:
		return "INV"
	case KindPayment:
		return "PAY"
	}
	return "UNK"
}

// MaxPerDay is the largest sequence number the 4-digit suffix can
// carry for one (clinic, kind, day).
const MaxPerDay = 9999

// CounterStore hands out the next value of the per-(clinic, kind,
// day) counter. Implementations must be atomic: two concurrent calls
// for the same key must return distinct consecutive values.
type CounterStore interface {
	Next(ctx context.Context, clinicID uuid.UUID, kind, day string) (int, error)
}

// Generator produces identifiers from a CounterStore.
type Generator struct {
	store CounterStore
	now   func() time.Time
}

// NewGenerator creates a Generator using the local clock.
func NewGenerator(store CounterStore) *Generator {
	return &Generator{store: store, now: time.Now}
}

// NewGeneratorWithClock creates a Generator with an injected clock.
func NewGeneratorWithClock(store CounterStore, now func() time.Time) *Generator {
	return &Generator{store: store, now: now}
}

// Generate issues the next identifier for (kind, clinic) on the
// current local calendar day. When the daily sequence space is
// exhausted it fails with a capacity error rather than wrapping.
func (g *Generator) Generate(ctx context.Context, kind Kind, clinicID uuid.UUID) (string, error) {
	day := g.now().Format("20060102")

	seq, err := g.store.Next(ctx, clinicID, kind.Prefix(), day)
	if err != nil {
		return "", fmt.Errorf("failed to advance %s sequence: %w", kind.Prefix(), err)
	}
	if seq > MaxPerDay {
		return "", apperr.New(apperr.KindCapacityExceeded,
			fmt.Sprintf("daily %s sequence exhausted for %s", kind.Prefix(), day))
	}

	return fmt.Sprintf("%s-%s-%04d", kind.Prefix(), day, seq), nil
}
