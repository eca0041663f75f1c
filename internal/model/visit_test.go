package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionVisit(t *testing.T) {
	allowed := [][2]string{
		{VisitStatusWaiting, VisitStatusInConsultation},
		{VisitStatusWaiting, VisitStatusCancelled},
		{VisitStatusInConsultation, VisitStatusCompleted},
		{VisitStatusInConsultation, VisitStatusCancelled},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransitionVisit(tr[0], tr[1]), "%s -> %s should be allowed", tr[0], tr[1])
	}

	forbidden := [][2]string{
		{VisitStatusWaiting, VisitStatusCompleted},
		{VisitStatusCompleted, VisitStatusWaiting},
		{VisitStatusCompleted, VisitStatusCancelled},
		{VisitStatusCancelled, VisitStatusWaiting},
		{VisitStatusInConsultation, VisitStatusWaiting},
	}
	for _, tr := range forbidden {
		assert.False(t, CanTransitionVisit(tr[0], tr[1]), "%s -> %s should be rejected", tr[0], tr[1])
	}
}

func TestCanTransitionVisit_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransitionVisit("archived", VisitStatusWaiting))
	assert.False(t, CanTransitionVisit(VisitStatusWaiting, "archived"))
}
