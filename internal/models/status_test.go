package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusApproved},
		{StatusPending, StatusRejected},
		{StatusApproved, StatusProcessing},
		{StatusProcessing, StatusCompleted},
		{StatusProcessing, StatusFailed},
	}

	all := []Status{StatusPending, StatusApproved, StatusRejected, StatusProcessing, StatusCompleted, StatusFailed}

	isAllowed := func(from, to Status) bool {
		for _, a := range allowed {
			if a.from == from && a.to == to {
				return true
			}
		}
		return false
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, isAllowed(from, to), CanTransition(from, to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestCanTransition_RejectedIsTerminal(t *testing.T) {
	// A rejected request can never be picked up for processing.
	assert.False(t, CanTransition(StatusRejected, StatusProcessing))
	assert.False(t, CanTransition(StatusRejected, StatusApproved))
	assert.False(t, CanTransition(StatusRejected, StatusCompleted))
}

func TestCanTransition_NoBackwardTransitions(t *testing.T) {
	assert.False(t, CanTransition(StatusApproved, StatusPending))
	assert.False(t, CanTransition(StatusProcessing, StatusApproved))
	assert.False(t, CanTransition(StatusCompleted, StatusProcessing))
	assert.False(t, CanTransition(StatusFailed, StatusProcessing))
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"pending", "approved", "rejected", "processing", "completed", "failed"} {
		status, err := ParseStatus(valid)
		assert.NoError(t, err)
		assert.Equal(t, Status(valid), status)
	}

	_, err := ParseStatus("archived")
	assert.Error(t, err)
}

func TestErrInvalidTransition_Message(t *testing.T) {
	err := &ErrInvalidTransition{From: StatusRejected, To: StatusProcessing}
	assert.Equal(t, "invalid status transition: rejected -> processing", err.Error())
}
