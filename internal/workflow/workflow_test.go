package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomBookingTransitions(t *testing.T) {
	cases := []struct {
		name  string
		from  Status
		to    Status
		legal bool
	}{
		{"pending can be approved", StatusPending, StatusApproved, true},
		{"pending can be rejected", StatusPending, StatusRejected, true},
		{"pending can be cancelled", StatusPending, StatusCancelled, true},
		{"approved can be cancelled", StatusApproved, StatusCancelled, true},
		{"approved can be completed", StatusApproved, StatusCompleted, true},
		{"pending cannot jump to completed", StatusPending, StatusCompleted, false},
		{"rejected is terminal", StatusRejected, StatusPending, false},
		{"cancelled is terminal", StatusCancelled, StatusApproved, false},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"no self transition", StatusPending, StatusPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.legal, RoomBooking.CanTransition(tc.from, tc.to))
		})
	}
}

func TestInstrumentUsageHasNoCompletion(t *testing.T) {
	assert.True(t, InstrumentUsage.CanTransition(StatusPending, StatusApproved))
	assert.True(t, InstrumentUsage.CanTransition(StatusApproved, StatusCancelled))
	assert.False(t, InstrumentUsage.CanTransition(StatusApproved, StatusCompleted))
}

func TestRepairTicketNotStrictlySequential(t *testing.T) {
	assert.True(t, RepairTicket.CanTransition(StatusPending, StatusCompleted), "skipping in_progress is allowed")
	assert.True(t, RepairTicket.CanTransition(StatusInProgress, StatusPending), "moving back is allowed")
	assert.False(t, RepairTicket.CanTransition(StatusCompleted, StatusInProgress), "completed is terminal")
	assert.False(t, RepairTicket.CanTransition(StatusPending, StatusRejected), "repair tickets have no rejection")
}

func TestTerminalStates(t *testing.T) {
	for _, st := range []Status{StatusRejected, StatusCancelled, StatusCompleted} {
		assert.True(t, RoomBooking.IsTerminal(st), "%s should be terminal", st)
	}
	assert.False(t, RoomBooking.IsTerminal(StatusPending))
	assert.False(t, RoomBooking.IsTerminal(StatusApproved))
	assert.True(t, RepairTicket.IsTerminal(StatusCompleted))
	assert.False(t, RepairTicket.IsTerminal(StatusInProgress))
}

func TestContains(t *testing.T) {
	assert.True(t, RoomBooking.Contains(StatusRejected))
	assert.False(t, RoomBooking.Contains(StatusInProgress))
	assert.True(t, RepairTicket.Contains(StatusInProgress))
	assert.False(t, RepairTicket.Contains(StatusApproved))
}
