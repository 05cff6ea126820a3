// Package workflow holds the approval state machine shared by room bookings,
// instrument usage requests and repair tickets. Each resource kind gets its
// own Spec value; the transition rules themselves are kind-agnostic.
package workflow

// Status is a request's position in its approval lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
	StatusCompleted  Status = "completed"
	StatusInProgress Status = "in_progress"
)

// Spec describes the legal transition graph for one resource kind.
// A status with no outgoing transitions is terminal.
type Spec struct {
	Initial     Status
	Transitions map[Status][]Status
}

// CanTransition reports whether from -> to is a legal edge of the graph.
func (s Spec) CanTransition(from, to Status) bool {
	for _, next := range s.Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from st.
func (s Spec) IsTerminal(st Status) bool {
	return len(s.Transitions[st]) == 0
}

// Contains reports whether st belongs to the spec's state set at all.
func (s Spec) Contains(st Status) bool {
	if st == s.Initial {
		return true
	}
	if _, ok := s.Transitions[st]; ok {
		return true
	}
	for _, targets := range s.Transitions {
		for _, t := range targets {
			if t == st {
				return true
			}
		}
	}
	return false
}

// RoomBooking: pending requests are reviewed or cancelled; approved ones may
// still be cancelled, or completed once the slot has been used.
var RoomBooking = Spec{
	Initial: StatusPending,
	Transitions: map[Status][]Status{
		StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
		StatusApproved: {StatusCancelled, StatusCompleted},
	},
}

// InstrumentUsage: same as RoomBooking minus the explicit completion step;
// returning the instrument is outside this workflow.
var InstrumentUsage = Spec{
	Initial: StatusPending,
	Transitions: map[Status][]Status{
		StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
		StatusApproved: {StatusCancelled},
	},
}

// RepairTicket: a disjoint, linear state set with no reject/cancel. Reviewers
// may move a ticket between pending and in_progress freely; completed is the
// only terminal state.
var RepairTicket = Spec{
	Initial: StatusPending,
	Transitions: map[Status][]Status{
		StatusPending:    {StatusInProgress, StatusCompleted},
		StatusInProgress: {StatusPending, StatusCompleted},
	},
}
