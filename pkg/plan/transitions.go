package plan

import "slices"

// transitions encodes the allowed subscription status moves. The engine
// itself never fires transitions; the billing webhook integration checks
// CanTransition before persisting a provider-reported status.
var transitions = map[Status][]Status{
	StatusTrialing:  {StatusActive, StatusPastDue, StatusCancelled},
	StatusActive:    {StatusPastDue, StatusCancelled, StatusPaused},
	StatusPastDue:   {StatusActive, StatusCancelled},
	StatusPaused:    {StatusActive, StatusCancelled},
	StatusCancelled: nil, // terminal
}

// CanTransition reports whether moving from one status to another is a
// legal subscription lifecycle step. Same-status updates are allowed so
// repeated webhook deliveries stay idempotent.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := transitions[from]
	if !ok {
		// Unknown current status: accept the provider's word rather
		// than wedging the subscription.
		return true
	}
	return slices.Contains(allowed, to)
}
