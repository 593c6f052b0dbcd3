package store

type statusTransition struct {
	from Status
	to   Status
}

// validTransitions is the lesson lifecycle. Failed lessons may be retried
// back to pending.
var validTransitions = map[statusTransition]struct{}{
	{StatusPending, StatusFetching}:    {},
	{StatusFetching, StatusFetched}:    {},
	{StatusFetched, StatusRendering}:   {},
	{StatusRendering, StatusCompleted}: {},
	{StatusPending, StatusFailed}:      {},
	{StatusFetching, StatusFailed}:     {},
	{StatusFetched, StatusFailed}:      {},
	{StatusRendering, StatusFailed}:    {},
	{StatusFailed, StatusPending}:      {},
	{StatusFetching, StatusPending}:    {},
	{StatusFetched, StatusPending}:     {},
	{StatusRendering, StatusPending}:   {},
}

func transitionAllowed(from, to Status) bool {
	if from == to {
		return true
	}
	_, ok := validTransitions[statusTransition{from, to}]
	return ok
}
