package planner

import (
	"context"
)

// Guard is the idempotency check on the destination list. It is a
// check-then-act guard, not a lock: two concurrent runs can both pass it
// before either writes. The system assumes at most one run in flight.
type Guard struct {
	api TaskAPI
}

func NewGuard(api TaskAPI) *Guard {
	return &Guard{api: api}
}

// CheckEmpty resolves the destination list, creating it when absent, and
// reports whether it holds zero items, completed ones included. The list
// ID is returned so the writer can reuse it without a second lookup.
func (g *Guard) CheckEmpty(ctx context.Context, listName string) (bool, string, error) {
	list, err := g.api.EnsureList(ctx, listName)
	if err != nil {
		return false, "", err
	}
	items, err := g.api.ListTasks(ctx, list.Id, true)
	if err != nil {
		return false, "", err
	}
	return len(items) == 0, list.Id, nil
}
