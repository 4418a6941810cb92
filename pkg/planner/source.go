package planner

import (
	"context"

	tasksapi "google.golang.org/api/tasks/v1"

	"github.com/harrisonrobin/morrow/pkg/google"
	"github.com/harrisonrobin/morrow/pkg/model"
)

// TaskAPI is the slice of the Google Tasks client the pipeline uses.
type TaskAPI interface {
	FindList(ctx context.Context, name string) (*tasksapi.TaskList, error)
	EnsureList(ctx context.Context, name string) (*tasksapi.TaskList, error)
	ListTasks(ctx context.Context, listID string, includeCompleted bool) ([]model.Task, error)
	Insert(ctx context.Context, listID string, input google.TaskInput) (*tasksapi.Task, error)
}

// Source reads pending tasks from the named source list.
type Source struct {
	api TaskAPI
}

func NewSource(api TaskAPI) *Source {
	return &Source{api: api}
}

// Fetch returns the incomplete tasks of the named list, in server order.
func (s *Source) Fetch(ctx context.Context, listName string) ([]model.Task, error) {
	list, err := s.api.FindList(ctx, listName)
	if err != nil {
		return nil, err
	}
	items, err := s.api.ListTasks(ctx, list.Id, false)
	if err != nil {
		return nil, err
	}
	pending := make([]model.Task, 0, len(items))
	for _, t := range items {
		if t.Pending() {
			pending = append(pending, t)
		}
	}
	return pending, nil
}
