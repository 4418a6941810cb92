package planner

import (
	"context"
	"errors"
	"fmt"

	tasksapi "google.golang.org/api/tasks/v1"

	"github.com/harrisonrobin/morrow/pkg/errs"
	"github.com/harrisonrobin/morrow/pkg/google"
	"github.com/harrisonrobin/morrow/pkg/model"
)

// fakeAPI is an in-memory stand-in for the Google Tasks client. Inserts
// prepend, matching the real service, and the submission order is
// recorded so tests can assert on it.
type fakeAPI struct {
	lists     map[string]*tasksapi.TaskList // by title
	items     map[string][]model.Task       // by list ID, index 0 on top
	inserts   []google.TaskInput            // every Insert call, in order
	failAfter int                           // fail inserts after this many successes; -1 never
	seq       int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		lists:     map[string]*tasksapi.TaskList{},
		items:     map[string][]model.Task{},
		failAfter: -1,
	}
}

func (f *fakeAPI) addList(name string) string {
	f.seq++
	id := fmt.Sprintf("list-%d", f.seq)
	f.lists[name] = &tasksapi.TaskList{Id: id, Title: name}
	return id
}

func (f *fakeAPI) FindList(_ context.Context, name string) (*tasksapi.TaskList, error) {
	if l, ok := f.lists[name]; ok {
		return l, nil
	}
	return nil, errs.Newf(errs.CodeListNotFound, "task list not found: %s", name)
}

func (f *fakeAPI) EnsureList(_ context.Context, name string) (*tasksapi.TaskList, error) {
	if l, ok := f.lists[name]; ok {
		return l, nil
	}
	f.addList(name)
	return f.lists[name], nil
}

func (f *fakeAPI) ListTasks(_ context.Context, listID string, includeCompleted bool) ([]model.Task, error) {
	var out []model.Task
	for _, t := range f.items[listID] {
		if !includeCompleted && !t.Pending() {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeAPI) Insert(_ context.Context, listID string, input google.TaskInput) (*tasksapi.Task, error) {
	f.inserts = append(f.inserts, input)
	if f.failAfter >= 0 && len(f.items[listID]) >= f.failAfter {
		return nil, errors.New("quota exceeded")
	}
	f.seq++
	task := model.Task{
		ID:     fmt.Sprintf("task-%d", f.seq),
		Title:  input.Title,
		Notes:  input.Notes,
		Due:    input.Due,
		Status: model.StatusPending,
	}
	f.items[listID] = append([]model.Task{task}, f.items[listID]...)
	return &tasksapi.Task{Id: task.ID, Title: task.Title}, nil
}
