package model

// Task statuses as reported by the Google Tasks API.
const (
	StatusPending   = "needsAction"
	StatusCompleted = "completed"
)

// Task is a to-do item fetched from the remote task-list service.
// Immutable once fetched within a run.
type Task struct {
	ID     string
	Title  string
	Notes  string
	Due    string // RFC 3339 timestamp, empty when the task has no due date
	Status string
}

// Pending reports whether the task still needs action.
func (t Task) Pending() bool {
	return t.Status != StatusCompleted
}
