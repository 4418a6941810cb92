package planner

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/morrow/pkg/config"
	"github.com/harrisonrobin/morrow/pkg/errs"
	"github.com/harrisonrobin/morrow/pkg/model"
)

// TaskInfo is the slice of a task the model sees.
type TaskInfo struct {
	Title string `json:"title"`
	// Notes may contain time hints like "morning", "2 hours", "after lunch".
	Notes string `json:"notes,omitempty"`
}

// PlanningInput is everything the prompt is rendered from. Building it is
// pure: identical inputs yield a byte-identical prompt.
type PlanningInput struct {
	Date        string
	DayOfWeek   string
	Preferences config.Preferences
	Tasks       []TaskInfo
}

// BuildInput assembles the planning input for the day after now in the
// given IANA timezone.
func BuildInput(tasks []model.Task, prefs config.Preferences, timezone string, now time.Time) (PlanningInput, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return PlanningInput{}, errs.Newf(errs.CodeConfigInvalid,
			"invalid timezone %q, use IANA format like Asia/Shanghai or America/New_York", timezone)
	}
	tomorrow := now.In(loc).AddDate(0, 0, 1)

	infos := make([]TaskInfo, 0, len(tasks))
	for _, t := range tasks {
		infos = append(infos, TaskInfo{Title: t.Title, Notes: t.Notes})
	}

	return PlanningInput{
		Date:        tomorrow.Format("2006-01-02"),
		DayOfWeek:   tomorrow.Weekday().String(),
		Preferences: prefs,
		Tasks:       infos,
	}, nil
}

// SystemPrompt is the planning instruction. The output-format contract at
// the bottom is what ParseSchedule relies on.
const SystemPrompt = `You are a daily schedule planner. Your task is to create a practical, time-blocked schedule for tomorrow based on the user's preferences and tasks.

Rules:
1. Create a realistic schedule that respects the user's preferences (wake time, meals, sleep, etc.)
2. Allocate appropriate time for each task based on its title and notes
3. Pay attention to time hints in task notes (e.g., "morning", "2 hours", "after lunch", "urgent")
4. Include breaks and buffer time between tasks
5. If no time hint is given, estimate reasonable duration based on task complexity
6. If the user provides a "bio" (self description), consider their life habits and physical conditions
7. When a block works on one of the given tasks, include that task's title verbatim in the block title
8. Output ONLY a valid JSON array, no other text

Pomodoro Technique Guidelines:
- For focused work tasks, apply the Pomodoro Technique: 25 min work + 5 min break
- If a task clearly needs more than one interval, chain consecutive work/break cycles for it
- After 4 pomodoros, add a 35 min long break
- For short tasks under 25 min, no need to apply pomodoro
- Label break blocks clearly (e.g., "Short break", "Long break")

Output format - a JSON array of scheduled items:
[
  {"time": "07:30", "duration": 30, "title": "Wake up and wash up"},
  {"time": "08:00", "duration": 30, "title": "Breakfast"},
  ...
]

Each item must have:
- time: 24-hour format "HH:MM"
- duration: minutes (integer)
- title: block description (string)
`

// UserPrompt renders the planning input. Preference entries keep their
// configuration-file order so the prompt is stable across runs.
func UserPrompt(in PlanningInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please create a schedule for %s (%s).\n\n", in.Date, in.DayOfWeek)

	b.WriteString("User preferences:\n")
	b.WriteString(preferencesJSON(in.Preferences))

	b.WriteString("\n\nTasks to schedule:\n")
	tasks, _ := json.MarshalIndent(in.Tasks, "", "  ")
	b.Write(tasks)
	return b.String()
}

// preferencesJSON renders the preference bag as a JSON object with keys
// in configuration order, which encoding/json's maps would not preserve.
func preferencesJSON(p config.Preferences) string {
	var b strings.Builder
	b.WriteString("{")
	first := true
	write := func(key, value string) {
		if !first {
			b.WriteString(",")
		}
		first = false
		k, _ := json.Marshal(key)
		v, _ := json.Marshal(value)
		fmt.Fprintf(&b, "\n  %s: %s", k, v)
	}
	if p.Bio != "" {
		write("bio", p.Bio)
	}
	for _, it := range p.Items {
		write(it.Key, it.Value)
	}
	b.WriteString("\n}")
	return b.String()
}
