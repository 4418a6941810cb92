package planner

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/harrisonrobin/morrow/pkg/config"
	"github.com/harrisonrobin/morrow/pkg/errs"
	"github.com/harrisonrobin/morrow/pkg/model"
)

// rawItem is one entry of the JSON array the model is instructed to emit.
type rawItem struct {
	Time     string `json:"time"`
	Duration int    `json:"duration"`
	Title    string `json:"title"`
}

var breakMarkers = []string{"break", "rest", "休息"}

// ParseSchedule converts raw model output into a validated block
// sequence. The returned blocks are sorted ascending by start and
// pairwise non-overlapping; every work block either maps to exactly one
// input task or carries no task reference (free time). Warnings flag
// questionable but acceptable schedules. On failure the raw text is
// preserved inside the error for diagnosis.
func ParseSchedule(raw string, tasks []model.Task, prefs config.Preferences) ([]Block, []string, error) {
	items, err := decodeItems(raw)
	if err != nil {
		return nil, nil, err
	}

	blocks := make([]Block, 0, len(items))
	for _, it := range items {
		start, ok := parseClock(it.Time)
		if !ok {
			return nil, nil, parseFailedf(raw, "invalid time %q for %q", it.Time, it.Title)
		}
		if it.Duration <= 0 {
			return nil, nil, parseFailedf(raw, "non-positive duration %d for %q", it.Duration, it.Title)
		}
		block := Block{
			Start: start,
			End:   start + it.Duration,
			Kind:  KindWork,
			Label: it.Title,
		}
		if isBreak(it.Title) {
			block.Kind = KindBreak
		} else {
			taskID, err := matchTask(it.Title, tasks)
			if err != nil {
				return nil, nil, parseFailedf(raw, "%v", err)
			}
			block.TaskID = taskID
		}
		blocks = append(blocks, block)
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Start < blocks[j].Start })

	for i := 1; i < len(blocks); i++ {
		if blocks[i].Start < blocks[i-1].End {
			return nil, nil, parseFailedf(raw, "blocks overlap: %q at %s and %q at %s",
				blocks[i-1].Label, blocks[i-1].StartClock(), blocks[i].Label, blocks[i].StartClock())
		}
	}

	if err := checkWakingWindow(blocks, prefs, raw); err != nil {
		return nil, nil, err
	}

	return blocks, collectWarnings(blocks, tasks, prefs), nil
}

// decodeItems strips markdown code fences and decodes the JSON array.
func decodeItems(raw string) ([]rawItem, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var items []rawItem
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, errs.Wrap(errs.CodeParseFailed,
			fmt.Sprintf("model output is not a schedule array; raw output:\n%s", raw), err)
	}
	if len(items) == 0 {
		return nil, parseFailedf(raw, "model returned an empty schedule")
	}
	return items, nil
}

func isBreak(title string) bool {
	lower := strings.ToLower(title)
	for _, marker := range breakMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// matchTask maps a work block title to at most one source task, by title
// containment. Two matches make the block untraceable; zero matches make
// it free time.
func matchTask(title string, tasks []model.Task) (string, error) {
	lower := strings.ToLower(title)
	var matched *model.Task
	for i := range tasks {
		if tasks[i].Title == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(tasks[i].Title)) {
			if matched != nil {
				return "", fmt.Errorf("block %q matches both task %q and task %q", title, matched.Title, tasks[i].Title)
			}
			matched = &tasks[i]
		}
	}
	if matched == nil {
		return "", nil
	}
	return matched.ID, nil
}

// checkWakingWindow enforces wake_up <= block < sleep, but only when both
// preferences parse as strict clock times and describe a same-day window.
func checkWakingWindow(blocks []Block, prefs config.Preferences, raw string) error {
	wake, wakeOK := parseClock(prefs.Get(config.PrefWakeUp))
	sleep, sleepOK := parseClock(prefs.Get(config.PrefSleep))
	if !wakeOK || !sleepOK || sleep <= wake {
		return nil
	}
	for _, b := range blocks {
		if b.Start < wake {
			return parseFailedf(raw, "%q starts at %s, before wake-up time %s", b.Label, b.StartClock(), formatClock(wake))
		}
		if b.End > sleep {
			return parseFailedf(raw, "%q ends at %s, past sleep time %s", b.Label, b.EndClock(), formatClock(sleep))
		}
	}
	return nil
}

// collectWarnings flags schedules that validate but deserve a second
// look: unscheduled tasks, long unbroken work stretches, and work pushed
// against sleep time.
func collectWarnings(blocks []Block, tasks []model.Task, prefs config.Preferences) []string {
	var warnings []string

	scheduled := map[string]bool{}
	for _, b := range blocks {
		if b.TaskID != "" {
			scheduled[b.TaskID] = true
		}
	}
	for _, t := range tasks {
		if !scheduled[t.ID] {
			warnings = append(warnings, fmt.Sprintf("task %q was not scheduled", t.Title))
		}
	}

	consecutive := 0
	for i, b := range blocks {
		contiguous := i > 0 && b.Start-blocks[i-1].End < 5
		switch {
		case b.Kind != KindWork || b.TaskID == "":
			consecutive = 0
		case contiguous:
			consecutive += b.Duration()
		default:
			consecutive = b.Duration()
		}
		if consecutive > 120 {
			warnings = append(warnings, fmt.Sprintf("work stretch exceeds 2 hours without a break, ending with %q", b.Label))
			consecutive = 0
		}
	}

	if sleep, ok := parseClock(prefs.Get(config.PrefSleep)); ok {
		for _, b := range blocks {
			if b.Kind == KindWork && b.TaskID != "" && b.Start >= sleep-60 && b.Start < sleep {
				warnings = append(warnings, fmt.Sprintf("%q is scheduled close to sleep time", b.Label))
			}
		}
	}
	return warnings
}

func parseFailedf(raw, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return errs.Newf(errs.CodeParseFailed, "%s; raw output:\n%s", msg, raw)
}
