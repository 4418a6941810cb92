// Package planner turns pending tasks and lifestyle preferences into a
// validated, time-blocked schedule and commits it to the output list.
package planner

import (
	"fmt"
	"strconv"
	"strings"
)

// BlockKind tags a schedule block as focused work or recovery time.
type BlockKind string

const (
	KindWork  BlockKind = "work"
	KindBreak BlockKind = "break"
)

// Block is one contiguous unit of the generated plan. Start and End are
// minutes since local midnight; End may pass 24h for blocks running past
// midnight. A work block with an empty TaskID is free time (meals,
// wash-up, commute) rather than an unmatched task.
type Block struct {
	Start  int
	End    int
	Kind   BlockKind
	Label  string
	TaskID string
}

// Duration returns the block length in minutes.
func (b Block) Duration() int {
	return b.End - b.Start
}

// StartClock returns the start time as "HH:MM".
func (b Block) StartClock() string {
	return formatClock(b.Start)
}

// EndClock returns the end time as "HH:MM".
func (b Block) EndClock() string {
	return formatClock(b.End % (24 * 60))
}

// Result is the outcome of one pipeline run. Never mutated after
// construction.
type Result struct {
	RunID        string
	Date         string // plan date, YYYY-MM-DD
	Blocks       []Block
	WrittenCount int
	Warnings     []string
}

// parseClock parses a strict "HH:MM" or "H:MM" 24-hour clock value into
// minutes since midnight. Free-text times ("around 7:30") do not parse.
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	if len(parts[1]) != 2 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
