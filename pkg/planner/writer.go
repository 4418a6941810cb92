package planner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/harrisonrobin/morrow/pkg/errs"
	"github.com/harrisonrobin/morrow/pkg/google"
)

// insertInterval paces insertions to stay inside the Tasks API write
// quota.
const insertInterval = 200 * time.Millisecond

// Writer commits schedule blocks to the destination list.
type Writer struct {
	api     TaskAPI
	listID  string
	date    string // plan date, YYYY-MM-DD
	limiter *rate.Limiter
}

func NewWriter(api TaskAPI, listID, date string) *Writer {
	return &Writer{
		api:     api,
		listID:  listID,
		date:    date,
		limiter: rate.NewLimiter(rate.Every(insertInterval), 1),
	}
}

// Write inserts the blocks into the destination list. The service
// prepends on every insertion, so blocks are submitted in descending
// start order: the earliest block is inserted last and therefore lands on
// top, giving a top-to-bottom chronological display. Fails fast on the
// first failed insertion, reporting how many blocks were written; partial
// writes are not rolled back.
func (w *Writer) Write(ctx context.Context, blocks []Block) (int, error) {
	ordered := make([]Block, len(blocks))
	copy(ordered, blocks)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start > ordered[j].Start })

	written := 0
	for _, b := range ordered {
		if err := w.limiter.Wait(ctx); err != nil {
			return written, errs.Wrap(errs.CodeWriteFailed,
				fmt.Sprintf("wrote %d of %d blocks", written, len(blocks)), err)
		}
		input := google.TaskInput{
			Title: fmt.Sprintf("🕒 [%s] %s", b.StartClock(), b.Label),
			Notes: fmt.Sprintf("Duration: %d minutes", b.Duration()),
			Due:   w.date + "T00:00:00.000Z",
		}
		if _, err := w.api.Insert(ctx, w.listID, input); err != nil {
			return written, errs.Wrap(errs.CodeWriteFailed,
				fmt.Sprintf("wrote %d of %d blocks", written, len(blocks)), err)
		}
		written++
	}
	return written, nil
}
