package runner

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// Report collects the results of one run.
type Report struct {
	Results []Result
	Elapsed time.Duration
}

// Count returns how many results ended with status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

var (
	passMark  = color.New(color.FgGreen, color.Bold).SprintFunc()
	failMark  = color.New(color.FgRed, color.Bold).SprintFunc()
	abortMark = color.New(color.FgYellow, color.Bold).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
)

// Print writes a one-line-per-scenario summary followed by totals.
func (r *Report) Print(w io.Writer) {
	for _, res := range r.Results {
		var mark string
		switch res.Status {
		case Passed:
			mark = passMark("PASS ")
		case Failed:
			mark = failMark("FAIL ")
		default:
			mark = abortMark("ABORT")
		}
		fmt.Fprintf(w, "%s %-32s %s\n", mark, res.Name, dim(res.Elapsed.Round(time.Millisecond)))
		if res.Err != nil {
			fmt.Fprintf(w, "      %v\n", res.Err)
		}
		if res.Screenshot != "" {
			fmt.Fprintf(w, "      screenshot: %s\n", res.Screenshot)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d aborted in %s\n",
		r.Count(Passed), r.Count(Failed), r.Count(Aborted), r.Elapsed.Round(time.Millisecond))
}
