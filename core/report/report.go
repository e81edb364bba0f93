// Package report renders a planner result as plain text.
package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/kilianp07/isnet/core/planner"
)

// Options selects optional sections.
type Options struct {
	// Indicators adds one line per active pathway indicator.
	Indicators bool
}

// Write prints the status, the allocated areas, every cost term and the
// objective. Values the solver did not provide print as "undefined".
func Write(w io.Writer, res *planner.Result, opts Options) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "status: %s\n", res.Status)
	for _, a := range res.Allocations {
		if a.Area > 0 {
			fmt.Fprintf(bw, "area%s = %s\n", a.Pathway, number(a.Area))
		}
	}
	if opts.Indicators {
		for _, a := range res.Allocations {
			if a.Active > 0 {
				fmt.Fprintf(bw, "active%s = %s\n", a.Pathway, number(a.Active))
			}
		}
	}
	for t := planner.Term(0); t < planner.NumTerms; t++ {
		fmt.Fprintf(bw, "%s = %s\n", t, number(res.Terms[t]))
	}
	fmt.Fprintf(bw, "objective = %s\n", number(res.Objective))
	return bw.Flush()
}

func number(v float64) string {
	if math.IsNaN(v) {
		return "undefined"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
