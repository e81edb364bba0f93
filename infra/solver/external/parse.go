package external

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/isnet/core/lp"
)

// parsed is the content of a solution file. values is nil when the solver
// reported no point.
type parsed struct {
	status lp.Status
	values map[string]float64
}

// parseCBC reads the file written by CBC's "solu" command: a status line
// such as "Optimal - objective value 12" followed by one
// "index name value reduced-cost" line per nonzero column. Lines of
// infeasible columns are prefixed with "**".
func parseCBC(r io.Reader) (parsed, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return parsed{}, err
		}
		return parsed{}, fmt.Errorf("%w: empty", errFormat)
	}
	head := strings.TrimSpace(sc.Text())
	lower := strings.ToLower(head)
	var res parsed
	withValues := true
	switch {
	case strings.HasPrefix(lower, "optimal"):
		res.status = lp.StatusOptimal
	case strings.Contains(lower, "infeasible") && !strings.HasPrefix(lower, "stopped"):
		res.status, withValues = lp.StatusInfeasible, false
	case strings.HasPrefix(lower, "unbounded"):
		res.status, withValues = lp.StatusUnbounded, false
	case strings.HasPrefix(lower, "stopped"):
		res.status = lp.StatusNotSolved
		withValues = !strings.Contains(lower, "no integer solution")
	default:
		return parsed{}, fmt.Errorf("%w: status line %q", errFormat, head)
	}
	if !withValues {
		return res, nil
	}

	res.values = map[string]float64{}
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) > 0 && f[0] == "**" {
			f = f[1:]
		}
		if len(f) < 3 {
			continue
		}
		v, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return parsed{}, fmt.Errorf("%w: value of %s: %v", errFormat, f[1], err)
		}
		res.values[f[1]] = v
	}
	return res, sc.Err()
}

// parseHiGHS reads a raw-style HiGHS solution file:
//
//	Model status
//	Optimal
//
//	# Primal solution values
//	Feasible
//	Objective 12
//	# Columns 2
//	x 1
//	y 0
//	# Rows 1
//	...
func parseHiGHS(r io.Reader) (parsed, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var (
		res       parsed
		gotStatus bool
		columns   = -1
	)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "Model status":
			if !sc.Scan() {
				return parsed{}, fmt.Errorf("%w: missing model status", errFormat)
			}
			res.status = highsStatus(strings.TrimSpace(sc.Text()))
			gotStatus = true
		case line == "# Primal solution values":
			if !sc.Scan() {
				return parsed{}, fmt.Errorf("%w: missing primal status", errFormat)
			}
			if strings.TrimSpace(sc.Text()) == "None" {
				return res, nil
			}
		case strings.HasPrefix(line, "# Columns"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "# Columns")))
			if err != nil {
				return parsed{}, fmt.Errorf("%w: %q", errFormat, line)
			}
			columns = n
			res.values = make(map[string]float64, n)
			for i := 0; i < n && sc.Scan(); i++ {
				f := strings.Fields(sc.Text())
				if len(f) < 2 {
					return parsed{}, fmt.Errorf("%w: column line %q", errFormat, sc.Text())
				}
				v, err := strconv.ParseFloat(f[1], 64)
				if err != nil {
					return parsed{}, fmt.Errorf("%w: value of %s: %v", errFormat, f[0], err)
				}
				res.values[f[0]] = v
			}
		}
		if columns >= 0 {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return parsed{}, err
	}
	if !gotStatus {
		return parsed{}, fmt.Errorf("%w: no model status", errFormat)
	}
	switch res.status {
	case lp.StatusInfeasible, lp.StatusUnbounded, lp.StatusUndefined:
		res.values = nil
	}
	return res, nil
}

func highsStatus(s string) lp.Status {
	switch s {
	case "Optimal":
		return lp.StatusOptimal
	case "Infeasible":
		return lp.StatusInfeasible
	case "Unbounded":
		return lp.StatusUnbounded
	case "Time limit reached", "Iteration limit reached", "Solution limit reached", "Interrupted by user", "Objective bound", "Objective target":
		return lp.StatusNotSolved
	default:
		return lp.StatusUndefined
	}
}
