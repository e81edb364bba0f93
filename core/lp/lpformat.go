package lp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const termsPerLine = 8

// WriteLP renders p in CPLEX LP format so it can be handed to external MILP
// solvers. Row constants are moved to the right-hand side.
func WriteLP(w io.Writer, p *Problem) error {
	if err := p.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	names := ColumnNames(p)

	if p.Name != "" {
		fmt.Fprintf(bw, "\\ Problem: %s\n", p.Name)
	}
	if p.Objective.Constant != 0 {
		fmt.Fprintf(bw, "\\ Objective constant: %s\n", formatNum(p.Objective.Constant))
	}
	bw.WriteString("Minimize\n obj:")
	writeTerms(bw, p.Objective.Compact(), names)
	bw.WriteString("\nSubject To\n")
	for i, r := range p.Rows {
		e := r.Expr.Compact()
		fmt.Fprintf(bw, " %s:", lpName(r.Name, "r", i))
		writeTerms(bw, e, names)
		fmt.Fprintf(bw, " %s %s\n", r.Op, formatNum(r.RHS-e.Constant))
	}

	bw.WriteString("Bounds\n")
	var generals, binaries []string
	for i, c := range p.Cols {
		switch c.Kind {
		case Binary:
			binaries = append(binaries, names[i])
			continue
		case Integer:
			generals = append(generals, names[i])
		}
		switch {
		case math.IsInf(c.Lower, -1) && math.IsInf(c.Upper, 1):
			fmt.Fprintf(bw, " %s free\n", names[i])
		case c.Lower == 0 && math.IsInf(c.Upper, 1):
		case c.Lower == c.Upper:
			fmt.Fprintf(bw, " %s = %s\n", names[i], formatNum(c.Lower))
		default:
			fmt.Fprintf(bw, " %s <= %s <= %s\n", formatNum(c.Lower), names[i], formatNum(c.Upper))
		}
	}
	writeSection(bw, "Generals", generals)
	writeSection(bw, "Binaries", binaries)
	bw.WriteString("End\n")
	return bw.Flush()
}

// ColumnNames returns the column names WriteLP uses for p: sanitized for
// LP readers and unique. Solution files of external solvers refer to
// columns by these names.
func ColumnNames(p *Problem) []string {
	names := make([]string, len(p.Cols))
	seen := make(map[string]bool, len(p.Cols))
	for i, c := range p.Cols {
		n := lpName(c.Name, "x", i)
		if seen[n] {
			n += "_" + strconv.Itoa(i)
		}
		seen[n] = true
		names[i] = n
	}
	return names
}

func writeTerms(bw *bufio.Writer, e Expr, names []string) {
	if len(e.Terms) == 0 {
		bw.WriteString(" 0 " + names0(names))
		return
	}
	for i, t := range e.Terms {
		if i > 0 && i%termsPerLine == 0 {
			bw.WriteString("\n  ")
		}
		sign := "+"
		coef := t.Coef
		if coef < 0 {
			sign, coef = "-", -coef
		}
		if i == 0 && sign == "+" {
			fmt.Fprintf(bw, " %s %s", formatNum(coef), names[t.Var])
			continue
		}
		fmt.Fprintf(bw, " %s %s %s", sign, formatNum(coef), names[t.Var])
	}
}

// names0 returns a column to carry an all-zero expression; LP readers reject
// empty rows.
func names0(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func writeSection(bw *bufio.Writer, title string, names []string) {
	if len(names) == 0 {
		return
	}
	bw.WriteString(title + "\n")
	for i := 0; i < len(names); i += termsPerLine {
		end := min(i+termsPerLine, len(names))
		bw.WriteString(" " + strings.Join(names[i:end], " ") + "\n")
	}
}

func formatNum(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func lpName(name, prefix string, i int) string {
	if name == "" {
		return prefix + strconv.Itoa(i)
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if c := s[0]; (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' {
		s = prefix + "_" + s
	}
	return s
}
