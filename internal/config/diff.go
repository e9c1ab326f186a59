package config

import (
	"strings"
)

type DiffKind int

const (
	DiffContext DiffKind = iota
	DiffRemoved
	DiffAdded
)

// DiffLine is one line of a YAML diff between two configs.
type DiffLine struct {
	Kind DiffKind
	Text string
}

func (l DiffLine) String() string {
	switch l.Kind {
	case DiffAdded:
		return "+ " + l.Text
	case DiffRemoved:
		return "- " + l.Text
	default:
		return "  " + l.Text
	}
}

// Diff compares the YAML renderings of two configs and returns the changed
// lines with up to context unchanged lines around each change. Gaps are
// marked with a "..." context line. Nil means no difference.
func Diff(original, current *Config, context int) []DiffLine {
	if original == nil || current == nil {
		return nil
	}
	a, err := original.Marshal()
	if err != nil {
		return nil
	}
	b, err := current.Marshal()
	if err != nil {
		return nil
	}
	as := strings.TrimSpace(string(a))
	bs := strings.TrimSpace(string(b))
	if as == bs {
		return nil
	}
	return trimContext(diffLines(strings.Split(as, "\n"), strings.Split(bs, "\n")), context)
}

// diffLines walks a longest-common-subsequence table of a and b.
func diffLines(a, b []string) []DiffLine {
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	out := make([]DiffLine, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			out = append(out, DiffLine{Kind: DiffContext, Text: a[i]})
			i++
			j++
		case j == len(b) || (i < len(a) && lcs[i+1][j] >= lcs[i][j+1]):
			out = append(out, DiffLine{Kind: DiffRemoved, Text: a[i]})
			i++
		default:
			out = append(out, DiffLine{Kind: DiffAdded, Text: b[j]})
			j++
		}
	}
	return out
}

func trimContext(lines []DiffLine, context int) []DiffLine {
	keep := make([]bool, len(lines))
	changed := false
	for i, l := range lines {
		if l.Kind == DiffContext {
			continue
		}
		changed = true
		for k := max(0, i-context); k <= min(len(lines)-1, i+context); k++ {
			keep[k] = true
		}
	}
	if !changed {
		return nil
	}

	var out []DiffLine
	gap := false
	for i, l := range lines {
		if !keep[i] {
			gap = true
			continue
		}
		if gap && len(out) > 0 {
			out = append(out, DiffLine{Kind: DiffContext, Text: "..."})
		}
		gap = false
		out = append(out, l)
	}
	return out
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
