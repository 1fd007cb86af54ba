package baseline

import (
	"fmt"
	"slices"
	"strings"
)

// DriftKind classifies a difference between two captures.
type DriftKind string

const (
	DriftAdded   DriftKind = "added"
	DriftRemoved DriftKind = "removed"
	DriftChanged DriftKind = "changed"
)

// Drift is one entry that differs between a baseline and a new capture.
type Drift struct {
	Kind DriftKind
	Key  string
	Old  string
	New  string
}

func (d Drift) String() string {
	switch d.Kind {
	case DriftAdded:
		return fmt.Sprintf("+ %s = %s", d.Key, d.New)
	case DriftRemoved:
		return fmt.Sprintf("- %s = %s", d.Key, d.Old)
	}
	return fmt.Sprintf("~ %s: %s -> %s", d.Key, d.Old, d.New)
}

// Compare reports every entry whose value differs between prev and next,
// ordered by key. Origins are ignored: moving a rule between files is not
// drift.
func Compare(prev, next []Entry) []Drift {
	before := make(map[string]string, len(prev))
	for _, e := range prev {
		before[e.Key()] = e.Value
	}
	after := make(map[string]string, len(next))
	for _, e := range next {
		after[e.Key()] = e.Value
	}

	var out []Drift
	for k, v := range before {
		nv, ok := after[k]
		switch {
		case !ok:
			out = append(out, Drift{Kind: DriftRemoved, Key: k, Old: v})
		case nv != v:
			out = append(out, Drift{Kind: DriftChanged, Key: k, Old: v, New: nv})
		}
	}
	for k, v := range after {
		if _, ok := before[k]; !ok {
			out = append(out, Drift{Kind: DriftAdded, Key: k, New: v})
		}
	}
	slices.SortFunc(out, func(a, b Drift) int { return strings.Compare(a.Key, b.Key) })
	return out
}
