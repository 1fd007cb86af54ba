package theme

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/zjrosen/skins/internal/skin"
)

// refGraph is the directed graph of references between (skin, hook) pairs.
// Edges from every rule are included regardless of variant set, since any
// combination of variants can be active at once.
type refGraph map[target][]target

// buildGraph also links (child, hook) to (parent, hook) for inheriting hooks
// the child has no base rule for, since under some variant set the child
// falls back to its parent.
func buildGraph(rules []Rule, vocab *skin.Vocabulary) refGraph {
	g := make(refGraph)
	add := func(from, to target) {
		if !slices.Contains(g[from], to) {
			g[from] = append(g[from], to)
		}
	}
	based := make(map[target]bool)
	for _, r := range rules {
		from := target{r.Skin, r.Hook}
		if r.IsBase() {
			based[from] = true
		}
		for v := &r.Value; v != nil; v = v.Fallback {
			switch v.Kind {
			case Reference:
				t := v.Ref.Target(r.Skin)
				add(from, target{t.Skin, t.Hook})
			case Inherit:
				if d, err := vocab.Lookup(r.Skin); err == nil && !d.IsRoot() {
					add(from, target{d.Parent, r.Hook})
				}
			}
		}
	}

	for _, name := range skin.AllHooks() {
		if h, _ := vocab.Hook(name); !h.Inherits {
			continue
		}
		for _, d := range vocab.Decls() {
			if d.IsRoot() || based[target{d.ID, name}] {
				continue
			}
			add(target{d.ID, name}, target{d.Parent, name})
		}
	}
	return g
}

// cycles returns every elementary cycle found by a depth-first walk, each
// reported once, starting from its first node in sorted order.
func (g refGraph) cycles() [][]target {
	const (
		white = iota
		grey
		black
	)
	color := make(map[target]int)
	var stack []target
	var found [][]target

	var visit func(n target)
	visit = func(n target) {
		color[n] = grey
		stack = append(stack, n)
		for _, m := range g[n] {
			switch color[m] {
			case white:
				visit(m)
			case grey:
				i := slices.Index(stack, m)
				found = append(found, slices.Clone(stack[i:]))
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
	}

	nodes := make([]target, 0, len(g))
	for n := range g {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, compareTarget)
	for _, n := range nodes {
		if color[n] == white {
			visit(n)
		}
	}
	return found
}

func compareTarget(a, b target) int {
	return cmp.Or(cmp.Compare(a.skin, b.skin), cmp.Compare(a.hook, b.hook))
}

func formatCycle(c []target) string {
	parts := make([]string, 0, len(c)+1)
	for _, t := range c {
		parts = append(parts, "--"+t.skin+"-"+t.hook)
	}
	parts = append(parts, parts[0])
	return strings.Join(parts, " -> ")
}

func cycleError(c []target) error {
	return fmt.Errorf("%w: %s", ErrCyclicReference, formatCycle(c))
}
