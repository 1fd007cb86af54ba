package skin

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/zjrosen/skins/internal/log"
)

// InstanceID identifies one mounted skin point.
type InstanceID string

// NewInstanceID returns a fresh random instance id.
func NewInstanceID() InstanceID {
	return InstanceID(uuid.New().String())
}

// Point is a mounted skin point instance.
type Point struct {
	ID     InstanceID // assigned by Register when empty
	Skin   string     // declared identifier
	Parent InstanceID // empty for a top-level component root
}

// Registry tracks mounted skin point instances. Registration is per instance:
// mounting the same component type twice yields two entries, unmounting removes
// them (and their descendants) again.
//
// Registry is not safe for concurrent mutation; it lives on the UI thread.
type Registry struct {
	vocab    *Vocabulary
	points   map[InstanceID]Point
	roots    map[InstanceID]InstanceID            // instance -> component subtree root
	subtrees map[InstanceID]map[string]InstanceID // subtree root -> skin -> instance
	children map[InstanceID][]InstanceID
}

// NewRegistry creates an empty registry validating against vocab.
func NewRegistry(vocab *Vocabulary) *Registry {
	return &Registry{
		vocab:    vocab,
		points:   make(map[InstanceID]Point),
		roots:    make(map[InstanceID]InstanceID),
		subtrees: make(map[InstanceID]map[string]InstanceID),
		children: make(map[InstanceID][]InstanceID),
	}
}

// Vocabulary returns the declared vocabulary backing the registry.
func (r *Registry) Vocabulary() *Vocabulary { return r.vocab }

// Register mounts p and returns its instance id.
func (r *Registry) Register(p Point) (InstanceID, error) {
	decl, err := r.vocab.Lookup(p.Skin)
	if err != nil {
		return "", err
	}
	if p.ID == "" {
		p.ID = NewInstanceID()
	}
	if _, exists := r.points[p.ID]; exists {
		return "", fmt.Errorf("%w: instance %s already registered", ErrDuplicateIdentifier, p.ID)
	}

	var parent Point
	if p.Parent != "" {
		var ok bool
		parent, ok = r.points[p.Parent]
		if !ok {
			return "", fmt.Errorf("%w: parent instance %s", ErrUnknownSkin, p.Parent)
		}
	} else if !decl.IsRoot() {
		return "", fmt.Errorf("%w: %q needs a %q parent", ErrPrefixViolation, p.Skin, decl.Parent)
	}

	// A component root opens a new subtree even when nested in another component.
	root := p.ID
	if !decl.IsRoot() {
		if !ExtendsParent(p.Skin, parent.Skin) {
			return "", fmt.Errorf("%w: %q under %q", ErrPrefixViolation, p.Skin, parent.Skin)
		}
		root = r.roots[parent.ID]
		if existing, dup := r.subtrees[root][p.Skin]; dup {
			return "", fmt.Errorf("%w: %q already mounted as %s", ErrDuplicateIdentifier, p.Skin, existing)
		}
	}

	r.points[p.ID] = p
	r.roots[p.ID] = root
	if r.subtrees[root] == nil {
		r.subtrees[root] = make(map[string]InstanceID)
	}
	r.subtrees[root][p.Skin] = p.ID
	if p.Parent != "" {
		r.children[p.Parent] = append(r.children[p.Parent], p.ID)
	}

	log.Debug(log.CatRegistry, "Registered skin point", "skin", p.Skin, "id", p.ID, "parent", p.Parent)
	return p.ID, nil
}

// Unregister removes the instance and all of its descendants.
func (r *Registry) Unregister(id InstanceID) error {
	p, ok := r.points[id]
	if !ok {
		return fmt.Errorf("%w: instance %s", ErrUnknownSkin, id)
	}
	for _, child := range slices.Clone(r.children[id]) {
		_ = r.Unregister(child)
	}

	root := r.roots[id]
	if r.subtrees[root][p.Skin] == id {
		delete(r.subtrees[root], p.Skin)
	}
	if root == id {
		delete(r.subtrees, root)
	}
	delete(r.roots, id)
	delete(r.children, id)
	delete(r.points, id)
	if p.Parent != "" {
		siblings := slices.DeleteFunc(r.children[p.Parent], func(c InstanceID) bool { return c == id })
		if len(siblings) == 0 {
			delete(r.children, p.Parent)
		} else {
			r.children[p.Parent] = siblings
		}
	}

	log.Debug(log.CatRegistry, "Unregistered skin point", "skin", p.Skin, "id", id)
	return nil
}

// Lookup returns the mounted instance for id.
func (r *Registry) Lookup(id InstanceID) (Point, error) {
	p, ok := r.points[id]
	if !ok {
		return Point{}, fmt.Errorf("%w: instance %s", ErrUnknownSkin, id)
	}
	return p, nil
}

// Ancestors returns the instance chain of id ordered root first, id last.
func (r *Registry) Ancestors(id InstanceID) ([]Point, error) {
	p, err := r.Lookup(id)
	if err != nil {
		return nil, err
	}
	chain := []Point{p}
	for p.Parent != "" {
		p = r.points[p.Parent]
		chain = append(chain, p)
	}
	slices.Reverse(chain)
	return chain, nil
}

// Children returns the direct children of id in mount order.
func (r *Registry) Children(id InstanceID) []InstanceID {
	return slices.Clone(r.children[id])
}

// IDs returns every mounted instance id.
func (r *Registry) IDs() []InstanceID {
	ids := make([]InstanceID, 0, len(r.points))
	for id := range r.points {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of mounted instances.
func (r *Registry) Len() int { return len(r.points) }
