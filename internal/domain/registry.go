package domain

import (
	"fmt"
	"io"
	"sort"
	"sync"

	m "gooze.dev/pkg/weave/internal/model"
)

// Registry allocates mutation ids per class and remembers every point it
// handed out. It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	next   map[string]int64
	points []m.MutationPoint
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{next: make(map[string]int64)}
}

// Allocate returns a fresh id for class. Ids start at zero and increase by one
// per call for the same class.
func (r *Registry) Allocate(class, method string, op m.OperatorKind) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next[class]
	r.next[class] = id + 1

	r.points = append(r.points, m.MutationPoint{Class: class, Method: method, Operator: op, ID: id})

	return id
}

// Count returns the number of ids allocated for class.
func (r *Registry) Count(class string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.next[class]
}

// Points returns every allocated point ordered by class, then id.
func (r *Registry) Points() []m.MutationPoint {
	r.mu.Lock()
	out := make([]m.MutationPoint, len(r.points))
	copy(out, r.points)
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Class != out[j].Class {
			return out[i].Class < out[j].Class
		}

		return out[i].ID < out[j].ID
	})

	return out
}

// WriteReport writes one tab-separated line per point:
// source, class, id, method and operator.
func (r *Registry) WriteReport(w io.Writer, source m.Path) error {
	for _, p := range r.Points() {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", source, p.Class, p.ID, p.Method, p.Operator); err != nil {
			return fmt.Errorf("write mutation report: %w", err)
		}
	}

	return nil
}
