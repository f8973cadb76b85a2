// Package live holds the per-class runtime state that woven code consults:
// the selected mutant id and the set of mutants reached during a baseline run.
package live

import (
	"math/bits"
	"sort"
	"sync"
	"sync/atomic"
)

// NoMutant is the selector value for "run the original code".
const NoMutant int64 = -1

// LiveSet is a growable bitset of reached mutant ids. It is safe for
// concurrent use.
type LiveSet struct {
	mu    sync.Mutex
	words []uint64
}

// NewLiveSet creates an empty LiveSet.
func NewLiveSet() *LiveSet {
	return &LiveSet{}
}

// Set records id as reached. Negative ids are ignored.
func (s *LiveSet) Set(id int64) {
	if id < 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := int(id / 64)
	if w >= len(s.words) {
		grown := make([]uint64, w+1)
		copy(grown, s.words)
		s.words = grown
	}

	s.words[w] |= 1 << uint(id%64)
}

// Has reports whether id was recorded.
func (s *LiveSet) Has(id int64) bool {
	if id < 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := int(id / 64)
	if w >= len(s.words) {
		return false
	}

	return s.words[w]&(1<<uint(id%64)) != 0
}

// Len returns the number of recorded ids.
func (s *LiveSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}

	return n
}

// IDs returns the recorded ids in ascending order.
func (s *LiveSet) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []int64

	for wi, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, int64(wi*64+b))
			w &^= 1 << uint(b)
		}
	}

	return out
}

// ClassState is the runtime state of one woven class.
type ClassState struct {
	selector atomic.Int64
	live     atomic.Pointer[LiveSet]
}

func newClassState() *ClassState {
	s := &ClassState{}
	s.selector.Store(NoMutant)

	return s
}

// Selector returns the currently selected mutant id.
func (s *ClassState) Selector() int64 {
	return s.selector.Load()
}

// Select activates mutant id for this class. NoMutant restores the original.
func (s *ClassState) Select(id int64) {
	s.selector.Store(id)
}

// Live returns the live set, or nil if tracking never started.
func (s *ClassState) Live() *LiveSet {
	return s.live.Load()
}

// EnsureLive returns the class live set, creating it on first use. Concurrent
// callers all observe the same set.
func (s *ClassState) EnsureLive() *LiveSet {
	if set := s.live.Load(); set != nil {
		return set
	}

	s.live.CompareAndSwap(nil, NewLiveSet())

	return s.live.Load()
}

// Mark records id in the live set if one exists. Woven code only marks after
// the method prologue has called EnsureLive.
func (s *ClassState) Mark(id int64) {
	if set := s.live.Load(); set != nil {
		set.Set(id)
	}
}

// States maps class names to their runtime state. Each harness run owns its
// own States so that concurrent runs do not observe each other.
type States struct {
	mu      sync.Mutex
	classes map[string]*ClassState
}

// NewStates creates an empty registry.
func NewStates() *States {
	return &States{classes: make(map[string]*ClassState)}
}

// Class returns the state for class, creating it with the default selector.
func (s *States) Class(class string) *ClassState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.classes[class]
	if !ok {
		st = newClassState()
		s.classes[class] = st
	}

	return st
}

// Classes returns the names of classes with state, sorted.
func (s *States) Classes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.classes))
	for name := range s.classes {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Reached returns, per class, the ids recorded in its live set. Classes whose
// live set was never created are omitted.
func (s *States) Reached() map[string][]int64 {
	out := make(map[string][]int64)

	for _, name := range s.Classes() {
		if set := s.Class(name).Live(); set != nil {
			out[name] = set.IDs()
		}
	}

	return out
}
