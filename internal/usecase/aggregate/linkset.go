package aggregate

import "sync"

// LinkSet is the set of links already accepted in one aggregation run.
type LinkSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewLinkSet creates an empty LinkSet.
func NewLinkSet() *LinkSet {
	return &LinkSet{seen: make(map[string]struct{})}
}

// Add records link and reports whether it was new.
func (s *LinkSet) Add(link string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[link]; ok {
		return false
	}
	s.seen[link] = struct{}{}
	return true
}

// Len returns the number of accepted links.
func (s *LinkSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
