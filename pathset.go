package laguz

// pathSet is an insertion-ordered set of paths in which no member is a
// parent of another.
type pathSet struct {
	paths []string
}

// add folds p into the set. A path already covered by a pending parent is
// dropped; a new parent evicts the pending paths it covers.
func (s *pathSet) add(p string) {
	for _, q := range s.paths {
		if IsParent(q, p) {
			return
		}
	}
	kept := s.paths[:0]
	for _, q := range s.paths {
		if !IsParent(p, q) {
			kept = append(kept, q)
		}
	}
	s.paths = append(kept, p)
}

// drain returns the pending paths and empties the set.
func (s *pathSet) drain() []string {
	out := s.paths
	s.paths = nil
	return out
}

func (s *pathSet) len() int { return len(s.paths) }
