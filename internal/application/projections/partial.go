package projections

// Partial is a list assembled from per-item calls where some items may have failed.
// Failed holds the ids whose calls failed; their entries in Items, if any, are incomplete.
type Partial[T any] struct {
	Items  []T
	Failed []string
}

// OK reports whether every item loaded.
func (p Partial[T]) OK() bool {
	return len(p.Failed) == 0
}

// FailedCount returns how many items failed to load.
func (p Partial[T]) FailedCount() int {
	return len(p.Failed)
}

func (p *Partial[T]) fail(id string) {
	for _, f := range p.Failed {
		if f == id {
			return
		}
	}
	p.Failed = append(p.Failed, id)
}
