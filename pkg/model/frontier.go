package model

import (
	"slices"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/cow"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/topk"
)

// candidate is a partial schedule: mutually non-conflicting picks and their accumulated weight
type candidate struct {
	weight float64
	picks  cow.Sequence[SectionId]
	order  uint64 // Creation counter; earlier candidates win weight ties
}

func candidateLess(a, b candidate) bool {
	if a.weight != b.weight {
		return a.weight < b.weight
	}
	return a.order > b.order
}

// frontier holds the candidates retained between two events
type frontier interface {
	push(c candidate)
	// Snapshot of the retained candidates
	all() []candidate
	len() int
	// Candidates dropped so far because of a capacity bound
	discarded() int
}

// listFrontier retains every candidate (exact search)
type listFrontier struct {
	candidates []candidate
}

func (f *listFrontier) push(c candidate) { f.candidates = append(f.candidates, c) }
func (f *listFrontier) all() []candidate { return slices.Clone(f.candidates) }
func (f *listFrontier) len() int         { return len(f.candidates) }
func (f *listFrontier) discarded() int   { return 0 }

// boundedFrontier retains the highest-weight candidates up to a fixed capacity (approximate search)
type boundedFrontier struct {
	top     *topk.BoundedTopK[candidate]
	dropped int
}

func newBoundedFrontier(capacity int) *boundedFrontier {
	return &boundedFrontier{top: topk.New(capacity, candidateLess)}
}

func (f *boundedFrontier) push(c candidate) {
	full := f.top.Len() == f.top.Cap()
	f.top.Push(c)
	// A push into a full frontier drops exactly one candidate: either c itself or the evicted minimum
	if full {
		f.dropped++
	}
}

func (f *boundedFrontier) all() []candidate { return slices.Collect(f.top.Elements()) }
func (f *boundedFrontier) len() int         { return f.top.Len() }
func (f *boundedFrontier) discarded() int   { return f.dropped }
