package model

import (
	"io"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/metrics"
	"go.uber.org/zap"
)

const (
	// Maximum number of sections considered per event unless configured otherwise
	DefaultMaxSectionsPerEvent = 20
	// Frontier capacity used by BuildApproxSchedule when 0 is requested
	DefaultMaxFrontier = 500
)

type Scheduler interface {
	// Registers an event. Sections beyond the per-event cap are dropped. Registering after a search invalidates the
	// conflict index, which is rebuilt by the next search.
	AddEvent(event Event) error

	// Returns a maximum-weight conflict-free schedule by exhaustive branching. Exponential in the number of events.
	BuildOptimalSchedule() (schedule []Pick, weight float64)

	// Returns a conflict-free schedule found while retaining at most maxFrontier candidates between events. A
	// maxFrontier of 0 selects DefaultMaxFrontier.
	BuildApproxSchedule(maxFrontier uint) (schedule []Pick, weight float64)

	// Builds the conflict index ahead of a search so Display can list conflicts. Returns the number of conflicting
	// section pairs.
	BuildConflicts() int

	// Checks a schedule against the registered events without relying on the conflict index
	Verify(schedule []Pick) bool

	// Sums the weights of the registered events present in schedule
	Weight(schedule []Pick) float64

	// Writes every registered event, its sections and, once built, their conflicts
	Display(w io.Writer) error
}

type Option func(*scheduler)

func WithLogger(logger *zap.Logger) Option {
	return func(s *scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *scheduler) {
		s.metrics = m
	}
}

// A cap of 0 keeps every section
func WithMaxSectionsPerEvent(maxSections uint) Option {
	return func(s *scheduler) {
		s.maxSectionsPerEvent = maxSections
	}
}

// Only the maxEvents highest-priority events take part in a search; 0 means unlimited
func WithMaxEvents(maxEvents uint) Option {
	return func(s *scheduler) {
		s.maxEvents = maxEvents
	}
}

// Number of goroutines used to check candidate extensions against the conflict index; values below 2 keep the search on
// the calling goroutine
func WithParallelism(parallelism int) Option {
	return func(s *scheduler) {
		s.parallelism = parallelism
	}
}

func NewScheduler(options ...Option) Scheduler {
	s := &scheduler{
		logger:              zap.NewNop(),
		maxSectionsPerEvent: DefaultMaxSectionsPerEvent,
		parallelism:         1,
		events:              make(map[uint64]*registeredEvent),
	}
	for _, option := range options {
		option(s)
	}
	return s
}
