package model

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/cow"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/interval"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/metrics"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/topk"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type engineState int

const (
	stateIdle           engineState = iota // Accepting events
	stateConflictsBuilt                    // Conflict index matches the registered sections
	stateSearching
	stateDone // Result extracted; the next search rebuilds the index
)

type scheduler struct {
	//** Dependencies
	logger  *zap.Logger
	metrics *metrics.Metrics

	//** Limits
	maxSectionsPerEvent uint
	maxEvents           uint
	parallelism         int

	events   map[uint64]*registeredEvent
	order    []*registeredEvent // Registration order
	sections []sectionRef       // Indexed by SectionId
	index    *conflictIndex
	state    engineState
}

func (s *scheduler) AddEvent(event Event) error {
	if _, ok := s.events[event.Id]; ok {
		s.logger.Warn("ignoring duplicate event", zap.Uint64("event_id", event.Id))
		return fmt.Errorf("%w: %v", ErrDuplicateEvent, event.Id)
	}
	if math.IsNaN(event.Weight) || math.IsInf(event.Weight, 0) {
		return fmt.Errorf("%w: event %v has weight %v", ErrInvalidWeight, event.Id, event.Weight)
	}

	sections := event.Sections
	if s.maxSectionsPerEvent > 0 && uint(len(sections)) > s.maxSectionsPerEvent {
		s.logger.Debug("truncating event sections",
			zap.Uint64("event_id", event.Id),
			zap.Int("sections", len(sections)),
			zap.Uint("kept", s.maxSectionsPerEvent),
		)
		sections = sections[:s.maxSectionsPerEvent]
	}

	sets := lo.Map(sections, func(section []interval.Interval, _ int) interval.Set {
		return interval.NewSet(section...)
	})
	if _, position, found := lo.FindIndexOf(sets, func(set interval.Set) bool { return !set.Valid() }); found {
		return fmt.Errorf("%w: event %v section %v", ErrInvalidInterval, event.Id, position)
	}

	registered := &registeredEvent{
		id:       event.Id,
		weight:   event.Weight,
		sequence: len(s.order),
		offset:   SectionId(len(s.sections)),
		sections: sets,
	}
	for i, set := range sets {
		s.sections = append(s.sections, sectionRef{eventId: event.Id, index: uint64(i), set: set})
	}
	s.events[event.Id] = registered
	s.order = append(s.order, registered)

	// A built index no longer covers every section
	if s.state != stateIdle {
		s.logger.Debug("conflict index invalidated", zap.Uint64("event_id", event.Id))
		s.index = nil
		s.state = stateIdle
	}

	return nil
}

func (s *scheduler) BuildOptimalSchedule() ([]Pick, float64) {
	return s.search(metrics.ModeExact, func() frontier {
		return &listFrontier{}
	})
}

func (s *scheduler) BuildApproxSchedule(maxFrontier uint) ([]Pick, float64) {
	if maxFrontier == 0 {
		maxFrontier = DefaultMaxFrontier
	}
	return s.search(metrics.ModeApprox, func() frontier {
		return newBoundedFrontier(int(maxFrontier))
	})
}

func (s *scheduler) BuildConflicts() int {
	s.buildConflicts(s.logger)
	return s.index.Pairs()
}

func (s *scheduler) buildConflicts(logger *zap.Logger) {
	sets := lo.Map(s.sections, func(ref sectionRef, _ int) interval.Set { return ref.set })
	s.index = buildConflictIndex(sets)
	s.state = stateConflictsBuilt

	pairs := s.index.Pairs()
	s.metrics.RecordConflictIndex(pairs)
	logger.Debug("conflict index built", zap.Int("sections", s.index.Len()), zap.Int("conflict_pairs", pairs))
}

// Orders events by weight (descending), breaking ties by registration order
func compareRank(event1, event2 *registeredEvent) int {
	if event1.weight > event2.weight {
		return -1
	} else if event1.weight < event2.weight {
		return 1
	}
	return cmp.Compare(event1.sequence, event2.sequence)
}

func (s *scheduler) priorityOrder() []*registeredEvent {
	if s.maxEvents > 0 && uint(len(s.order)) > s.maxEvents {
		top := topk.New(int(s.maxEvents), func(event1, event2 *registeredEvent) bool {
			return compareRank(event1, event2) > 0
		})
		for _, event := range s.order {
			top.Push(event)
		}
		return top.Sorted()
	}

	ordered := slices.Clone(s.order)
	slices.SortFunc(ordered, compareRank)
	return ordered
}

func (s *scheduler) search(mode string, newFrontier func() frontier) ([]Pick, float64) {
	start := time.Now()
	logger := s.logger.With(zap.String("run_id", uuid.NewString()), zap.String("mode", mode))

	//** Build conflicts
	s.buildConflicts(logger)
	events := s.priorityOrder()
	s.state = stateSearching

	//** Extend the frontier one event at a time
	var created uint64
	current := newFrontier()
	current.push(candidate{picks: cow.New[SectionId](), order: created})
	generated, discarded, peak := 1, 0, 1

	for _, event := range events {
		candidates := current.all()
		// Materialize the picks queued last round; only candidates that survived pay for it
		for i := range candidates {
			candidates[i].picks.Commit()
		}
		viable := s.viableSections(candidates, event)

		next := newFrontier()
		for i, parent := range candidates {
			next.push(parent) // Skipping the event is always an option
			for _, section := range viable[i] {
				created++
				child := candidate{
					weight: parent.weight + event.weight,
					picks:  parent.picks.Clone(),
					order:  created,
				}
				child.picks.Queue(section)
				next.push(child)
				generated++
			}
		}

		discarded += next.discarded()
		peak = max(peak, next.len())
		current = next

		logger.Debug("event processed",
			zap.Uint64("event_id", event.id),
			zap.Int("candidates", len(candidates)),
			zap.Int("frontier", next.len()),
		)
	}

	//** Select the best candidate (first found wins ties)
	best := lo.MaxBy(current.all(), func(a, b candidate) bool { return a.weight > b.weight })
	best.picks.Commit()

	schedule := lo.Map(best.picks.AsSlice(), func(section SectionId, _ int) Pick {
		ref := s.sections[section]
		return Pick{EventId: ref.eventId, Section: ref.index}
	})
	s.state = stateDone

	duration := time.Since(start)
	s.metrics.RecordSearch(metrics.SearchStats{
		Mode:         mode,
		Generated:    generated,
		Discarded:    discarded,
		PeakFrontier: peak,
		Weight:       best.weight,
		Duration:     duration,
	})
	logger.Info("schedule built",
		zap.Int("events", len(events)),
		zap.Int("sections", s.index.Len()),
		zap.Int("picks", len(schedule)),
		zap.Float64("weight", best.weight),
		zap.Int("peak_frontier", peak),
		zap.Int("generated", generated),
		zap.Int("discarded", discarded),
		zap.Duration("duration", duration),
	)

	return schedule, best.weight
}

// Returns, for every candidate, the sections of event that do not conflict with any of its picks. The conflict index and
// the committed picks are only read here, so candidates can be checked concurrently.
func (s *scheduler) viableSections(candidates []candidate, event *registeredEvent) [][]SectionId {
	viable := make([][]SectionId, len(candidates))
	check := func(i int) {
		picks := candidates[i].picks.AsSlice()
		for local := range event.sections {
			section := event.offset + SectionId(local)
			if !s.index.SectionConflictsWithSchedule(picks, section) {
				viable[i] = append(viable[i], section)
			}
		}
	}

	if s.parallelism < 2 || len(candidates) < 2 {
		for i := range candidates {
			check(i)
		}
		return viable
	}

	var group errgroup.Group
	group.SetLimit(s.parallelism)
	for i := range candidates {
		group.Go(func() error {
			check(i)
			return nil
		})
	}
	_ = group.Wait() // Workers never fail; an index violation panics instead

	return viable
}

func (s *scheduler) Verify(schedule []Pick) bool {
	picked := make(map[uint64]bool)
	chosen := make([]interval.Set, 0, len(schedule))

	for _, pick := range schedule {
		event, ok := s.events[pick.EventId]
		// Check that:
		// - The event is registered
		// - The section exists among the kept sections
		// - The event is picked only once
		if !ok || pick.Section >= uint64(len(event.sections)) || picked[pick.EventId] {
			return false
		}

		set := event.sections[pick.Section]
		if lo.SomeBy(chosen, func(other interval.Set) bool { return interval.Intersects(set, other) }) {
			return false
		}

		picked[pick.EventId] = true
		chosen = append(chosen, set)
	}

	return true
}

func (s *scheduler) Weight(schedule []Pick) float64 {
	return lo.SumBy(schedule, func(pick Pick) float64 {
		if event, ok := s.events[pick.EventId]; ok {
			return event.weight
		}
		return 0
	})
}

func (s *scheduler) Display(w io.Writer) error {
	var builder strings.Builder
	for _, event := range s.order {
		fmt.Fprintf(&builder, "Event id %v (weight %v):\n", event.id, event.weight)
		for local, set := range event.sections {
			fmt.Fprintf(&builder, "\tSection %v:\n", local)
			fmt.Fprintf(&builder, "\t\tTimes: %v\n", set)

			if s.index == nil {
				continue
			}
			section := event.offset + SectionId(local)
			conflicts := lo.FilterMap(s.index.ConflictsOf(section), func(other SectionId, _ int) (string, bool) {
				ref := s.sections[other]
				return fmt.Sprintf("Event %v Section %v", ref.eventId, ref.index), other != section
			})
			fmt.Fprintf(&builder, "\t\tConflicts: %v\n", strings.Join(conflicts, ", "))
		}
	}

	_, err := io.WriteString(w, builder.String())
	return err
}
