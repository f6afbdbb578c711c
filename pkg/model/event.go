package model

import (
	"errors"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/interval"
)

var (
	// ErrDuplicateEvent is returned when an event id is registered twice; the first registration is kept.
	ErrDuplicateEvent = errors.New("model: event id is already registered")
	// ErrInvalidInterval is returned when a section holds an interval whose start is not before its end.
	ErrInvalidInterval = errors.New("model: interval start must be before its end")
	// ErrInvalidWeight is returned for NaN or infinite weights, which cannot be ranked.
	ErrInvalidWeight = errors.New("model: weight must be a finite number")
)

const (
	// Exclusion pseudo-events take ids from this value upward so they can never collide with catalogue ids
	ExclusionIdBase uint64 = 1 << 63
	// Lower bound for the weight of exclusions; callers raise it above the total weight of the real events
	DefaultExclusionWeight = 1e9
)

// Event is a schedulable item offering alternative sections, of which at most one is chosen
type Event struct {
	Id       uint64
	Weight   float64 // Larger is more preferred
	Sections [][]interval.Interval
}

// Pick identifies the section chosen for an event in a schedule
type Pick struct {
	EventId uint64
	Section uint64
}

// SectionId is a dense handle over all registered sections: the event's start offset plus the section's local index
type SectionId uint64

// NewExclusion models a hard time block as an ordinary event with a single section covering every blocked window.
// ordinal distinguishes several exclusions registered in the same scheduler.
func NewExclusion(ordinal uint64, weight float64, blocked ...interval.Interval) Event {
	return Event{
		Id:       ExclusionIdBase + ordinal,
		Weight:   weight,
		Sections: [][]interval.Interval{blocked},
	}
}

func IsExclusion(eventId uint64) bool {
	return eventId >= ExclusionIdBase
}

// registeredEvent is the engine's private copy of an Event
type registeredEvent struct {
	id       uint64
	weight   float64
	sequence int       // Registration order, used to break weight ties
	offset   SectionId // SectionId of the first section
	sections []interval.Set
}

// sectionRef resolves a SectionId back to caller-facing identifiers
type sectionRef struct {
	eventId uint64
	index   uint64
	set     interval.Set
}
