// Package session collects a user's course selections and exclusions and turns them into schedule reports.
package session

import (
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"strings"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/catalogue"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/config"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/interval"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/metrics"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	DefaultWeight = 1.0
	MaxWeight     = 1e15 // Keeps the summed selection weights exact enough to rank against exclusions
)

var ErrUnknownMode = errors.New("session: unknown search mode")

type Selection struct {
	Id     uint64
	Weight float64
}

type Session struct {
	catalogue *catalogue.Catalogue
	config    config.Config
	logger    *zap.Logger
	metrics   *metrics.Metrics

	selections []Selection // Selection order
	exclusions []interval.Interval
}

func New(catalogue *catalogue.Catalogue, config config.Config, logger *zap.Logger, metrics *metrics.Metrics) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		catalogue: catalogue,
		config:    config,
		logger:    logger,
		metrics:   metrics,
	}
}

// Select adds a catalogue entry with the given weight. Selecting an entry again only updates its weight.
func (session *Session) Select(id uint64, weight float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight > MaxWeight {
		return fmt.Errorf("%w: %v (at most %v)", model.ErrInvalidWeight, weight, MaxWeight)
	}
	if _, err := session.catalogue.Get(id); err != nil {
		return err
	}

	if position := slices.IndexFunc(session.selections, func(selection Selection) bool { return selection.Id == id }); position >= 0 {
		session.selections[position].Weight = weight
		return nil
	}
	session.selections = append(session.selections, Selection{Id: id, Weight: weight})
	return nil
}

func (session *Session) Deselect(id uint64) bool {
	before := len(session.selections)
	session.selections = slices.DeleteFunc(session.selections, func(selection Selection) bool { return selection.Id == id })
	return len(session.selections) != before
}

// Exclude blocks a time window: no scheduled section may overlap it
func (session *Session) Exclude(window interval.Interval) error {
	if !window.Valid() {
		return fmt.Errorf("%w: [%v, %v]", model.ErrInvalidInterval, window.Start, window.End)
	}
	session.exclusions = append(session.exclusions, window)
	return nil
}

func (session *Session) Selections() []Selection {
	return slices.Clone(session.selections)
}

func (session *Session) Exclusions() []interval.Interval {
	return slices.Clone(session.exclusions)
}

// Scheduler returns a fresh engine loaded with the selections and, if any window is blocked, a single exclusion event
// covering every blocked window
func (session *Session) Scheduler() (model.Scheduler, error) {
	options := append(session.config.SchedulerOptions(), model.WithLogger(session.logger), model.WithMetrics(session.metrics))
	scheduler := model.NewScheduler(options...)

	for _, selection := range session.selections {
		entry, err := session.catalogue.Get(selection.Id)
		if err != nil {
			return nil, err
		}
		if err := scheduler.AddEvent(entry.Event(selection.Weight)); err != nil {
			return nil, fmt.Errorf("cannot add entry %v: %w", selection.Id, err)
		}
	}

	if len(session.exclusions) > 0 {
		exclusion := model.NewExclusion(0, session.exclusionWeight(), session.exclusions...)
		if err := scheduler.AddEvent(exclusion); err != nil {
			return nil, fmt.Errorf("cannot add exclusion: %w", err)
		}
	}

	return scheduler, nil
}

// exclusionWeight outweighs every combination of selections, so a schedule that drops the exclusion never wins
func (session *Session) exclusionWeight() float64 {
	total := lo.SumBy(session.selections, func(selection Selection) float64 {
		return max(selection.Weight, 0)
	})
	return max(session.config.ExclusionWeight, 2*total+1)
}

type ScheduledEntry struct {
	Id      uint64       `json:"id"`
	Name    string       `json:"name"`
	Section uint64       `json:"section"`
	Weight  float64      `json:"weight"`
	Times   [][2]float64 `json:"times"`
}

type Report struct {
	Mode              string           `json:"mode"`
	Entries           []ScheduledEntry `json:"entries"`
	Weight            float64          `json:"weight"` // Exclusion weight not included
	Unscheduled       []uint64         `json:"unscheduled"`
	ExclusionsHonored bool             `json:"exclusions_honored"`
}

// Build searches for a schedule of the current selections. mode is "exact" or "approx"; a frontier of 0 uses the
// configured max_frontier.
func (session *Session) Build(mode string, frontier uint) (Report, error) {
	if frontier == 0 {
		frontier = session.config.MaxFrontier
	}

	scheduler, err := session.Scheduler()
	if err != nil {
		return Report{}, err
	}

	var schedule []model.Pick
	switch mode {
	case metrics.ModeExact:
		schedule, _ = scheduler.BuildOptimalSchedule()
	case metrics.ModeApprox:
		schedule, _ = scheduler.BuildApproxSchedule(frontier)
	default:
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	if !scheduler.Verify(schedule) {
		log.Panicf("search returned a conflicting schedule: %v", schedule)
	}

	return session.report(mode, schedule), nil
}

func (session *Session) report(mode string, schedule []model.Pick) Report {
	weights := lo.SliceToMap(session.selections, func(selection Selection) (uint64, float64) {
		return selection.Id, selection.Weight
	})

	report := Report{
		Mode:              mode,
		Entries:           []ScheduledEntry{},
		ExclusionsHonored: len(session.exclusions) == 0,
	}
	scheduled := make(map[uint64]bool)
	for _, pick := range schedule {
		if model.IsExclusion(pick.EventId) {
			report.ExclusionsHonored = true
			continue
		}

		// Selections were validated against the catalogue on Select
		entry, _ := session.catalogue.Get(pick.EventId)
		report.Entries = append(report.Entries, ScheduledEntry{
			Id:      entry.Id,
			Name:    entry.Name,
			Section: pick.Section,
			Weight:  weights[pick.EventId],
			Times: lo.Map(entry.Sections[pick.Section], func(current interval.Interval, _ int) [2]float64 {
				return [2]float64{current.Start, current.End}
			}),
		})
		report.Weight += weights[pick.EventId]
		scheduled[pick.EventId] = true
	}

	report.Unscheduled = lo.FilterMap(session.selections, func(selection Selection, _ int) (uint64, bool) {
		return selection.Id, !scheduled[selection.Id]
	})

	session.logger.Debug("report built",
		zap.String("mode", mode),
		zap.Int("scheduled", len(report.Entries)),
		zap.Int("unscheduled", len(report.Unscheduled)),
		zap.Bool("exclusions_honored", report.ExclusionsHonored),
	)
	return report
}

func (report Report) String() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Schedule (%v, weight %v):\n", report.Mode, report.Weight)
	for _, entry := range report.Entries {
		times := lo.Map(entry.Times, func(pair [2]float64, _ int) interval.Interval {
			return interval.Interval{Start: pair[0], End: pair[1]}
		})
		fmt.Fprintf(&builder, "  %v %v, section %v: %v\n", entry.Id, entry.Name, entry.Section, interval.NewSet(times...))
	}
	if len(report.Unscheduled) > 0 {
		fmt.Fprintf(&builder, "Unscheduled: %v\n", strings.Join(lo.Map(report.Unscheduled, func(id uint64, _ int) string {
			return fmt.Sprint(id)
		}), ", "))
	}
	if !report.ExclusionsHonored {
		builder.WriteString("Warning: blocked windows were not honored\n")
	}
	return builder.String()
}
