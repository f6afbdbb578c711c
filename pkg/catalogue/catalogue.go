// Package catalogue loads course listings and turns them into schedulable events.
package catalogue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/interval"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/model"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/topk"
	"github.com/mitchellh/mapstructure"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

var (
	ErrMalformedCatalogue = errors.New("catalogue: malformed catalogue")
	ErrUnknownEntry       = errors.New("catalogue: unknown entry")
)

type rawEntry struct {
	Id    uint64
	Name  string
	Times [][][]float64 // times[section][interval] = [start, end]
}

// Entry is one listing: an identifier, a display name and the meeting times of each section
type Entry struct {
	Id       uint64
	Name     string
	Sections [][]interval.Interval
}

// Event converts the entry into a schedulable event with the given weight
func (entry Entry) Event(weight float64) model.Event {
	return model.Event{
		Id:     entry.Id,
		Weight: weight,
		Sections: lo.Map(entry.Sections, func(section []interval.Interval, _ int) []interval.Interval {
			return slices.Clone(section)
		}),
	}
}

type Catalogue struct {
	entries map[uint64]Entry
	ids     []uint64 // Ascending
}

func Load(file string) (*Catalogue, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalogue: %v", err)
	}
	return Parse(bytes)
}

// Parse decodes a JSON array of {"id", "name", "times"} objects. A repeated id replaces the earlier entry.
func Parse(bytes []byte) (*Catalogue, error) {
	var inputJson []any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCatalogue, err)
	}

	var rawEntries []rawEntry
	if err := mapstructure.Decode(inputJson, &rawEntries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCatalogue, err)
	}

	catalogue := &Catalogue{entries: make(map[uint64]Entry, len(rawEntries))}
	for position, raw := range rawEntries {
		entry, err := processRawEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %v (id %v): %v", ErrMalformedCatalogue, position, raw.Id, err)
		}
		catalogue.entries[entry.Id] = entry
	}
	catalogue.ids = lo.Keys(catalogue.entries)
	slices.Sort(catalogue.ids)

	return catalogue, nil
}

func processRawEntry(raw rawEntry) (Entry, error) {
	sections := make([][]interval.Interval, len(raw.Times))
	for k, times := range raw.Times {
		sections[k] = make([]interval.Interval, len(times))
		for a, pair := range times {
			if len(pair) != 2 {
				return Entry{}, fmt.Errorf("section %v interval %v has %v bounds", k, a, len(pair))
			}
			current := interval.Interval{Start: pair[0], End: pair[1]}
			if !current.Valid() {
				return Entry{}, fmt.Errorf("section %v interval %v ends before it starts: [%v, %v]", k, a, pair[0], pair[1])
			}
			sections[k][a] = current
		}
	}
	return Entry{Id: raw.Id, Name: raw.Name, Sections: sections}, nil
}

func (catalogue *Catalogue) Len() int {
	return len(catalogue.entries)
}

func (catalogue *Catalogue) Ids() []uint64 {
	return slices.Clone(catalogue.ids)
}

func (catalogue *Catalogue) Get(id uint64) (Entry, error) {
	entry, ok := catalogue.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %v", ErrUnknownEntry, id)
	}
	return entry, nil
}

type Match struct {
	Entry
	Score int
}

// fuzzy.Source over the entries in id order
type nameSource []Entry

func (source nameSource) String(i int) string { return source[i].Name }
func (source nameSource) Len() int            { return len(source) }

// Search ranks entries by how well their names match the whitespace-separated terms of query. Each term is matched
// independently and an entry scores the sum over the terms it matches. At most limit matches are returned, best first,
// ties going to the lower id.
func (catalogue *Catalogue) Search(query string, limit int) []Match {
	terms := strings.Fields(query)
	if len(terms) == 0 || limit < 1 {
		return []Match{}
	}

	source := nameSource(lo.Map(catalogue.ids, func(id uint64, _ int) Entry { return catalogue.entries[id] }))
	scores := make(map[int]int)
	for _, term := range terms {
		for _, match := range fuzzy.FindFrom(term, source) {
			scores[match.Index] += match.Score
		}
	}

	// Positions follow ascending ids, so the lower position wins a tie
	best := topk.New(limit, func(a, b int) bool {
		if scores[a] != scores[b] {
			return scores[a] < scores[b]
		}
		return a > b
	})
	for position := range scores {
		best.Push(position)
	}

	return lo.Map(best.Sorted(), func(position int, _ int) Match {
		return Match{Entry: source[position], Score: scores[position]}
	})
}

func (entry Entry) String() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Entry with id %v\n", entry.Id)
	fmt.Fprintf(&builder, "  Name is %q\n", entry.Name)
	for k, section := range entry.Sections {
		fmt.Fprintf(&builder, "  Section %v: %v\n", k, interval.NewSet(section...))
	}
	return builder.String()
}
