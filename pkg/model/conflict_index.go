package model

import (
	"log"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/interval"
	"github.com/samber/lo"
)

// conflictIndex is a symmetric adjacency matrix over SectionIds: conflicts[i][j] = true if and only if the interval sets
// of sections i and j overlap. For completeness we assume that conflicts[i][i] = true for all i, which lets "already
// picked" and "overlaps a pick" be answered by the same lookup.
type conflictIndex struct {
	conflicts [][]bool
}

// Builds the index incrementally: every section is compared against all previously indexed sections and the result is
// stored in both directions. O(N²) interval tests over N sections.
func buildConflictIndex(sections []interval.Set) *conflictIndex {
	index := &conflictIndex{conflicts: make([][]bool, len(sections))}

	for i, section := range sections {
		index.conflicts[i] = make([]bool, len(sections))
		index.conflicts[i][i] = true

		for j := range i {
			if interval.Intersects(section, sections[j]) {
				index.conflicts[i][j] = true
				index.conflicts[j][i] = true
			}
		}
	}

	return index
}

func (index *conflictIndex) Len() int {
	return len(index.conflicts)
}

func (index *conflictIndex) check(section SectionId) {
	if uint64(section) >= uint64(len(index.conflicts)) {
		log.Panicf("section %v is not covered by the conflict index (%v sections)", section, len(index.conflicts))
	}
}

func (index *conflictIndex) Conflicts(section1, section2 SectionId) bool {
	index.check(section1)
	index.check(section2)
	return index.conflicts[section1][section2]
}

// Returns every section conflicting with section, itself included
func (index *conflictIndex) ConflictsOf(section SectionId) []SectionId {
	index.check(section)
	conflicting := make([]SectionId, 0)
	for other, conflict := range index.conflicts[section] {
		if conflict {
			conflicting = append(conflicting, SectionId(other))
		}
	}
	return conflicting
}

// Number of conflicting unordered pairs, diagonal excluded
func (index *conflictIndex) Pairs() int {
	pairs := 0
	for i, row := range index.conflicts {
		for j := i + 1; j < len(row); j++ {
			if row[j] {
				pairs++
			}
		}
	}
	return pairs
}

// Checks whether section conflicts with any section already picked
func (index *conflictIndex) SectionConflictsWithSchedule(picks []SectionId, section SectionId) bool {
	index.check(section)
	row := index.conflicts[section]
	return lo.SomeBy(picks, func(pick SectionId) bool {
		index.check(pick)
		return row[pick]
	})
}
