package catalogue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/interval"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const courses = `[
	{"id": 30, "name": "Linear Algebra", "times": [[[0, 1], [48, 49]], [[2, 3]]]},
	{"id": 10, "name": "Algorithms", "times": [[[1, 2.5]], [[5, 6.5]], [[9, 10.5]]]},
	{"id": 20, "name": "Data Structures", "times": [[[0, 1.5]]]},
	{"id": 40, "name": "Computer Architecture", "times": []}
]`

func TestParse(t *testing.T) {
	t.Run("Decodes every entry", func(t *testing.T) {
		//** Act
		catalogue, err := Parse([]byte(courses))

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, 4, catalogue.Len())
		assert.Equal(t, []uint64{10, 20, 30, 40}, catalogue.Ids())

		entry, err := catalogue.Get(30)
		require.NoError(t, err)
		assert.Equal(t, "Linear Algebra", entry.Name)
		assert.Equal(t, [][]interval.Interval{
			{{Start: 0, End: 1}, {Start: 48, End: 49}},
			{{Start: 2, End: 3}},
		}, entry.Sections)
	})

	t.Run("A repeated id replaces the earlier entry", func(t *testing.T) {
		//** Act
		catalogue, err := Parse([]byte(`[{"id": 1, "name": "Old", "times": []}, {"id": 1, "name": "New", "times": []}]`))

		//** Assert
		require.NoError(t, err)
		entry, err := catalogue.Get(1)
		require.NoError(t, err)
		assert.Equal(t, "New", entry.Name)
		assert.Equal(t, 1, catalogue.Len())
	})

	malformed := []struct {
		name     string
		document string
	}{
		{"Not JSON", `[{"id": 1`},
		{"Not an array", `{"id": 1}`},
		{"Negative id", `[{"id": -1, "name": "A", "times": []}]`},
		{"Wrong times shape", `[{"id": 1, "name": "A", "times": "monday"}]`},
		{"Interval with three bounds", `[{"id": 1, "name": "A", "times": [[[0, 1, 2]]]}]`},
		{"Reversed interval", `[{"id": 1, "name": "A", "times": [[[3, 1]]]}]`},
		{"Empty interval", `[{"id": 1, "name": "A", "times": [[[3, 3]]]}]`},
	}
	for _, test := range malformed {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.document))
			assert.ErrorIs(t, err, ErrMalformedCatalogue)
		})
	}
}

func TestLoad(t *testing.T) {
	//** Arrange
	path := filepath.Join(t.TempDir(), "courses.json")
	require.NoError(t, os.WriteFile(path, []byte(courses), 0o644))

	//** Act
	catalogue, err := Load(path)
	_, missingErr := Load(filepath.Join(t.TempDir(), "missing.json"))

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, 4, catalogue.Len())
	assert.Error(t, missingErr)
}

func TestGet(t *testing.T) {
	catalogue, err := Parse([]byte(courses))
	require.NoError(t, err)

	_, err = catalogue.Get(99)
	assert.ErrorIs(t, err, ErrUnknownEntry)
}

func TestEntryEvent(t *testing.T) {
	//** Arrange
	catalogue, err := Parse([]byte(courses))
	require.NoError(t, err)
	entry, err := catalogue.Get(10)
	require.NoError(t, err)

	//** Act
	event := entry.Event(2.5)
	event.Sections[0][0].Start = 100

	//** Assert
	assert.Equal(t, uint64(10), event.Id)
	assert.Equal(t, 2.5, event.Weight)
	assert.Len(t, event.Sections, 3)
	assert.Equal(t, 1.0, entry.Sections[0][0].Start, "events do not alias catalogue storage")
}

func TestSearch(t *testing.T) {
	catalogue, err := Parse([]byte(courses))
	require.NoError(t, err)
	ids := func(matches []Match) []uint64 {
		return lo.Map(matches, func(match Match, _ int) uint64 { return match.Id })
	}

	t.Run("Finds names containing the term's characters in order", func(t *testing.T) {
		assert.Equal(t, []uint64{10}, ids(catalogue.Search("algo", 5)))
		assert.Equal(t, []uint64{20}, ids(catalogue.Search("struct", 5)))
	})

	t.Run("Is case insensitive", func(t *testing.T) {
		assert.Equal(t, []uint64{20}, ids(catalogue.Search("DATA", 5)))
	})

	t.Run("Respects the limit", func(t *testing.T) {
		assert.Len(t, catalogue.Search("a", 2), 2)
		assert.Len(t, catalogue.Search("a", 10), 4)
	})

	t.Run("Ranks entries matching more terms higher", func(t *testing.T) {
		matches := catalogue.Search("linear algebra", 5)
		require.NotEmpty(t, matches)
		assert.Equal(t, uint64(30), matches[0].Id)
	})

	t.Run("Empty queries match nothing", func(t *testing.T) {
		assert.Empty(t, catalogue.Search("   ", 5))
		assert.Empty(t, catalogue.Search("algo", 0))
		assert.Empty(t, catalogue.Search("zzz", 5))
	})
}
