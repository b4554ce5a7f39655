package collections

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fruit struct {
	ID   any
	Name string
}

func byID(f fruit) (any, bool) { return f.ID, f.ID != nil }

func TestUniqueStrings(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   []string
	}{
		{name: "duplicates", values: []any{"apple", "banana", "apple"}, want: []string{"apple", "banana"}},
		{name: "numbers dropped", values: []any{1, 2, 1}, want: []string{}},
		{name: "mixed", values: []any{"apple", 1, "banana", 2, "apple"}, want: []string{"apple", "banana"}},
		{name: "nil dropped", values: []any{"apple", nil, "banana", nil}, want: []string{"apple", "banana"}},
		{name: "empty", values: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UniqueStrings(tt.values))
		})
	}
}

func TestUniqueBy(t *testing.T) {
	t.Run("first item kept, ordered by last occurrence", func(t *testing.T) {
		in := []fruit{{"1", "apple"}, {"2", "banana"}, {"1", "orange"}}
		assert.Equal(t, []fruit{{"2", "banana"}, {"1", "apple"}}, UniqueBy(in, byID))
	})

	t.Run("numeric keys", func(t *testing.T) {
		in := []fruit{{1, "apple"}, {2, "banana"}, {1, "orange"}}
		assert.Equal(t, []fruit{{2, "banana"}, {1, "apple"}}, UniqueBy(in, byID))
	})

	t.Run("all unique keeps order", func(t *testing.T) {
		in := []fruit{{"1", "a"}, {"2", "b"}, {"3", "c"}}
		assert.Equal(t, in, UniqueBy(in, byID))
	})

	t.Run("all same key", func(t *testing.T) {
		in := []fruit{{"1", "apple"}, {"1", "banana"}, {"1", "orange"}}
		assert.Equal(t, []fruit{{"1", "apple"}}, UniqueBy(in, byID))
	})

	t.Run("missing keys dropped", func(t *testing.T) {
		in := []fruit{{"1", "apple"}, {nil, "banana"}, {"1", "orange"}}
		assert.Equal(t, []fruit{{"1", "apple"}}, UniqueBy(in, byID))
	})

	t.Run("non scalar keys dropped", func(t *testing.T) {
		key := map[string]string{"key": "1"}
		in := []fruit{{key, "apple"}, {struct{ K string }{"2"}, "banana"}}
		assert.Empty(t, UniqueBy(in, byID))
	})
}

func TestGroupBy(t *testing.T) {
	type item struct {
		Category any
		Has      bool
		Value    string
	}
	key := func(i item) (any, bool) { return i.Category, i.Has }

	items := []item{
		{"A", true, "Apple"},
		{nil, true, "null category"},
		{nil, false, "no category"},
		{"A", true, "Artichoke"},
		{7, true, "seven"},
	}

	got := GroupBy(items, key)

	assert.Len(t, got, 4)
	assert.Equal(t, []item{items[0], items[3]}, got["A"])
	assert.Equal(t, []item{items[1]}, got["null"])
	assert.Equal(t, []item{items[2]}, got["undefined"])
	assert.Equal(t, []item{items[4]}, got["7"])
	assert.Empty(t, GroupBy([]item{}, key))
}
