package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{"older", DirectionOlder, false},
		{"", DirectionOlder, false},
		{"NEWER", DirectionNewer, false},
		{" newer ", DirectionNewer, false},
		{"sideways", DirectionOlder, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDirection(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "supported: older, newer")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessageID(t *testing.T) {
	msg := Message{Timestamp: "1.000100", User: "U7"}
	assert.Equal(t, "1.000100-U7", msg.ID())
	assert.Equal(t, "1.000100-", EntryID("1.000100", ""))
}

func TestCompareTimestamps(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"equal", "1700000000.000100", "1700000000.000100", 0},
		{"seconds differ", "999.9", "1000.0", -1},
		{"fraction differs", "1.000200", "1.000100", 1},
		{"padded fraction", "1.5", "1.500000", 0},
		{"shorter fraction smaller", "1.05", "1.5", -1},
		{"missing fraction", "2", "1.999999", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareTimestamps(tt.a, tt.b))
			assert.Equal(t, -tt.want, CompareTimestamps(tt.b, tt.a))
		})
	}
}

func TestNewPageExtremes(t *testing.T) {
	page := NewPage([]Message{
		{Timestamp: "10.000002"},
		{Timestamp: "9.999999"},
		{Timestamp: "10.000010"},
	})
	assert.Equal(t, "9.999999", page.Oldest)
	assert.Equal(t, "10.000010", page.Newest)
	assert.False(t, page.Empty())

	empty := NewPage(nil)
	assert.True(t, empty.Empty())
	assert.Empty(t, empty.Oldest)
	assert.Empty(t, empty.Newest)
}

func TestCursorsAdvance(t *testing.T) {
	page := Page{Oldest: "5.0", Newest: "8.0"}

	t.Run("older sets unset start", func(t *testing.T) {
		got := Cursors{}.Advance(DirectionOlder, page)
		assert.Equal(t, Cursors{Start: "5.0"}, got)
	})

	t.Run("older never moves inward", func(t *testing.T) {
		got := Cursors{Start: "3.0", End: "9.0"}.Advance(DirectionOlder, page)
		assert.Equal(t, Cursors{Start: "3.0", End: "9.0"}, got)
	})

	t.Run("newer widens end only", func(t *testing.T) {
		got := Cursors{Start: "6.0", End: "7.0"}.Advance(DirectionNewer, page)
		assert.Equal(t, Cursors{Start: "6.0", End: "8.0"}, got)
	})

	t.Run("empty page leaves cursors", func(t *testing.T) {
		c := Cursors{Start: "1.0", End: "2.0"}
		assert.Equal(t, c, c.Advance(DirectionNewer, Page{}))
		assert.Equal(t, c, c.Advance(DirectionOlder, Page{}))
	})
}

func TestCursorsLabel(t *testing.T) {
	c := Cursors{Start: "1.0"}
	assert.Equal(t, "before 1.0", c.Label(DirectionOlder))
	assert.Equal(t, "after <none>", c.Label(DirectionNewer))
}

func TestDatasetMerge(t *testing.T) {
	ds := CreateTestDataset()
	greeting := EntryID("1700000000.000100", "U1")

	batch := newBatch()
	batch.Added["9.0-U9"] = Entry{Text: "new", Label: "question"}
	batch.Updated[greeting] = Entry{Text: "hello there", Label: IgnoreLabel}
	ds.Merge(batch)

	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, IgnoreLabel, ds.Entries[greeting].Label)
	assert.Equal(t, Entry{Text: "new", Label: "question"}, ds.Entries["9.0-U9"])

	labels := ds.Labels()
	assert.Contains(t, labels, "question")
	assert.Contains(t, labels, "incident")
	assert.NotContains(t, labels, IgnoreLabel)
	assert.NotContains(t, labels, "greeting")

	counts := ds.LabelCounts()
	assert.Equal(t, 2, counts[IgnoreLabel])
}

func TestDatasetOverrideCursors(t *testing.T) {
	ds := CreateTestDataset()
	ds.OverrideCursors("", "1800000000.000000")
	assert.Equal(t, "1700000000.000100", ds.Cursors.Start)
	assert.Equal(t, "1800000000.000000", ds.Cursors.End)
}

func TestDatasetSortedIDs(t *testing.T) {
	ds := CreateTestDataset()
	ids := ds.SortedIDs()
	require.Len(t, ids, 3)
	assert.IsNonDecreasing(t, ids)
}

func TestDatasetMergeZeroValue(t *testing.T) {
	var ds Dataset
	batch := newBatch()
	batch.Added["1.0-U1"] = Entry{Text: "hi", Label: "greeting"}

	require.NotPanics(t, func() { ds.Merge(batch) })
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, "greeting", ds.Entries["1.0-U1"].Label)
}
