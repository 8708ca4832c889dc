package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/yuri/testutil"
)

func newTestStore(t *testing.T, now time.Time) *DatasetStore {
	t.Helper()
	store := NewDatasetStore(filepath.Join(t.TempDir(), "slack_channel_data", "data.json"))
	store.now = func() time.Time { return now }
	return store
}

func TestDatasetStoreLoadMissingFile(t *testing.T) {
	store := newTestStore(t, time.Unix(1000, 0))

	ds, err := store.Load(false)
	require.NoError(t, err)
	assert.Zero(t, ds.Len())
	assert.Equal(t, Cursors{}, ds.Cursors)
}

func TestDatasetStoreLoadExisting(t *testing.T) {
	dir := t.TempDir()
	path := testutil.CreateDataFileFixture(t, dir, map[string]testutil.DataFileEntry{
		"1.0-A": {Text: "hi", Label: "greeting"},
	}, "1.0", "")

	ds, err := NewDatasetStore(path).Load(true)
	require.NoError(t, err)
	assert.Equal(t, Entry{Text: "hi", Label: "greeting"}, ds.Entries["1.0-A"])
	assert.Equal(t, Cursors{Start: "1.0"}, ds.Cursors)
}

func TestDatasetStoreLoadRefusesWithoutAppend(t *testing.T) {
	path := testutil.CreateDataFileFixture(t, t.TempDir(), map[string]testutil.DataFileEntry{}, "", "")

	_, err := NewDatasetStore(path).Load(false)
	var integrityErr *IntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.ErrorIs(t, err, ErrDatasetExists)
}

func TestDatasetStoreLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{data"},
		{"empty object", "{}"},
		{"wrong shape", `{"data": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data.json")
			testutil.WriteFile(t, path, []byte(tt.content))

			_, err := NewDatasetStore(path).Load(true)
			assert.ErrorIs(t, err, ErrMalformedDataset)
		})
	}
}

func TestDatasetStoreWriteRoundTrip(t *testing.T) {
	store := newTestStore(t, time.Unix(1700000000, 0))
	ds := CreateTestDataset()

	backup, err := store.Write(ds)
	require.NoError(t, err)
	assert.Equal(t, store.Path()+".1700000000", backup)

	data, start, end := testutil.ReadDataFile(t, store.Path())
	assert.Len(t, data, 3)
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, ds.Cursors.Start, *start)
	assert.Equal(t, ds.Cursors.End, *end)

	loaded, err := store.Load(true)
	require.NoError(t, err)
	assert.Equal(t, ds.Entries, loaded.Entries)
	assert.Equal(t, ds.Cursors, loaded.Cursors)

	copied, err := os.ReadFile(backup)
	require.NoError(t, err)
	canonical, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, canonical, copied)
}

func TestDatasetStoreWriteNullCursors(t *testing.T) {
	store := newTestStore(t, time.Unix(1, 0))
	ds := NewDataset()
	ds.Entries["1.0-A"] = Entry{Text: "hi", Label: IgnoreLabel}

	_, err := store.Write(ds)
	require.NoError(t, err)

	_, start, end := testutil.ReadDataFile(t, store.Path())
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestDatasetStoreBackupsAppendOnly(t *testing.T) {
	store := newTestStore(t, time.Unix(1700000000, 0))
	ds := CreateTestDataset()

	first, err := store.Write(ds)
	require.NoError(t, err)
	firstContent, err := os.ReadFile(first)
	require.NoError(t, err)

	ds.Entries["9.0-Z"] = Entry{Text: "later", Label: "incident"}
	second, err := store.Write(ds)
	require.NoError(t, err)
	assert.Equal(t, first+".1", second, "same-second backups get a counter")

	store.now = func() time.Time { return time.Unix(1700000060, 0) }
	third, err := store.Write(ds)
	require.NoError(t, err)

	backups, err := store.Backups()
	require.NoError(t, err)
	assert.Len(t, backups, 3)
	assert.Contains(t, backups, third)

	unchanged, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, firstContent, unchanged)
}

func TestDatasetStoreWriteLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t, time.Unix(5, 0))
	_, err := store.Write(CreateTestDataset())
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp-")
	}
	assert.Len(t, entries, 2)
}

func TestDatasetStoreCheckWritable(t *testing.T) {
	dir := t.TempDir()
	store := NewDatasetStore(filepath.Join(dir, "slack_channel_data", "data.json"))
	require.NoError(t, store.CheckWritable())

	entries, err := os.ReadDir(filepath.Join(dir, "slack_channel_data"))
	require.NoError(t, err)
	assert.Empty(t, entries, "the check file is removed")

	blocker := filepath.Join(dir, "blocker")
	testutil.WriteFile(t, blocker, []byte("not a directory"))
	var cfgErr *ConfigError
	assert.ErrorAs(t, NewDatasetStore(filepath.Join(blocker, "data.json")).CheckWritable(), &cfgErr)
}

func TestDatasetStoreBackupsOrderedByTimeAndCounter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data[1]")
	store := NewDatasetStore(filepath.Join(dir, "data.json"))
	for _, name := range []string{
		"data.json",
		"data.json.1700000000.10",
		"data.json.1700000000.2",
		"data.json.1700000000",
		"data.json.999999999",
		"data.json.bak",
		".data.json.tmp-123",
		"other.json.1700000000",
	} {
		testutil.WriteFile(t, filepath.Join(dir, name), []byte("{}"))
	}

	backups, err := store.Backups()
	require.NoError(t, err)
	assert.Equal(t, []string{
		store.Path() + ".999999999",
		store.Path() + ".1700000000",
		store.Path() + ".1700000000.2",
		store.Path() + ".1700000000.10",
	}, backups)
}

func TestDatasetStoreBackupsMissingDirectory(t *testing.T) {
	backups, err := NewDatasetStore(filepath.Join(t.TempDir(), "missing", "data.json")).Backups()
	require.NoError(t, err)
	assert.Empty(t, backups)
}
