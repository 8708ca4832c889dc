package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// maxBackupCollisions bounds the counter appended to same-second backups
const maxBackupCollisions = 1000

var backupSuffix = regexp.MustCompile(`^(\d+)(?:\.(\d+))?$`)

// datasetFile is the on-disk layout of the dataset
type datasetFile struct {
	Data           map[string]Entry `json:"data"`
	StartTimestamp *string          `json:"start_timestamp"`
	EndTimestamp   *string          `json:"end_timestamp"`
}

// DatasetStore persists a dataset as a single JSON file plus an append-only
// trail of timestamped backups next to it.
type DatasetStore struct {
	path string
	now  func() time.Time
}

// NewDatasetStore creates a store for the data file at path
func NewDatasetStore(path string) *DatasetStore {
	return &DatasetStore{path: path, now: time.Now}
}

// Path returns the canonical data file path
func (s *DatasetStore) Path() string {
	return s.path
}

// Load reads the data file. A missing file yields an empty dataset. An
// existing file is refused when allowAppend is false, and an unparsable or
// empty file is refused always.
func (s *DatasetStore) Load(allowAppend bool) (*Dataset, error) {
	LogInfo("Using data file at %s", s.path)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDataset(), nil
		}
		return nil, &StorageError{Path: s.path, Op: "read", Err: err}
	}

	if !allowAppend {
		return nil, &IntegrityError{
			Path: s.path,
			Err:  fmt.Errorf("%w, please specify another data file", ErrDatasetExists),
		}
	}

	ds, err := decodeDataset(raw)
	if err != nil {
		return nil, &IntegrityError{Path: s.path, Err: err}
	}
	LogInfo("Found %d total entries stored in the data file", ds.Len())
	return ds, nil
}

func decodeDataset(raw []byte) (*Dataset, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	if len(top) == 0 {
		return nil, fmt.Errorf("%w: file is empty, please check the file", ErrMalformedDataset)
	}

	var file datasetFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}

	ds := NewDataset()
	for id, entry := range file.Data {
		ds.Entries[id] = entry
	}
	if file.StartTimestamp != nil {
		ds.Cursors.Start = *file.StartTimestamp
	}
	if file.EndTimestamp != nil {
		ds.Cursors.End = *file.EndTimestamp
	}
	return ds, nil
}

func encodeDataset(ds *Dataset) ([]byte, error) {
	file := datasetFile{Data: ds.Entries}
	if file.Data == nil {
		file.Data = map[string]Entry{}
	}
	if ds.Cursors.Start != "" {
		start := ds.Cursors.Start
		file.StartTimestamp = &start
	}
	if ds.Cursors.End != "" {
		end := ds.Cursors.End
		file.EndTimestamp = &end
	}
	return json.MarshalIndent(file, "", "  ")
}

// CheckWritable verifies that the data file's directory exists or can be
// created and accepts new files. Sessions call it before any network work so
// an unusable output path fails fast.
func (s *DatasetStore) CheckWritable() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &ConfigError{Field: "data_file", Err: fmt.Errorf("output directory %s is unusable: %w", dir, err)}
	}
	check, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".check-*")
	if err != nil {
		return &ConfigError{Field: "data_file", Err: fmt.Errorf("output directory %s is not writable: %w", dir, err)}
	}
	_ = check.Close()
	_ = os.Remove(check.Name())
	return nil
}

// Write replaces the data file atomically and then copies it to a new
// backup named after the current unix time. It returns the backup path.
func (s *DatasetStore) Write(ds *Dataset) (string, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &StorageError{Path: dir, Op: "mkdir", Err: err}
	}

	data, err := encodeDataset(ds)
	if err != nil {
		return "", &StorageError{Path: s.path, Op: "encode", Err: err}
	}

	if err := s.writeAtomic(dir, data); err != nil {
		return "", err
	}
	LogInfo("Successfully wrote data to %s", s.path)

	backup, err := s.backup()
	if err != nil {
		return "", err
	}
	LogDebug("Wrote backup %s", backup)
	return backup, nil
}

func (s *DatasetStore) writeAtomic(dir string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &StorageError{Path: s.path, Op: "write", Err: err}
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return &StorageError{Path: tmpPath, Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return &StorageError{Path: tmpPath, Op: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &StorageError{Path: tmpPath, Op: "close", Err: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		cleanup()
		return &StorageError{Path: tmpPath, Op: "chmod", Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		cleanup()
		return &StorageError{Path: s.path, Op: "rename", Err: err}
	}
	return nil
}

// backup copies the data file to <path>.<unix seconds>. Existing backups are
// never overwritten; a same-second collision gets a .N counter.
func (s *DatasetStore) backup() (string, error) {
	src, err := os.Open(s.path)
	if err != nil {
		return "", &StorageError{Path: s.path, Op: "backup", Err: err}
	}
	defer func() { _ = src.Close() }()

	base := s.path + "." + strconv.FormatInt(s.now().Unix(), 10)
	for n := 0; n < maxBackupCollisions; n++ {
		name := base
		if n > 0 {
			name = fmt.Sprintf("%s.%d", base, n)
		}

		dst, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", &StorageError{Path: name, Op: "backup", Err: err}
		}

		if _, err := io.Copy(dst, src); err != nil {
			_ = dst.Close()
			return "", &StorageError{Path: name, Op: "backup", Err: err}
		}
		if err := dst.Close(); err != nil {
			return "", &StorageError{Path: name, Op: "backup", Err: err}
		}
		return name, nil
	}
	return "", &StorageError{Path: base, Op: "backup", Err: errors.New("too many backups for the same second")}
}

// Backups lists the backup files of the data file, oldest first. Same-second
// backups are ordered by their counter.
func (s *DatasetStore) Backups() ([]string, error) {
	entries, err := os.ReadDir(filepath.Dir(s.path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &StorageError{Path: filepath.Dir(s.path), Op: "list", Err: err}
	}

	type backupName struct {
		suffix  string
		seconds int64
		counter int64
	}
	prefix := filepath.Base(s.path) + "."
	var found []backupName
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		m := backupSuffix.FindStringSubmatch(name[len(prefix):])
		if m == nil {
			continue
		}
		b := backupName{suffix: m[0]}
		b.seconds, _ = strconv.ParseInt(m[1], 10, 64)
		if m[2] != "" {
			b.counter, _ = strconv.ParseInt(m[2], 10, 64)
		}
		found = append(found, b)
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].seconds != found[j].seconds {
			return found[i].seconds < found[j].seconds
		}
		return found[i].counter < found[j].counter
	})

	backups := make([]string, 0, len(found))
	for _, b := range found {
		backups = append(backups, s.path+"."+b.suffix)
	}
	return backups, nil
}
