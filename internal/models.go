package internal

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// IgnoreLabel marks messages that are excluded from every other category
	IgnoreLabel = "ignore"
	// CreateLabelChoice is the label-menu sentinel for creating a new label
	CreateLabelChoice = "+add new"
	// DefaultBatchSize is the number of messages requested per page
	DefaultBatchSize = 10
)

// Direction selects which cursor a session advances
type Direction int

const (
	// DirectionOlder walks backward from the start cursor
	DirectionOlder Direction = iota
	// DirectionNewer walks forward from the end cursor
	DirectionNewer
)

// ParseDirection parses "older" or "newer"
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "older", "":
		return DirectionOlder, nil
	case "newer":
		return DirectionNewer, nil
	default:
		return DirectionOlder, fmt.Errorf("unsupported direction: %s (supported: older, newer)", s)
	}
}

func (d Direction) String() string {
	if d == DirectionNewer {
		return "newer"
	}
	return "older"
}

// Message is a single chat message retrieved from channel history
type Message struct {
	Timestamp   string `json:"ts"`
	User        string `json:"user"`
	Text        string `json:"text,omitempty"`
	Attachments int    `json:"attachments,omitempty"`
}

// ID returns the dataset key for the message
func (m Message) ID() string {
	return EntryID(m.Timestamp, m.User)
}

// EntryID derives the stable dataset key from a message timestamp and author
func EntryID(timestamp, user string) string {
	return timestamp + "-" + user
}

// Entry is a classified message as stored in the dataset
type Entry struct {
	Text  string `json:"text" yaml:"text"`
	Label string `json:"label" yaml:"label"`
}

// Cursors are the retrieval boundaries reached so far. Empty means unset.
type Cursors struct {
	Start string `json:"start_timestamp,omitempty" yaml:"start_timestamp,omitempty"`
	End   string `json:"end_timestamp,omitempty" yaml:"end_timestamp,omitempty"`
}

// Advance returns the cursors widened by the page extremes in the given
// direction. A cursor never moves inward and the opposite cursor is untouched.
func (c Cursors) Advance(dir Direction, page Page) Cursors {
	next := c
	switch dir {
	case DirectionOlder:
		if page.Oldest != "" && (next.Start == "" || CompareTimestamps(page.Oldest, next.Start) < 0) {
			next.Start = page.Oldest
		}
	case DirectionNewer:
		if page.Newest != "" && (next.End == "" || CompareTimestamps(page.Newest, next.End) > 0) {
			next.End = page.Newest
		}
	}
	return next
}

// Label returns a human readable description of the boundary being walked
func (c Cursors) Label(dir Direction) string {
	if dir == DirectionNewer {
		return "after " + orNone(c.End)
	}
	return "before " + orNone(c.Start)
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}

// Dataset is the in-memory classified dataset and its cursors
type Dataset struct {
	Entries map[string]Entry
	Cursors Cursors
}

// NewDataset creates an empty dataset
func NewDataset() *Dataset {
	return &Dataset{Entries: make(map[string]Entry)}
}

// OverrideCursors replaces the stored cursors with operator supplied values.
// Empty values keep the stored cursor. Only valid before a session starts.
func (d *Dataset) OverrideCursors(start, end string) {
	if start != "" {
		d.Cursors.Start = start
	}
	if end != "" {
		d.Cursors.End = end
	}
}

// Len returns the number of classified entries
func (d *Dataset) Len() int {
	return len(d.Entries)
}

// Labels returns every label in use except the ignore label
func (d *Dataset) Labels() map[string]struct{} {
	labels := make(map[string]struct{})
	for _, entry := range d.Entries {
		if entry.Label == "" || entry.Label == IgnoreLabel {
			continue
		}
		labels[entry.Label] = struct{}{}
	}
	return labels
}

// LabelCounts returns the number of entries per label, ignore included
func (d *Dataset) LabelCounts() map[string]int {
	counts := make(map[string]int)
	for _, entry := range d.Entries {
		counts[entry.Label]++
	}
	return counts
}

// SortedIDs returns entry ids in ascending order
func (d *Dataset) SortedIDs() []string {
	ids := make([]string, 0, len(d.Entries))
	for id := range d.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Merge applies added entries and then updated entries
func (d *Dataset) Merge(batch Batch) {
	if d.Entries == nil {
		d.Entries = make(map[string]Entry, len(batch.Added)+len(batch.Updated))
	}
	for id, entry := range batch.Added {
		d.Entries[id] = entry
	}
	for id, entry := range batch.Updated {
		d.Entries[id] = entry
	}
}

// Page is one page of history plus its timestamp extremes
type Page struct {
	Messages []Message
	Oldest   string
	Newest   string
}

// NewPage builds a page and computes its extremes
func NewPage(messages []Message) Page {
	page := Page{Messages: messages}
	for _, msg := range messages {
		if msg.Timestamp == "" {
			continue
		}
		if page.Oldest == "" || CompareTimestamps(msg.Timestamp, page.Oldest) < 0 {
			page.Oldest = msg.Timestamp
		}
		if page.Newest == "" || CompareTimestamps(msg.Timestamp, page.Newest) > 0 {
			page.Newest = msg.Timestamp
		}
	}
	return page
}

// Empty reports whether the page has no messages
func (p Page) Empty() bool {
	return len(p.Messages) == 0
}

// Batch holds the staged results of reviewing one page.
// Added and Updated never share a key.
type Batch struct {
	Added   map[string]Entry
	Updated map[string]Entry
}

func newBatch() Batch {
	return Batch{
		Added:   make(map[string]Entry),
		Updated: make(map[string]Entry),
	}
}

// Empty reports whether nothing was staged
func (b Batch) Empty() bool {
	return len(b.Added) == 0 && len(b.Updated) == 0
}

// CompareTimestamps compares two Slack style "<seconds>.<fraction>" timestamps
// numerically. It returns -1, 0 or 1.
func CompareTimestamps(a, b string) int {
	aSec, aFrac := splitTimestamp(a)
	bSec, bFrac := splitTimestamp(b)
	if aSec != bSec {
		if aSec < bSec {
			return -1
		}
		return 1
	}
	// Right-pad so "1.5" and "1.500000" compare equal
	width := len(aFrac)
	if len(bFrac) > width {
		width = len(bFrac)
	}
	aFrac += strings.Repeat("0", width-len(aFrac))
	bFrac += strings.Repeat("0", width-len(bFrac))
	return strings.Compare(aFrac, bFrac)
}

func splitTimestamp(ts string) (int64, string) {
	secPart, fracPart, _ := strings.Cut(strings.TrimSpace(ts), ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return 0, ""
	}
	return sec, fracPart
}
