package internal

import (
	"context"
	"fmt"
	"strings"
)

// CreateTestDataset creates a dataset with a few classified entries
func CreateTestDataset() *Dataset {
	ds := NewDataset()
	ds.Entries[EntryID("1700000000.000100", "U1")] = Entry{Text: "hello there", Label: "greeting"}
	ds.Entries[EntryID("1700000000.000200", "U2")] = Entry{Text: "the build is broken", Label: "incident"}
	ds.Entries[EntryID("1700000000.000300", "U3")] = Entry{Text: "lunch?", Label: IgnoreLabel}
	ds.Cursors = Cursors{Start: "1700000000.000100", End: "1700000000.000300"}
	return ds
}

// CreateTestMessages creates n messages with increasing timestamps starting
// at base seconds, newest first as delivered by the history API
func CreateTestMessages(base int64, n int) []Message {
	messages := make([]Message, 0, n)
	for i := n - 1; i >= 0; i-- {
		messages = append(messages, Message{
			Timestamp: fmt.Sprintf("%d.%06d", base+int64(i), i),
			User:      fmt.Sprintf("U%d", i),
			Text:      fmt.Sprintf("message %d", i),
		})
	}
	return messages
}

// HistoryCall records one History request made to a FakeHistoryClient
type HistoryCall struct {
	ChannelID string
	Limit     int
	Bound     HistoryBound
}

// FakeHistoryClient is a scripted HistoryClient. History pops Pages and
// Errors in order; when both are exhausted it returns an empty page.
type FakeHistoryClient struct {
	Pages    [][]Message
	Errors   []error
	Channels [][]Channel
	ListErrs []error

	Calls     []HistoryCall
	ListCalls []string
}

// History implements HistoryClient
func (f *FakeHistoryClient) History(ctx context.Context, channelID string, limit int, bound HistoryBound) ([]Message, error) {
	f.Calls = append(f.Calls, HistoryCall{ChannelID: channelID, Limit: limit, Bound: bound})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(f.Errors) > 0 {
		err := f.Errors[0]
		f.Errors = f.Errors[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(f.Pages) == 0 {
		return nil, nil
	}
	page := f.Pages[0]
	f.Pages = f.Pages[1:]
	out := make([]Message, len(page))
	copy(out, page)
	return out, nil
}

// ListChannels implements HistoryClient. Each call returns the next scripted
// page; the cursor handed out is the index of the following page.
func (f *FakeHistoryClient) ListChannels(ctx context.Context, cursor string, _ int) ([]Channel, string, error) {
	f.ListCalls = append(f.ListCalls, cursor)
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if len(f.ListErrs) > 0 {
		err := f.ListErrs[0]
		f.ListErrs = f.ListErrs[1:]
		if err != nil {
			return nil, "", err
		}
	}
	index := 0
	if cursor != "" {
		_, _ = fmt.Sscanf(strings.TrimPrefix(cursor, "page-"), "%d", &index)
	}
	if index >= len(f.Channels) {
		return nil, "", nil
	}
	next := ""
	if index+1 < len(f.Channels) {
		next = fmt.Sprintf("page-%d", index+1)
	}
	return f.Channels[index], next, nil
}
