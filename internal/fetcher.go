package internal

import (
	"context"
	"fmt"
	"slices"
)

// HistoryFetcher retrieves pages of channel history in one direction.
// Transport failures are surfaced to the operator as a bounded retry prompt.
type HistoryFetcher struct {
	client      HistoryClient
	prompter    Prompter
	channelID   string
	pageSize    int
	maxAttempts int
}

// NewHistoryFetcher creates a fetcher for a resolved channel
func NewHistoryFetcher(client HistoryClient, prompter Prompter, channelID string, pageSize, maxAttempts int) *HistoryFetcher {
	if pageSize <= 0 {
		pageSize = DefaultBatchSize
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &HistoryFetcher{
		client:      client,
		prompter:    prompter,
		channelID:   channelID,
		pageSize:    pageSize,
		maxAttempts: maxAttempts,
	}
}

// Fetch retrieves the next page past the cursor for dir and returns the page
// with the cursors it would advance to. Older pages keep Slack's newest-first
// order; newer pages are reversed into chronological order.
//
// A declined retry yields an empty page and unchanged cursors with a nil error.
// Errors are only returned when the prompt itself fails.
func (f *HistoryFetcher) Fetch(ctx context.Context, dir Direction, cursors Cursors) (Page, Cursors, error) {
	bound := HistoryBound{}
	if dir == DirectionOlder {
		bound.Latest = cursors.Start
	} else {
		bound.Oldest = cursors.End
	}

	for attempt := 1; ; attempt++ {
		messages, err := f.client.History(ctx, f.channelID, f.pageSize, bound)
		if err == nil {
			if dir == DirectionNewer {
				slices.Reverse(messages)
			}
			page := NewPage(messages)
			LogDebug("Fetched %d message(s) %s (oldest=%s newest=%s)", len(messages), cursors.Label(dir), page.Oldest, page.Newest)
			return page, cursors.Advance(dir, page), nil
		}
		if ctx.Err() != nil {
			return Page{}, cursors, ctx.Err()
		}

		LogWarn("Fetching messages failed (attempt %d/%d): %v", attempt, f.maxAttempts, err)
		if attempt >= f.maxAttempts {
			PrintWarning(fmt.Sprintf("Giving up after %d failed attempt(s), treating as no more messages", attempt))
			return Page{}, cursors, nil
		}

		retry, promptErr := f.prompter.Confirm(ctx,
			fmt.Sprintf("Encountered error while retrieving messages (%v), retry? (attempt %d/%d)", err, attempt, f.maxAttempts),
			true)
		if promptErr != nil {
			return Page{}, cursors, promptErr
		}
		if !retry {
			return Page{}, cursors, nil
		}
	}
}
