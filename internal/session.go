package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// PageFetcher retrieves the next page of history for a direction
type PageFetcher interface {
	Fetch(ctx context.Context, dir Direction, cursors Cursors) (Page, Cursors, error)
}

// BatchReviewer stages operator decisions for one page
type BatchReviewer interface {
	ClassifyBatch(ctx context.Context, messages []Message, ds *Dataset) (Batch, error)
}

// DatasetWriter persists a finished dataset
type DatasetWriter interface {
	Write(ds *Dataset) (string, error)
}

// SessionState is a step of the curation loop
type SessionState int

const (
	StateFetching SessionState = iota
	StateReviewing
	StateMerging
	StateContinue
	StateDone
)

func (s SessionState) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateReviewing:
		return "reviewing"
	case StateMerging:
		return "merging"
	case StateContinue:
		return "continue"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SessionSummary reports what a finished session did
type SessionSummary struct {
	Batches    int
	Rejected   int
	Added      int
	Updated    int
	Total      int
	Cursors    Cursors
	BackupPath string
}

// CurationSession runs fetch, review and merge cycles over one dataset until
// history is exhausted or the operator stops. The dataset is written exactly
// once, when the session reaches StateDone; any earlier error leaves the data
// file untouched.
type CurationSession struct {
	fetcher  PageFetcher
	reviewer BatchReviewer
	store    DatasetWriter
	prompter Prompter
	dir      Direction
	out      io.Writer
	state    SessionState
}

// NewCurationSession wires a session from its components
func NewCurationSession(fetcher PageFetcher, reviewer BatchReviewer, store DatasetWriter, prompter Prompter, dir Direction, out io.Writer) *CurationSession {
	return &CurationSession{
		fetcher:  fetcher,
		reviewer: reviewer,
		store:    store,
		prompter: prompter,
		dir:      dir,
		out:      out,
		state:    StateFetching,
	}
}

// State returns the current step
func (s *CurationSession) State() SessionState {
	return s.state
}

// Run drives the session to completion over ds
func (s *CurationSession) Run(ctx context.Context, ds *Dataset) (SessionSummary, error) {
	var (
		summary SessionSummary
		page    Page
		batch   Batch
	)
	s.state = StateFetching

	for {
		switch s.state {
		case StateFetching:
			_, _ = fmt.Fprintln(s.out, Rule(""))
			next, proposed, err := s.fetcher.Fetch(ctx, s.dir, ds.Cursors)
			if err != nil {
				return summary, err
			}
			if next.Empty() {
				_, _ = fmt.Fprintf(s.out, "No new messages found %s, exiting\n", ds.Cursors.Label(s.dir))
				s.state = StateDone
				continue
			}
			page = next
			_, _ = fmt.Fprintf(s.out, "Retrieved new batch of %d message(s) (%s)\n", len(page.Messages), proposed.Label(s.dir))
			s.state = StateReviewing

		case StateReviewing:
			reviewed, err := s.reviewer.ClassifyBatch(ctx, page.Messages, ds)
			if errors.Is(err, ErrBatchRejected) {
				PrintWarning(fmt.Sprintf("Discarding batch %s: %v", ds.Cursors.Label(s.dir), err))
				summary.Rejected++
				s.state = StateContinue
				continue
			}
			if err != nil {
				return summary, err
			}
			batch = reviewed
			s.state = StateMerging

		case StateMerging:
			ds.Merge(batch)
			ds.Cursors = ds.Cursors.Advance(s.dir, page)
			summary.Batches++
			summary.Added += len(batch.Added)
			summary.Updated += len(batch.Updated)
			LogDebug("Merged batch: added=%d updated=%d cursors=%+v", len(batch.Added), len(batch.Updated), ds.Cursors)
			s.state = StateContinue

		case StateContinue:
			more, err := s.prompter.Confirm(ctx,
				fmt.Sprintf("%d total messages classified, continue to the next batch of messages?", ds.Len()),
				true)
			if err != nil {
				return summary, err
			}
			if more {
				s.state = StateFetching
			} else {
				s.state = StateDone
			}

		case StateDone:
			backup, err := s.store.Write(ds)
			if err != nil {
				LogError("Failed to save %d classified message(s): %v", ds.Len(), err)
				return summary, err
			}
			summary.Total = ds.Len()
			summary.Cursors = ds.Cursors
			summary.BackupPath = backup
			return summary, nil
		}
	}
}
