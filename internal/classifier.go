package internal

import (
	"context"
	"fmt"
	"io"
	"sort"
)

// BatchClassifier walks the operator through one page of messages and
// stages the resulting additions and updates. Nothing touches the dataset
// until the session merges the returned Batch.
type BatchClassifier struct {
	prompter  Prompter
	registry  *LabelRegistry
	ignored   map[string]struct{}
	maxPasses int
	out       io.Writer
}

// NewBatchClassifier creates a classifier. maxPasses bounds how many times a
// rejected batch is restarted.
func NewBatchClassifier(prompter Prompter, registry *LabelRegistry, ignored map[string]struct{}, maxPasses int, out io.Writer) *BatchClassifier {
	if maxPasses <= 0 {
		maxPasses = 1
	}
	if ignored == nil {
		ignored = make(map[string]struct{})
	}
	return &BatchClassifier{
		prompter:  prompter,
		registry:  registry,
		ignored:   ignored,
		maxPasses: maxPasses,
		out:       out,
	}
}

// ClassifyBatch reviews messages against ds. If the operator rejects the
// summary, all staging is dropped and review restarts from the first message.
// After maxPasses rejections ErrBatchRejected is returned.
func (c *BatchClassifier) ClassifyBatch(ctx context.Context, messages []Message, ds *Dataset) (Batch, error) {
	for pass := 1; pass <= c.maxPasses; pass++ {
		if pass > 1 {
			_, _ = fmt.Fprintln(c.out, MutedStyle.Render(fmt.Sprintf("Restarting batch review (pass %d/%d)", pass, c.maxPasses)))
		}

		batch, err := c.review(ctx, messages, ds)
		if err != nil {
			return Batch{}, err
		}

		c.printSummary(batch)
		ok, err := c.prompter.Confirm(ctx, "Are the above entries correct?", true)
		if err != nil {
			return Batch{}, err
		}
		if ok {
			return batch, nil
		}
		LogInfo("Batch rejected by operator (pass %d/%d)", pass, c.maxPasses)
	}
	return Batch{}, fmt.Errorf("%w after %d review pass(es)", ErrBatchRejected, c.maxPasses)
}

func (c *BatchClassifier) review(ctx context.Context, messages []Message, ds *Dataset) (Batch, error) {
	batch := newBatch()
	total := len(messages)

	for i, msg := range messages {
		display := msg.Text
		if display == "" {
			display = "<NO TEXT>"
		}
		_, _ = fmt.Fprintf(c.out, "%s %s\n", MutedStyle.Render(fmt.Sprintf("%d/%d", i+1, total)), display)

		if msg.Text == "" || msg.Attachments > 0 {
			_, _ = fmt.Fprintln(c.out, MutedStyle.Render("Message has no text or attachments, skipping"))
			continue
		}
		if _, ok := c.ignored[msg.User]; ok {
			_, _ = fmt.Fprintln(c.out, MutedStyle.Render(fmt.Sprintf("Message is from an ignored user ID (%s), skipping", msg.User)))
			continue
		}

		id := msg.ID()
		existing, exists := ds.Entries[id]
		if exists {
			// Work on a copy so a rejected batch leaves the dataset untouched
			entry := existing
			note := ""
			if msg.Text != entry.Text {
				entry.Text = msg.Text
				note = " (text has been modified)"
			}

			change, err := c.prompter.Confirm(ctx,
				fmt.Sprintf("There is already an existing classification for this message%s, do you want to change it from %s?", note, existing.Label),
				false)
			if err != nil {
				return Batch{}, err
			}
			if !change {
				continue
			}

			label, err := c.registry.Choose(ctx, c.prompter)
			if err != nil {
				return Batch{}, err
			}
			entry.Label = label
			batch.Updated[id] = entry
			continue
		}

		label, err := c.registry.Choose(ctx, c.prompter)
		if err != nil {
			return Batch{}, err
		}
		batch.Added[id] = Entry{Text: msg.Text, Label: label}
	}

	return batch, nil
}

func (c *BatchClassifier) printSummary(batch Batch) {
	_, _ = fmt.Fprintln(c.out, Rule("Summary"))
	if len(batch.Updated) > 0 {
		_, _ = fmt.Fprintf(c.out, "Updated %d existing classification(s):\n", len(batch.Updated))
		c.printEntries(batch.Updated)
	}
	if len(batch.Added) > 0 {
		_, _ = fmt.Fprintf(c.out, "Added %d new classification(s):\n", len(batch.Added))
		c.printEntries(batch.Added)
	} else {
		_, _ = fmt.Fprintln(c.out, "No new classification entries added")
	}
}

func (c *BatchClassifier) printEntries(entries map[string]Entry) {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		entry := entries[id]
		_, _ = fmt.Fprintf(c.out, "Text: %s\n", entry.Text)
		_, _ = fmt.Fprintf(c.out, "Label: %s\n", LabelStyle.Render(entry.Label))
	}
}
