package internal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/yuri/testutil"
)

const existingPrompt = "There is already an existing classification for this message, do you want to change it from greeting?"

func newTestClassifier(t *testing.T, ds *Dataset, ignored map[string]struct{}, maxPasses int, answers ...testutil.Answer) (*BatchClassifier, *testutil.ScriptedPrompter, *bytes.Buffer) {
	t.Helper()
	p := testutil.NewScriptedPrompter(t, answers...)
	var out bytes.Buffer
	return NewBatchClassifier(p, NewLabelRegistry(ds), ignored, maxPasses, &out), p, &out
}

func TestClassifyBatchAddsNewEntry(t *testing.T) {
	ds := NewDataset()
	c, p, out := newTestClassifier(t, ds, nil, 3,
		testutil.Pick(CreateLabelChoice),
		testutil.Type("greeting"),
		testutil.Yes(),
	)

	batch, err := c.ClassifyBatch(context.Background(), []Message{{Timestamp: "1", User: "A", Text: "hi"}}, ds)
	require.NoError(t, err)

	assert.Equal(t, map[string]Entry{"1-A": {Text: "hi", Label: "greeting"}}, batch.Added)
	assert.Empty(t, batch.Updated)
	assert.Zero(t, ds.Len(), "dataset must not change before merge")
	assert.Contains(t, out.String(), "Added 1 new classification(s):")
	assert.Zero(t, p.Remaining())
}

func TestClassifyBatchRelabelsModifiedText(t *testing.T) {
	ds := NewDataset()
	ds.Entries["1-A"] = Entry{Text: "hi", Label: "greeting"}

	c, p, out := newTestClassifier(t, ds, nil, 3,
		testutil.Yes(),
		testutil.Pick(IgnoreLabel),
		testutil.Yes(),
	)

	batch, err := c.ClassifyBatch(context.Background(), []Message{{Timestamp: "1", User: "A", Text: "hi!"}}, ds)
	require.NoError(t, err)

	assert.Equal(t, map[string]Entry{"1-A": {Text: "hi!", Label: IgnoreLabel}}, batch.Updated)
	assert.Empty(t, batch.Added)
	assert.Equal(t, Entry{Text: "hi", Label: "greeting"}, ds.Entries["1-A"])
	assert.Contains(t, p.Prompts[0], "(text has been modified)")
	assert.Contains(t, out.String(), "Updated 1 existing classification(s):")
	assert.Contains(t, out.String(), "No new classification entries added")
}

func TestClassifyBatchDeclinedChangeIsNotStaged(t *testing.T) {
	ds := NewDataset()
	ds.Entries["1-A"] = Entry{Text: "hi", Label: "greeting"}

	c, p, _ := newTestClassifier(t, ds, nil, 3,
		testutil.No(),
		testutil.Yes(),
	)

	batch, err := c.ClassifyBatch(context.Background(), []Message{{Timestamp: "1", User: "A", Text: "hi"}}, ds)
	require.NoError(t, err)
	assert.True(t, batch.Empty())
	assert.Equal(t, existingPrompt, p.Prompts[0])
}

func TestClassifyBatchRejectionRestarts(t *testing.T) {
	ds := NewDataset()
	messages := []Message{{Timestamp: "1", User: "A", Text: "hi"}}

	c, p, out := newTestClassifier(t, ds, nil, 3,
		testutil.Pick(CreateLabelChoice),
		testutil.Type("greeting"),
		testutil.No(),
		testutil.Pick(IgnoreLabel),
		testutil.Yes(),
	)

	batch, err := c.ClassifyBatch(context.Background(), messages, ds)
	require.NoError(t, err)

	// Only the second pass is kept
	assert.Equal(t, map[string]Entry{"1-A": {Text: "hi", Label: IgnoreLabel}}, batch.Added)
	assert.Contains(t, out.String(), "Restarting batch review (pass 2/3)")
	assert.Zero(t, p.Remaining())
}

func TestClassifyBatchRejectionBound(t *testing.T) {
	ds := NewDataset()
	messages := []Message{{Timestamp: "1", User: "A", Text: "hi"}}

	c, _, _ := newTestClassifier(t, ds, nil, 2,
		testutil.Pick(IgnoreLabel),
		testutil.No(),
		testutil.Pick(IgnoreLabel),
		testutil.No(),
	)

	batch, err := c.ClassifyBatch(context.Background(), messages, ds)
	require.ErrorIs(t, err, ErrBatchRejected)
	assert.Contains(t, err.Error(), "after 2 review pass(es)")
	assert.True(t, batch.Empty())
}

func TestClassifyBatchSkips(t *testing.T) {
	ds := NewDataset()
	messages := []Message{
		{Timestamp: "1", User: "A", Text: ""},
		{Timestamp: "2", User: "A", Text: "see attached", Attachments: 1},
		{Timestamp: "3", User: "BOT", Text: "deploy finished"},
		{Timestamp: "4", User: "B", Text: "real question"},
	}
	ignored := map[string]struct{}{"BOT": {}}

	c, p, out := newTestClassifier(t, ds, ignored, 1,
		testutil.Pick(IgnoreLabel),
		testutil.Yes(),
	)

	batch, err := c.ClassifyBatch(context.Background(), messages, ds)
	require.NoError(t, err)

	assert.Equal(t, []string{"4-B"}, keys(batch.Added))
	assert.Empty(t, batch.Updated)
	assert.Contains(t, out.String(), "<NO TEXT>")
	assert.Contains(t, out.String(), "Message has no text or attachments, skipping")
	assert.Contains(t, out.String(), "Message is from an ignored user ID (BOT), skipping")
	assert.Zero(t, p.Remaining())
}

func TestClassifyBatchAddedAndUpdatedDisjoint(t *testing.T) {
	ds := CreateTestDataset()
	greeting := EntryID("1700000000.000100", "U1")
	messages := []Message{
		{Timestamp: "1700000000.000100", User: "U1", Text: "hello there"},
		{Timestamp: "1700000001.000000", User: "U4", Text: "anyone around?"},
	}

	c, _, _ := newTestClassifier(t, ds, nil, 1,
		testutil.Yes(),
		testutil.Pick("incident"),
		testutil.Pick("greeting"),
		testutil.Yes(),
	)

	batch, err := c.ClassifyBatch(context.Background(), messages, ds)
	require.NoError(t, err)

	assert.Contains(t, batch.Updated, greeting)
	for id := range batch.Added {
		assert.NotContains(t, batch.Updated, id)
	}
}

func TestClassifyBatchIdempotentWhenDeclined(t *testing.T) {
	ds := CreateTestDataset()
	var messages []Message
	for _, id := range ds.SortedIDs() {
		entry := ds.Entries[id]
		ts, user, _ := strings.Cut(id, "-")
		messages = append(messages, Message{Timestamp: ts, User: user, Text: entry.Text})
	}

	answers := make([]testutil.Answer, 0, len(messages)+1)
	for range messages {
		answers = append(answers, testutil.No())
	}
	answers = append(answers, testutil.Yes())
	c, _, _ := newTestClassifier(t, ds, nil, 1, answers...)

	batch, err := c.ClassifyBatch(context.Background(), messages, ds)
	require.NoError(t, err)
	assert.True(t, batch.Empty())
}

func TestClassifyBatchPromptError(t *testing.T) {
	ds := NewDataset()
	aborted := errors.New("user aborted")
	c, _, _ := newTestClassifier(t, ds, nil, 1, testutil.Pick(IgnoreLabel), testutil.Abort(aborted))

	_, err := c.ClassifyBatch(context.Background(), []Message{{Timestamp: "1", User: "A", Text: "hi"}}, ds)
	assert.ErrorIs(t, err, aborted)
}

func keys(m map[string]Entry) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
