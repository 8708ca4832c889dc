package internal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
)

// BuildTrainRequest turns a dataset into shuffled one-hot training and
// evaluation examples. trainPercent of the entries go to training and the
// remainder to evaluation. The ignore label is trained like any other.
func BuildTrainRequest(ds *Dataset, trainPercent int, rng *rand.Rand, outputDir, testText string) (TrainRequest, error) {
	if ds.Len() == 0 {
		return TrainRequest{}, errors.New("the dataset has no entries to train with")
	}
	if trainPercent <= 0 || trainPercent > 100 {
		return TrainRequest{}, fmt.Errorf("train percentage must be between 1 and 100, got %d", trainPercent)
	}

	counts := ds.LabelCounts()
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	examples := make([]TrainingExample, 0, ds.Len())
	for _, id := range ds.SortedIDs() {
		entry := ds.Entries[id]
		cats := make(map[string]bool, len(labels))
		for _, label := range labels {
			cats[label] = entry.Label == label
		}
		examples = append(examples, TrainingExample{Text: entry.Text, Cats: cats})
	}
	rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})

	limit := len(examples) * trainPercent / 100
	LogInfo("Training data with %d entries and evaluating with %d entries (%d%%)", limit, len(examples)-limit, trainPercent)

	return TrainRequest{
		Labels:    labels,
		Train:     examples[:limit],
		Eval:      examples[limit:],
		OutputDir: outputDir,
		TestText:  testText,
	}, nil
}

// TestCase is a text with the label a model is expected to produce
type TestCase struct {
	Line     int
	Text     string
	Expected string
}

// ParseTestCases reads tab separated "text<TAB>label" lines. Blank lines are
// skipped; any other line must have exactly two fields.
func ParseTestCases(r io.Reader, name string) ([]TestCase, error) {
	var cases []TestCase
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d of %s is invalid, it should contain two tab-separated values, but has %d", line, name, len(fields))
		}
		cases = append(cases, TestCase{Line: line, Text: fields[0], Expected: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return cases, nil
}

// EvaluateModel predicts every case and reports mismatches to out. A case
// without an expected label only prints the prediction.
func EvaluateModel(ctx context.Context, predictor Predictor, modelDir string, cases []TestCase, out io.Writer) (int, error) {
	failures := 0
	for _, tc := range cases {
		prediction, err := predictor.Predict(ctx, modelDir, tc.Text)
		if err != nil {
			return failures, fmt.Errorf("failed to predict %q: %w", tc.Text, err)
		}

		switch {
		case tc.Expected == "":
			_, _ = fmt.Fprintf(out, "%s %q => %s\n", MutedStyle.Render("?"), tc.Text, LabelStyle.Render(prediction.Label))
		case prediction.Label == tc.Expected:
			_, _ = fmt.Fprintf(out, "%s %q => %s\n", successStyle.Render("✓"), tc.Text, LabelStyle.Render(prediction.Label))
		default:
			failures++
			_, _ = fmt.Fprintf(out, "%s %q => %s (expected %s)\n", errorStyle.Render("✗"), tc.Text, LabelStyle.Render(prediction.Label), tc.Expected)
		}
	}
	return failures, nil
}
