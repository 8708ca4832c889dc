package internal

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// LabelRegistry tracks the known labels for a session. Labels are only
// ever added, never removed.
type LabelRegistry struct {
	labels map[string]struct{}
}

// NewLabelRegistry creates a registry seeded with the dataset's labels
func NewLabelRegistry(ds *Dataset) *LabelRegistry {
	r := &LabelRegistry{labels: make(map[string]struct{})}
	if ds != nil {
		for label := range ds.Labels() {
			r.labels[label] = struct{}{}
		}
	}
	return r
}

// Known returns the known labels sorted, without the ignore label
func (r *LabelRegistry) Known() []string {
	labels := make([]string, 0, len(r.labels))
	for label := range r.labels {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Contains reports whether label is known
func (r *LabelRegistry) Contains(label string) bool {
	_, ok := r.labels[label]
	return ok
}

// Len returns the number of known labels
func (r *LabelRegistry) Len() int {
	return len(r.labels)
}

// Validate checks that label can be added as a new label
func (r *LabelRegistry) Validate(label string) error {
	switch {
	case label == "":
		return &ValidationError{Value: label, Reason: "label must not be empty"}
	case label == CreateLabelChoice || label == IgnoreLabel:
		return &ValidationError{Value: label, Reason: "label is reserved"}
	case r.Contains(label):
		return &ValidationError{Value: label, Reason: "label already exists"}
	}
	return nil
}

// Add registers a new label
func (r *LabelRegistry) Add(label string) error {
	label = strings.TrimSpace(label)
	if err := r.Validate(label); err != nil {
		return err
	}
	r.labels[label] = struct{}{}
	LogDebug("Added label %q", label)
	return nil
}

// Options returns the label menu: ignore, the known labels, then the create sentinel
func (r *LabelRegistry) Options() []string {
	options := make([]string, 0, len(r.labels)+2)
	options = append(options, IgnoreLabel)
	options = append(options, r.Known()...)
	return append(options, CreateLabelChoice)
}

// Choose asks the operator for a label. Choosing the create sentinel prompts
// for a new label; cancelling that prompt returns to the label menu.
func (r *LabelRegistry) Choose(ctx context.Context, prompter Prompter) (string, error) {
	for {
		label, err := prompter.Choose(ctx, "Please choose a label to apply to this message", r.Options())
		if err != nil {
			return "", err
		}
		if label != CreateLabelChoice {
			return label, nil
		}

		created, ok, err := r.create(ctx, prompter)
		if err != nil {
			return "", err
		}
		if ok {
			return created, nil
		}
	}
}

// create prompts until a valid label is entered or the operator cancels
func (r *LabelRegistry) create(ctx context.Context, prompter Prompter) (string, bool, error) {
	for {
		value, ok, err := prompter.Input(ctx, "New label name")
		if err != nil || !ok {
			return "", false, err
		}

		label := strings.TrimSpace(value)
		if err := r.Add(label); err != nil {
			PrintError(fmt.Sprintf("Error: new label %q is invalid (%v), please try again", value, err))
			continue
		}
		return label, true, nil
	}
}
