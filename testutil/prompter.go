package testutil

import (
	"context"
	"fmt"
	"slices"
	"testing"
)

type answerKind int

const (
	kindChoose answerKind = iota
	kindInput
	kindConfirm
)

func (k answerKind) String() string {
	switch k {
	case kindChoose:
		return "choose"
	case kindInput:
		return "input"
	default:
		return "confirm"
	}
}

// Answer is one scripted operator response
type Answer struct {
	kind    answerKind
	choice  string
	text    string
	ok      bool
	confirm bool
	err     error
}

// Pick answers a Choose prompt with choice
func Pick(choice string) Answer { return Answer{kind: kindChoose, choice: choice} }

// Type answers an Input prompt with text
func Type(text string) Answer { return Answer{kind: kindInput, text: text, ok: true} }

// CancelInput cancels an Input prompt
func CancelInput() Answer { return Answer{kind: kindInput} }

// Yes answers a Confirm prompt affirmatively
func Yes() Answer { return Answer{kind: kindConfirm, confirm: true} }

// No answers a Confirm prompt negatively
func No() Answer { return Answer{kind: kindConfirm} }

// Abort fails a Confirm prompt with err, as when the operator hits ctrl+c
func Abort(err error) Answer { return Answer{kind: kindConfirm, err: err} }

// ScriptedPrompter replays a fixed list of answers and records every prompt
type ScriptedPrompter struct {
	t       testing.TB
	answers []Answer
	Prompts []string
}

// NewScriptedPrompter creates a prompter that replays answers in order
func NewScriptedPrompter(t testing.TB, answers ...Answer) *ScriptedPrompter {
	t.Helper()
	return &ScriptedPrompter{t: t, answers: answers}
}

// Remaining returns the number of answers not yet consumed
func (p *ScriptedPrompter) Remaining() int {
	return len(p.answers)
}

func (p *ScriptedPrompter) next(kind answerKind, prompt string) (Answer, error) {
	p.Prompts = append(p.Prompts, prompt)
	if len(p.answers) == 0 {
		p.t.Errorf("unexpected %s prompt %q: script exhausted", kind, prompt)
		return Answer{}, fmt.Errorf("script exhausted at %q", prompt)
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	if answer.kind != kind {
		p.t.Errorf("prompt %q: expected a %s answer, script has %s", prompt, kind, answer.kind)
		return Answer{}, fmt.Errorf("script mismatch at %q", prompt)
	}
	return answer, nil
}

// Choose implements the prompter interface
func (p *ScriptedPrompter) Choose(_ context.Context, prompt string, options []string) (string, error) {
	answer, err := p.next(kindChoose, prompt)
	if err != nil {
		return "", err
	}
	if !slices.Contains(options, answer.choice) {
		p.t.Errorf("prompt %q: choice %q not in options %v", prompt, answer.choice, options)
		return "", fmt.Errorf("invalid choice %q", answer.choice)
	}
	return answer.choice, nil
}

// Input implements the prompter interface
func (p *ScriptedPrompter) Input(_ context.Context, prompt string) (string, bool, error) {
	answer, err := p.next(kindInput, prompt)
	if err != nil {
		return "", false, err
	}
	return answer.text, answer.ok, nil
}

// Confirm implements the prompter interface
func (p *ScriptedPrompter) Confirm(_ context.Context, prompt string, _ bool) (bool, error) {
	answer, err := p.next(kindConfirm, prompt)
	if err != nil {
		return false, err
	}
	return answer.confirm, answer.err
}
