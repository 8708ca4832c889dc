package internal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// Prompter is the interactive operator surface used during curation.
// Every call blocks until the operator answers or ctx is cancelled.
type Prompter interface {
	// Choose asks the operator to pick one of options
	Choose(ctx context.Context, prompt string, options []string) (string, error)
	// Input asks for free text. ok is false when the operator cancelled.
	Input(ctx context.Context, prompt string) (value string, ok bool, err error)
	// Confirm asks a yes/no question with a default answer
	Confirm(ctx context.Context, prompt string, def bool) (bool, error)
}

// HuhPrompter implements Prompter with charmbracelet/huh forms.
//
// An empty answer to Input cancels it in both modes. In accessible mode input
// that runs out before a field is answered yields io.EOF.
type HuhPrompter struct {
	accessible bool
	in         io.Reader
	out        io.Writer
	lines      *lineReader
}

// NewHuhPrompter creates a prompter bound to the process terminal.
// Accessible mode renders plain line-based prompts for screen readers and
// non-TTY sessions.
func NewHuhPrompter(accessible bool) *HuhPrompter {
	return NewHuhPrompterWithIO(nil, nil, accessible)
}

// NewHuhPrompterWithIO creates a prompter reading from in and writing to out.
// A nil in or out uses the process terminal.
func NewHuhPrompterWithIO(in io.Reader, out io.Writer, accessible bool) *HuhPrompter {
	p := &HuhPrompter{accessible: accessible, in: in, out: out}
	if accessible {
		if in == nil {
			in = os.Stdin
		}
		p.lines = newLineReader(in)
	}
	return p
}

func (p *HuhPrompter) run(ctx context.Context, field huh.Field) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	form := huh.NewForm(huh.NewGroup(field)).
		WithAccessible(p.accessible).
		WithShowHelp(true)
	if p.lines != nil {
		form = form.WithInput(p.lines)
		p.lines.reset()
		defer func() {
			// huh indexes select options with the last rejected answer when input ends
			if r := recover(); r != nil {
				if !p.lines.exhausted() {
					panic(r)
				}
				err = io.EOF
			}
		}()
	} else if p.in != nil {
		form = form.WithInput(p.in)
	}
	if p.out != nil {
		form = form.WithOutput(p.out)
	}

	if err := form.RunWithContext(ctx); err != nil {
		return err
	}
	// The accessible runner reads stdin without watching ctx
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.lines != nil && p.lines.exhausted() {
		return io.EOF
	}
	return nil
}

// Choose implements Prompter
func (p *HuhPrompter) Choose(ctx context.Context, prompt string, options []string) (string, error) {
	var choice string
	field := huh.NewSelect[string]().
		Title(prompt).
		Options(huh.NewOptions(options...)...).
		Value(&choice)
	if err := p.run(ctx, field); err != nil {
		return "", err
	}
	return choice, nil
}

// Input implements Prompter. Aborting the field (esc or ctrl+c) or submitting
// an empty answer cancels the input rather than the session.
func (p *HuhPrompter) Input(ctx context.Context, prompt string) (string, bool, error) {
	var value string
	field := huh.NewInput().
		Title(prompt).
		Description("Leave empty to go back").
		Value(&value)
	if err := p.run(ctx, field); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", false, nil
		}
		return "", false, err
	}
	if strings.TrimSpace(value) == "" {
		return "", false, nil
	}
	return value, true, nil
}

// Confirm implements Prompter
func (p *HuhPrompter) Confirm(ctx context.Context, prompt string, def bool) (bool, error) {
	value := def
	field := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&value)
	if err := p.run(ctx, field); err != nil {
		return false, err
	}
	return value, nil
}

// lineReader hands out at most one line per Read so that each accessible
// field, which scans with its own buffer, only consumes its own answer. It
// also records whether the current field ran out of input.
type lineReader struct {
	r       *bufio.Reader
	read    int
	last    byte
	reached bool
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

func (l *lineReader) reset() {
	l.read = 0
	l.last = 0
	l.reached = false
}

func (l *lineReader) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		c, err := l.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				l.reached = true
			}
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		b[n] = c
		n++
		l.read++
		l.last = c
		if c == '\n' {
			break
		}
	}
	return n, nil
}

// exhausted reports whether input ended before the field got an answer. A
// final line without a newline still counts as an answer.
func (l *lineReader) exhausted() bool {
	return l.reached && (l.read == 0 || l.last == '\n')
}
