package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

var (
	// ErrInputCancelled is returned when input is canceled by context.
	ErrInputCancelled = errors.New("input canceled")
	// ErrInputClosed is returned when input ends before an answer is given.
	ErrInputClosed = errors.New("input terminated")
)

// Prompter asks questions on a terminal. Reads honor context cancellation.
type Prompter struct {
	writer      io.Writer
	reader      *bufio.Reader
	terminal    *os.File
	readingLock sync.Mutex
}

// NewPrompter creates a prompter. Secrets are read without echo when reader is a terminal.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	p := &Prompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
	if f, ok := reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.terminal = f
	}
	return p
}

// Ask prompts for a line of text. An empty answer yields def.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	prompt := label
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", label, def)
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// AskSecret prompts for a value that is not echoed on a terminal.
func (p *Prompter) AskSecret(ctx context.Context, label string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	if p.terminal == nil {
		return p.readLine(ctx)
	}

	secret, err := p.read(ctx, func() (string, error) {
		b, err := term.ReadPassword(int(p.terminal.Fd()))
		return string(b), err
	})
	_, _ = fmt.Fprintln(p.writer)
	return strings.TrimSpace(secret), err
}

// Confirm asks a yes/no question until it gets a valid answer. An empty answer yields def.
func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(fmt.Sprintf("%s (%s)", question, hint))); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}

		answer, err := p.readLine(ctx)
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Please answer y or n.")); err != nil {
			return false, fmt.Errorf("failed to write message: %w", err)
		}
	}
}

func (p *Prompter) readLine(ctx context.Context) (string, error) {
	line, err := p.read(ctx, func() (string, error) {
		return p.reader.ReadString('\n')
	})
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// read runs fn in a goroutine so a canceled context returns immediately. The
// goroutine keeps the reader until fn returns.
func (p *Prompter) read(ctx context.Context, fn func() (string, error)) (string, error) {
	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		p.readingLock.Lock()
		defer p.readingLock.Unlock()

		value, err := fn()
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		return res.value, res.err
	}
}
