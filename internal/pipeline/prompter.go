package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Prompter decides whether an archived subtitle document should be reused or
// regenerated. This is the only human-in-the-loop point in the pipeline.
type Prompter interface {
	ConfirmReuse(ctx context.Context, title, subtitlePath string) (bool, error)
}

// TerminalPrompter asks on the terminal when stdin is interactive; otherwise
// it answers with a fixed default so unattended runs never block.
type TerminalPrompter struct {
	in            io.Reader
	out           io.Writer
	interactive   bool
	defaultAnswer bool
}

// NewTerminalPrompter builds a prompter bound to the process's stdin/stdout.
func NewTerminalPrompter(defaultAnswer bool) *TerminalPrompter {
	return &TerminalPrompter{
		in:            os.Stdin,
		out:           os.Stdout,
		interactive:   isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
		defaultAnswer: defaultAnswer,
	}
}

// ConfirmReuse returns true when the archived document should be embedded
// as-is, false when transcription and translation should run again.
func (p *TerminalPrompter) ConfirmReuse(ctx context.Context, title, subtitlePath string) (bool, error) {
	if !p.interactive {
		return p.defaultAnswer, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintf(p.out, "Subtitles for %q already exist (%s).\nReuse them instead of re-transcribing? [Y/n]: ", title, subtitlePath)

	reader := bufio.NewReader(p.in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return p.defaultAnswer, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "n", "no":
		return false, nil
	default:
		return true, nil
	}
}
