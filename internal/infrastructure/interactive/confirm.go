// Package interactive holds the terminal prompts used by destructive commands.
package interactive

import (
	"errors"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when confirmation is required but stdin is
// not a terminal.
var ErrNotInteractive = errors.New("confirmation required: stdin is not a terminal (use --yes)")

// CancellationError indicates the user interrupted a prompt.
type CancellationError struct {
	Message string
}

func (e *CancellationError) Error() string {
	return e.Message
}

// IsTerminalInteractive reports whether stdin is attached to a terminal.
// promptui reads from stdin, so piped input cannot answer prompts.
func IsTerminalInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Confirmer asks yes/no questions before an action proceeds.
type Confirmer struct {
	// AssumeYes skips the prompt entirely.
	AssumeYes bool

	interactive func() bool
}

// NewConfirmer creates a Confirmer reading from the process terminal.
func NewConfirmer(assumeYes bool) *Confirmer {
	return &Confirmer{AssumeYes: assumeYes, interactive: IsTerminalInteractive}
}

// Confirm returns true when the user accepts label. A declined prompt
// returns false with a nil error.
func (c *Confirmer) Confirm(label string) (bool, error) {
	if c.AssumeYes {
		return true, nil
	}
	if c.interactive != nil && !c.interactive() {
		return false, ErrNotInteractive
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, handleInterruptError(err)
	}
	return true, nil
}

func handleInterruptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		return &CancellationError{Message: "Operation cancelled"}
	}
	if errors.Is(err, promptui.ErrEOF) {
		return &CancellationError{Message: "Operation cancelled (EOF)"}
	}
	return err
}
