package simsession

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// ErrNotInteractive is returned when a prompt is needed but no terminal is attached.
var ErrNotInteractive = errors.New("permission prompt requires an interactive terminal")

// Prompter shows the permission dialog and returns the user's answer.
type Prompter interface {
	PromptRecordPermission() (granted bool, err error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func() (bool, error)

// PromptRecordPermission calls f.
func (f PrompterFunc) PromptRecordPermission() (bool, error) {
	return f()
}

// StaticPrompter answers every prompt with Answer. It stands in for a user
// on headless hosts.
type StaticPrompter struct {
	Answer bool
}

// PromptRecordPermission returns p.Answer.
func (p StaticPrompter) PromptRecordPermission() (bool, error) {
	return p.Answer, nil
}

// TerminalPrompter asks on the controlling terminal.
type TerminalPrompter struct {
	// AppName is shown as the application requesting access.
	AppName string
	// Reason is the usage description shown under the title.
	Reason string
}

// NewTerminalPrompter creates a TerminalPrompter.
func NewTerminalPrompter(appName, reason string) *TerminalPrompter {
	return &TerminalPrompter{AppName: appName, Reason: reason}
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// PromptRecordPermission shows an Allow / Don't Allow dialog.
func (p *TerminalPrompter) PromptRecordPermission() (bool, error) {
	if !p.IsInteractive() {
		return false, ErrNotInteractive
	}

	var allow bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("%q would like to access the microphone.", p.AppName)).
		Description(p.Reason).
		Affirmative("Allow").
		Negative("Don't Allow").
		Value(&allow).
		Run()
	if err != nil {
		return false, fmt.Errorf("permission prompt: %w", err)
	}
	return allow, nil
}
