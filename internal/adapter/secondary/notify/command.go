package notify

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
)

// CommandSender delivers notifications through a desktop helper program:
// osascript on macOS, notify-send elsewhere.
type CommandSender struct {
	program string
}

// NewSystemSender picks the helper for this platform. It falls back to a
// NoopSender when none is installed.
func NewSystemSender() Sender {
	program := "notify-send"
	if runtime.GOOS == "darwin" {
		program = "osascript"
	}
	path, err := exec.LookPath(program)
	if err != nil {
		return NoopSender{}
	}
	return &CommandSender{program: path}
}

// Send runs the helper and waits for it.
func (c *CommandSender) Send(title, body string) error {
	cmd := exec.Command(c.program, c.args(title, body)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w, output: %s", c.program, err, string(output))
	}
	return nil
}

func (c *CommandSender) args(title, body string) []string {
	if filepath.Base(c.program) == "osascript" {
		script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(body), strconv.Quote(title))
		return []string{"-e", script}
	}
	return []string{"--app-name=pomotimer", title, body}
}
