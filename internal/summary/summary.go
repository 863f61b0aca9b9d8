// Package summary holds the outcome of one MSBuild run.
package summary

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Summary is the payload returned by the msbuild workflow.
type Summary struct {
	TargetFile     string `json:"targetFile"`
	Warnings       int    `json:"warnings"`
	Errors         int    `json:"errors"`
	ExitCode       int    `json:"exitCode"`
	SourceEncoding string `json:"sourceEncoding"`
	OutputEncoding string `json:"outputEncoding"`
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// JSON encodes the summary.
func (s Summary) JSON() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	return b, nil
}

// Succeeded reports whether MSBuild exited cleanly without reporting errors.
func (s Summary) Succeeded() bool {
	return s.ExitCode == 0 && s.Errors <= 0
}

// Render returns a one-line summary for a terminal.
func (s Summary) Render(colored bool) string {
	status := "succeeded"
	style := okStyle
	switch {
	case !s.Succeeded():
		status = "failed"
		style = failStyle
	case s.Warnings > 0:
		style = warnStyle
	}

	target := s.TargetFile
	if target == "" {
		target = "-"
	}

	line := fmt.Sprintf("%s: build %s, %s warning(s), %s error(s)",
		target, status, count(s.Warnings), count(s.Errors))
	if !colored {
		return line + fmt.Sprintf(" (exit code %d)", s.ExitCode)
	}
	return style.Render(line) + " " + dimStyle.Render(fmt.Sprintf("(exit code %d)", s.ExitCode))
}

func count(n int) string {
	if n < 0 {
		return "n/a"
	}
	return strconv.Itoa(n)
}
