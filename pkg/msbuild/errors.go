package msbuild

import (
	"errors"
	"fmt"

	clierrors "github.com/snyk/error-catalog-golang-public/cli"
	"github.com/snyk/error-catalog-golang-public/opensource/ecosystems"
	"github.com/snyk/error-catalog-golang-public/snyk_errors"

	"github.com/snyk/cli-extension-msbuild/internal/summary"
)

// exitCodeError wraps an error with a specific exit code.
type exitCodeError struct {
	err      error
	exitCode int
	detail   string
}

func (e *exitCodeError) Error() string {
	return e.detail
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}

func (e *exitCodeError) ExitCode() int {
	return e.exitCode
}

// newExitCodeError creates an error with a specific exit code.
func newExitCodeError(exitCode int, detail string, cause error) error {
	return &exitCodeError{
		err:      cause,
		exitCode: exitCode,
		detail:   detail,
	}
}

// newBuildFailedError keeps MSBuild's exit code so the host CLI can exit with it.
func newBuildFailedError(s summary.Summary, cause error) error {
	detail := s.Render(false)
	var snykErr snyk_errors.Error
	if errors.As(cause, &snykErr) {
		detail = fmt.Sprintf("%s: %s", detail, snykErr.Detail)
	}
	return newExitCodeError(s.ExitCode, detail, cause)
}

// newWarningsError is returned for --fail-on-warnings.
func newWarningsError(s summary.Summary) error {
	detail := fmt.Sprintf("%s: MSBuild reported %d warning(s)", s.Render(false), s.Warnings)
	return newExitCodeError(1, detail, nil)
}

func newSettingsError(path string, err error) error {
	return ecosystems.NewUnprocessableFileError(
		fmt.Sprintf("Failed to load parser config %s: %v", path, err),
		snyk_errors.WithCause(err),
	)
}

func newTargetError(err error) error {
	return clierrors.NewGeneralSCAFailureError(
		fmt.Sprintf("Failed to find an MSBuild target: %v", err),
		snyk_errors.WithCause(err),
	)
}
