package msbuild

import (
	"errors"
	"testing"

	clierrors "github.com/snyk/error-catalog-golang-public/cli"
	"github.com/snyk/error-catalog-golang-public/snyk_errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snyk/cli-extension-msbuild/internal/executor"
	"github.com/snyk/cli-extension-msbuild/internal/mocks"
	"github.com/snyk/cli-extension-msbuild/internal/summary"
)

func Test_newBuildFailedError(t *testing.T) {
	cause := clierrors.NewGeneralSCAFailureError(
		"msbuild App.sln failed: exit status 2",
		snyk_errors.WithCause(&mocks.ExitError{Code: 2}),
	)
	s := summary.Summary{TargetFile: "App.sln", Warnings: 0, Errors: 3, ExitCode: 2}

	err := newBuildFailedError(s, cause)

	require.Error(t, err)
	assert.Equal(t, 2, executor.ExitCode(err))
	assert.Contains(t, err.Error(), "3 error(s)")
	assert.Contains(t, err.Error(), "exit status 2")

	var snykErr snyk_errors.Error
	assert.ErrorAs(t, err, &snykErr)
}

func Test_newWarningsError(t *testing.T) {
	err := newWarningsError(summary.Summary{TargetFile: "App.sln", Warnings: 7, Errors: 0})

	require.Error(t, err)
	assert.Equal(t, 1, executor.ExitCode(err))
	assert.Contains(t, err.Error(), "7 warning(s)")
}

func Test_newSettingsError(t *testing.T) {
	cause := errors.New("parse config: boom")

	err := newSettingsError("msbuild.toml", cause)

	var snykErr snyk_errors.Error
	assert.ErrorAs(t, err, &snykErr)
	assert.Contains(t, snykErr.Detail, "msbuild.toml")
	assert.ErrorIs(t, err, cause)
}
