// Package executor runs MSBuild and streams its console into a writer.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	clierrors "github.com/snyk/error-catalog-golang-public/cli"
	"github.com/snyk/error-catalog-golang-public/snyk_errors"
)

// MinVersion is the oldest MSBuild whose -version output is understood (VS 2017).
var MinVersion = Version{15, 0, 0}

// CmdExecutor runs a build tool and copies its console output to out.
type CmdExecutor interface {
	Execute(ctx context.Context, binary, dir string, out io.Writer, args ...string) error
}

// MSBuildExecutor is the CmdExecutor for the msbuild binary.
type MSBuildExecutor struct{}

var _ CmdExecutor = (*MSBuildExecutor)(nil)

// New returns the default executor.
func New() CmdExecutor {
	return &MSBuildExecutor{}
}

// Execute resolves binary from PATH, checks its version and runs it in dir.
// Stdout and stderr are both written to out, in the order they are produced.
// A non-zero exit keeps the *exec.ExitError in the error chain.
func (e *MSBuildExecutor) Execute(ctx context.Context, binary, dir string, out io.Writer, args ...string) error {
	resolvedBinary, err := exec.LookPath(binary)
	if err != nil {
		return clierrors.NewGeneralSCAFailureError(
			fmt.Sprintf("%s binary not found in PATH", binary),
			snyk_errors.WithCause(err),
		)
	}

	//nolint:govet // Reassigning to err is fine
	if err := checkVersion(ctx, resolvedBinary); err != nil {
		return err
	}

	console := &syncWriter{w: out}
	cmd := exec.CommandContext(ctx, resolvedBinary, args...)
	cmd.Dir = dir
	cmd.Stdout = console
	cmd.Stderr = console

	if err := cmd.Run(); err != nil {
		return clierrors.NewGeneralSCAFailureError(
			fmt.Sprintf("%s %s failed: %v", binary, strings.Join(args, " "), err),
			snyk_errors.WithCause(err),
		)
	}
	return nil
}

// syncWriter serializes the stdout and stderr copy goroutines of os/exec.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func checkVersion(ctx context.Context, binary string) error {
	output, err := exec.CommandContext(ctx, binary, "-version").Output()
	if err != nil {
		return clierrors.NewGeneralSCAFailureError(
			fmt.Sprintf("failed to get %s version\noutput: %s", binary, string(output)),
			snyk_errors.WithCause(err),
		)
	}
	return parseAndValidateVersion(binary, string(output))
}

// versionRe matches the first dotted version. "-version" prints a banner such
// as "MSBuild version 17.8.3+195e7f5a3 for .NET Framework" followed by the
// bare file version.
var versionRe = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

func parseAndValidateVersion(binary, versionOutput string) error {
	matches := versionRe.FindStringSubmatch(versionOutput)
	if len(matches) < 4 {
		return clierrors.NewGeneralSCAFailureError(
			fmt.Sprintf("unable to parse %s version from output: %s", binary, versionOutput),
		)
	}

	var cur Version
	for i := range cur {
		n, err := strconv.Atoi(matches[i+1])
		if err != nil {
			return clierrors.NewGeneralSCAFailureError(
				fmt.Sprintf("unable to parse %s version from output: %s", binary, versionOutput),
				snyk_errors.WithCause(err),
			)
		}
		cur[i] = n
	}

	if compareVersions(cur, MinVersion) >= 0 {
		return nil
	}
	return clierrors.NewGeneralSCAFailureError(
		fmt.Sprintf(
			"%s version %s is not supported. Minimum required version is %s",
			binary,
			formatVersion(cur),
			formatVersion(MinVersion),
		),
	)
}

// Version is a major.minor.patch triple.
type Version = [3]int

// compareVersions returns -1 if v1 < v2, 0 if v1 == v2, and 1 if v1 > v2.
func compareVersions(v1, v2 Version) int {
	for i := range len(v1) {
		if v1[i] < v2[i] {
			return -1
		}
		if v1[i] > v2[i] {
			return 1
		}
	}
	return 0
}

func formatVersion(version Version) string {
	parts := make([]string, 0, len(version))
	for _, v := range version {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ".")
}

// ExitCode maps the result of Execute to a process exit code: 0 for nil, the
// code carried in the error chain, or 1 when MSBuild did not report one.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) && ec.ExitCode() > 0 {
		return ec.ExitCode()
	}
	return 1
}
