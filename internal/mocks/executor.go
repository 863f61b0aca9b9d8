package mocks

import (
	"context"
	"fmt"
	"io"
)

// ExecuteCall is one recorded MockExecutor invocation.
type ExecuteCall struct {
	Binary string
	Dir    string
	Args   []string
}

// MockExecutor writes canned console bytes instead of running MSBuild.
type MockExecutor struct {
	Calls     []ExecuteCall
	Output    []byte
	ReturnErr error
}

func (m *MockExecutor) Execute(_ context.Context, binary, dir string, out io.Writer, args ...string) error {
	m.Calls = append(m.Calls, ExecuteCall{Binary: binary, Dir: dir, Args: args})
	if len(m.Output) > 0 {
		if _, err := out.Write(m.Output); err != nil {
			return err
		}
	}
	return m.ReturnErr
}

// ExitError mimics a process that exited with Code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) ExitCode() int {
	return e.Code
}
