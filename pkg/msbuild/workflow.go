package msbuild

import (
	"fmt"

	"github.com/snyk/go-application-framework/pkg/workflow"
)

const (
	workflowIDStr = "msbuild"
	dataTypeIDStr = "msbuild-summary"
)

var (
	// WorkflowID is the unique identifier for this workflow. It should be used as
	// a reference everywhere.
	WorkflowID workflow.Identifier = workflow.NewWorkflowIdentifier(workflowIDStr)

	// DataTypeID is the unique identifier for the build summary returned from
	// this workflow.
	DataTypeID workflow.Identifier = workflow.NewTypeIdentifier(WorkflowID, dataTypeIDStr)
)

// Init initializes the MSBuild workflow.
func Init(engine workflow.Engine) error {
	flags := getFlagSet()

	_, err := engine.Register(
		WorkflowID,
		workflow.ConfigurationOptionsFromFlagset(flags),
		callback)
	if err != nil {
		return fmt.Errorf("failed to register workflow: %w", err)
	}

	return nil
}
