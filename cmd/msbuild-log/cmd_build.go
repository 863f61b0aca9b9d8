package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/snyk/cli-extension-msbuild/internal/constants"
	"github.com/snyk/cli-extension-msbuild/internal/executor"
	"github.com/snyk/cli-extension-msbuild/internal/summary"
	"github.com/snyk/cli-extension-msbuild/pkg/discovery"
	"github.com/snyk/cli-extension-msbuild/pkg/logger"
)

type buildOptions struct {
	msbuildPath string
	dir         string
	file        string
}

func newBuildCmd(opts *globalOptions) *cobra.Command {
	buildOpts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build [-- msbuild args]",
		Short: "Run MSBuild and summarize its console",
		Long: `Run MSBuild on the solution or project found in the directory.

Solutions are preferred over projects and the shallowest file wins.
Arguments after -- are passed to MSBuild unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts, buildOpts, executor.New(), args)
		},
	}

	cmd.Flags().StringVar(&buildOpts.msbuildPath, "msbuild-path", constants.DefaultMSBuildBinary, "path to the MSBuild binary")
	cmd.Flags().StringVarP(&buildOpts.dir, "dir", "C", ".", "directory to build in")
	cmd.Flags().StringVarP(&buildOpts.file, "file", "f", "", "solution or project file to build")

	return cmd
}

func runBuild(cmd *cobra.Command, opts *globalOptions, buildOpts *buildOptions, cmdExecutor executor.CmdExecutor, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	log := newLogger(opts, stderr)

	target := buildOpts.file
	if target == "" {
		found, err := discovery.FindBuildTarget(cmd.Context(), buildOpts.dir, discovery.WithLogger(logger.NewFromZerolog(log)))
		if err != nil {
			return err
		}
		target = found.RelPath
	}
	log.Debug().Str("target", target).Str("dir", buildOpts.dir).Msg("building")

	parser, cfg, err := newParser(opts, stdout, log)
	if err != nil {
		return err
	}

	runErr := cmdExecutor.Execute(cmd.Context(), buildOpts.msbuildPath, buildOpts.dir, parser, append([]string{target}, args...)...)
	if err := parser.Close(); err != nil {
		return err
	}

	s := summary.Summary{
		TargetFile:     target,
		Warnings:       parser.Warnings(),
		Errors:         parser.Errors(),
		SourceEncoding: cfg.SourceEncoding,
		OutputEncoding: cfg.OutputEncoding,
	}
	s.ExitCode = executor.ExitCode(runErr)
	printSummary(stderr, s, opts.noColor)

	if !s.Succeeded() {
		if runErr != nil {
			return runErr
		}
		return fmt.Errorf("MSBuild reported %d error(s)", s.Errors)
	}
	return nil
}

func printSummary(w io.Writer, s summary.Summary, noColor bool) {
	colored := !noColor && os.Getenv("NO_COLOR") == ""
	fmt.Fprintln(w, s.Render(colored))
}
