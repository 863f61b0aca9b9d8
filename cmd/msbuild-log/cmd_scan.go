package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/snyk/cli-extension-msbuild/internal/summary"
)

const maxConcurrentScans = 4

func newScanCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [file...]",
		Short: "Scan captured MSBuild logs",
		Long: `Scan captured MSBuild logs, or stdin when no file is given.

The re-encoded console is written to stdout and one summary per log to
stderr. Logs are scanned concurrently and printed in argument order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runScan(opts, "", cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			}
			return runScanFiles(cmd.Context(), opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	return cmd
}

type scanResult struct {
	console bytes.Buffer
	summary bytes.Buffer
	err     error
}

func runScanFiles(ctx context.Context, opts *globalOptions, files []string, stdout, stderr io.Writer) error {
	results := make([]scanResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentScans)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := &results[i]
			f, err := os.Open(file)
			if err != nil {
				res.err = fmt.Errorf("open %s: %w", file, err)
				return nil
			}
			defer f.Close()
			res.err = runScan(opts, file, f, &res.console, &res.summary)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i := range results {
		if _, err := results[i].console.WriteTo(stdout); err != nil {
			return err
		}
		if _, err := results[i].summary.WriteTo(stderr); err != nil {
			return err
		}
		if results[i].err != nil {
			failed++
			fmt.Fprintf(stderr, "%s: %v\n", files[i], results[i].err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d log(s) could not be scanned", failed, len(files))
	}
	return nil
}

func runScan(opts *globalOptions, name string, in io.Reader, stdout, stderr io.Writer) error {
	parser, cfg, err := newParser(opts, stdout, newLogger(opts, stderr))
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(parser, in)
	if err := parser.Close(); err != nil {
		return err
	}
	if copyErr != nil {
		return fmt.Errorf("read log: %w", copyErr)
	}

	s := summary.Summary{
		TargetFile:     name,
		Warnings:       parser.Warnings(),
		Errors:         parser.Errors(),
		SourceEncoding: cfg.SourceEncoding,
		OutputEncoding: cfg.OutputEncoding,
	}
	printSummary(stderr, s, opts.noColor)
	return nil
}
