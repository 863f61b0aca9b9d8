package msbuild

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/snyk/go-application-framework/pkg/configuration"
	"github.com/snyk/go-application-framework/pkg/workflow"

	"github.com/snyk/cli-extension-msbuild/internal/constants"
	"github.com/snyk/cli-extension-msbuild/internal/executor"
	"github.com/snyk/cli-extension-msbuild/internal/settings"
	"github.com/snyk/cli-extension-msbuild/internal/summary"
	"github.com/snyk/cli-extension-msbuild/pkg/consoleparser"
	"github.com/snyk/cli-extension-msbuild/pkg/discovery"
	"github.com/snyk/cli-extension-msbuild/pkg/logger"
)

func callback(ctx workflow.InvocationContext, data []workflow.Data) ([]workflow.Data, error) {
	return callbackWithDI(ctx, data, executor.New(), os.Stdout)
}

func callbackWithDI(
	ctx workflow.InvocationContext,
	_ []workflow.Data,
	cmdExecutor executor.CmdExecutor,
	console io.Writer,
) ([]workflow.Data, error) {
	config := ctx.GetConfiguration()
	log := ctx.GetEnhancedLogger()

	log.Print("MSBuild workflow start")

	inputDir := config.GetString(configuration.INPUT_DIRECTORY)
	if inputDir == "" {
		inputDir = "."
	}

	target, err := resolveTarget(inputDir, config.GetString(FlagFile), logger.NewFromZerolog(log))
	if err != nil {
		return nil, newTargetError(err)
	}
	log.Debug().Str("target", target.RelPath).Msg("resolved build target")

	parser, cfg, err := newParser(config, log, console)
	if err != nil {
		return nil, err
	}

	args := append([]string{target.RelPath}, config.GetStringSlice(FlagMSBuildArg)...)
	runErr := cmdExecutor.Execute(context.Background(), config.GetString(FlagMSBuildPath), inputDir, parser, args...)
	if closeErr := parser.Close(); closeErr != nil {
		return nil, fmt.Errorf("failed to flush MSBuild console: %w", closeErr)
	}

	result := summary.Summary{
		TargetFile:     target.RelPath,
		Warnings:       parser.Warnings(),
		Errors:         parser.Errors(),
		SourceEncoding: cfg.SourceEncoding,
		OutputEncoding: cfg.OutputEncoding,
	}
	result.ExitCode = executor.ExitCode(runErr)
	log.Info().
		Int("warnings", result.Warnings).
		Int("errors", result.Errors).
		Int("exit_code", result.ExitCode).
		Msg("MSBuild finished")

	if runErr != nil && !config.GetBool(FlagContinueOnBuildFailure) {
		return nil, newBuildFailedError(result, runErr)
	}
	if config.GetBool(FlagFailOnWarnings) && result.Warnings > 0 {
		return nil, newWarningsError(result)
	}

	payload, err := result.JSON()
	if err != nil {
		return nil, err
	}

	data := workflow.NewData(DataTypeID, constants.ContentTypeJSON, payload)
	data.SetMetaData(MetaKeyContentLocation, target.RelPath)
	data.SetMetaData(MetaKeyWarnings, strconv.Itoa(result.Warnings))
	data.SetMetaData(MetaKeyErrors, strconv.Itoa(result.Errors))

	return []workflow.Data{data}, nil
}

func resolveTarget(inputDir, file string, log logger.Logger) (discovery.FindResult, error) {
	if file == "" {
		return discovery.FindBuildTarget(context.Background(), inputDir, discovery.WithLogger(log))
	}

	results, err := discovery.FindFiles(context.Background(), inputDir,
		discovery.WithTargetFile(file), discovery.WithLogger(log))
	if err != nil {
		return discovery.FindResult{}, err
	}
	if len(results) == 0 {
		return discovery.FindResult{}, fmt.Errorf("%w: %s", discovery.ErrNoBuildTarget, file)
	}
	return results[0], nil
}

// newParser builds the console parser from the parser config file overlaid
// with the flags. Only flags given explicitly override the file.
func newParser(
	config configuration.Configuration,
	log *zerolog.Logger,
	console io.Writer,
) (*consoleparser.Parser, settings.Settings, error) {
	path := config.GetString(FlagParserConfig)
	cfg, err := settings.Load(path)
	if err != nil {
		return nil, settings.Settings{}, newSettingsError(path, err)
	}
	cfg = cfg.Override(
		explicitFlag(config, FlagSourceEncoding),
		explicitFlag(config, FlagOutputEncoding),
		explicitFlag(config, FlagSummaryLocale),
	)

	opts, err := cfg.ParserOptions()
	if err == nil {
		opts = append(opts, consoleparser.WithLogger(logger.NewFromZerolog(log)))
		var parser *consoleparser.Parser
		parser, err = consoleparser.New(nopCloser{console}, cfg.OutputEncoding, opts...)
		if err == nil {
			return parser, cfg, nil
		}
	}

	if path != "" {
		return nil, settings.Settings{}, newSettingsError(path, err)
	}
	return nil, settings.Settings{}, fmt.Errorf("failed to create console parser: %w", err)
}

// explicitFlag returns the flag value when it was set, or "" so the file or
// built-in default applies.
func explicitFlag(config configuration.Configuration, key string) string {
	if !config.IsSet(key) {
		return ""
	}
	return config.GetString(key)
}

// nopCloser keeps the console open when the parser is closed.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
