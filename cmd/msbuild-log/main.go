package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/snyk/cli-extension-msbuild/internal/settings"
	"github.com/snyk/cli-extension-msbuild/pkg/consoleparser"
	"github.com/snyk/cli-extension-msbuild/pkg/logger"
)

type globalOptions struct {
	sourceEncoding string
	outputEncoding string
	locale         string
	configPath     string
	debug          bool
	noColor        bool
}

func main() {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "msbuild-log",
		Short:         "Count MSBuild warnings and errors while re-encoding its console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.sourceEncoding, "source-encoding", "", "encoding of the MSBuild console (default MS932)")
	flags.StringVar(&opts.outputEncoding, "output-encoding", "", "encoding the console is normalized into (default UTF-8)")
	flags.StringVar(&opts.locale, "locale", "", "language of the summary lines, ja or en (default ja)")
	flags.StringVar(&opts.configPath, "config", "", "TOML parser config file")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored summary")

	rootCmd.AddCommand(newScanCmd(opts))
	rootCmd.AddCommand(newBuildCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		newLogger(opts, os.Stderr).Error().Err(err).Msg("msbuild-log failed")
		os.Exit(1)
	}
}

func newLogger(opts *globalOptions, w io.Writer) *zerolog.Logger {
	level := zerolog.WarnLevel
	if opts.debug {
		level = zerolog.DebugLevel
	}
	l := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: opts.noColor}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return &l
}

// newParser loads the parser config and applies the command line overrides.
func newParser(opts *globalOptions, out io.Writer, log *zerolog.Logger) (*consoleparser.Parser, settings.Settings, error) {
	cfg, err := settings.Load(opts.configPath)
	if err != nil {
		return nil, settings.Settings{}, err
	}
	cfg = cfg.Override(opts.sourceEncoding, opts.outputEncoding, opts.locale)

	parserOpts, err := cfg.ParserOptions()
	if err != nil {
		return nil, settings.Settings{}, err
	}
	parserOpts = append(parserOpts, consoleparser.WithLogger(logger.NewFromZerolog(log)))

	parser, err := consoleparser.New(nopCloser{out}, cfg.OutputEncoding, parserOpts...)
	if err != nil {
		return nil, settings.Settings{}, err
	}
	return parser, cfg, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
