package msbuild

import (
	"github.com/spf13/pflag"

	"github.com/snyk/cli-extension-msbuild/internal/constants"
	"github.com/snyk/cli-extension-msbuild/pkg/consoleparser"
)

const (
	FlagMSBuildPath            = "msbuild-path"
	FlagFile                   = "file"
	FlagMSBuildArg             = "msbuild-arg"
	FlagSourceEncoding         = "source-encoding"
	FlagOutputEncoding         = "output-encoding"
	FlagSummaryLocale          = "summary-locale"
	FlagParserConfig           = "parser-config"
	FlagFailOnWarnings         = "fail-on-warnings"
	FlagContinueOnBuildFailure = "continue-on-build-failure"
)

func getFlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("msbuild", pflag.ExitOnError)

	flagSet.String(FlagMSBuildPath, constants.DefaultMSBuildBinary, "Path to the MSBuild binary.")
	flagSet.String(FlagFile, "", "Solution or project file to build. Discovered in the input directory when empty.")
	flagSet.StringSlice(FlagMSBuildArg, nil, "Extra argument passed to MSBuild. Repeatable.")
	flagSet.String(FlagSourceEncoding, consoleparser.DefaultSourceEncoding, "Encoding of the MSBuild console output.")
	flagSet.String(FlagOutputEncoding, constants.DefaultOutputEncoding, "Encoding the console lines are normalized into.")
	flagSet.String(FlagSummaryLocale, constants.DefaultSummaryLocale, "Language of the MSBuild summary lines (ja or en).")
	flagSet.String(FlagParserConfig, "", "TOML file with encodings and custom summary patterns.")
	flagSet.Bool(FlagFailOnWarnings, false, "Fail when MSBuild reports warnings.")
	flagSet.Bool(FlagContinueOnBuildFailure, false, "Return the summary even when the build fails.")

	return flagSet
}
