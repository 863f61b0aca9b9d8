package constants

// DefaultMSBuildBinary is looked up in PATH when no msbuild path is configured.
const DefaultMSBuildBinary = "msbuild"

// DefaultOutputEncoding is the encoding console lines are normalized into.
const DefaultOutputEncoding = "UTF-8"

// DefaultSummaryLocale selects the Japanese summary patterns.
const DefaultSummaryLocale = "ja"

// ContentTypeJSON is the content type of the build summary payload.
const ContentTypeJSON = "application/json"
