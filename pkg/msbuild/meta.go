package msbuild

var (
	// MetaKeyContentLocation is the metadata key for the built target file.
	MetaKeyContentLocation = "Content-Location"
	// MetaKeyWarnings is the metadata key for the parsed warning count.
	MetaKeyWarnings = "msbuild-warnings"
	// MetaKeyErrors is the metadata key for the parsed error count.
	MetaKeyErrors = "msbuild-errors"
)
