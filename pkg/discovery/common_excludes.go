package discovery

var commonExcludes = []string{
	// Any hidden folder (.git, .vs, ...)
	".*",

	// MSBuild output
	"bin",
	"obj",
	"TestResults",

	// NuGet
	"packages",

	// Front-end projects that live next to the solution
	"node_modules",
}
