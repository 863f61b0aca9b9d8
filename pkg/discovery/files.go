// Package discovery locates MSBuild solution and project files.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/snyk/cli-extension-msbuild/pkg/logger"
)

const (
	logKeyFile    = "file"
	logKeyPath    = "path"
	logKeyPattern = "pattern"
)

var (
	// SolutionGlobs match MSBuild solution files.
	SolutionGlobs = []string{"*.sln"}
	// ProjectGlobs match MSBuild project files.
	ProjectGlobs = []string{"*.csproj", "*.vbproj", "*.fsproj", "*.vcxproj", "*.proj"}

	// ErrNoBuildTarget is returned when no solution or project file exists.
	ErrNoBuildTarget = errors.New("no MSBuild solution or project file found")
)

type findOptions struct {
	targetFiles  []string
	includeGlobs []string
	excludeGlobs []string
	log          logger.Logger
}

// FindOption configures FindFiles.
type FindOption func(*findOptions)

// WithTargetFile adds a specific file to find. Relative paths resolve against
// the root directory.
func WithTargetFile(file string) FindOption {
	return func(o *findOptions) {
		o.targetFiles = append(o.targetFiles, file)
	}
}

// WithIncludes adds glob patterns matched against file names, e.g. "*.sln".
func WithIncludes(patterns ...string) FindOption {
	return func(o *findOptions) {
		o.includeGlobs = append(o.includeGlobs, patterns...)
	}
}

// WithExcludes adds glob patterns for files and directories to skip. They are
// matched against both the name and the path relative to the root.
func WithExcludes(patterns ...string) FindOption {
	return func(o *findOptions) {
		o.excludeGlobs = append(o.excludeGlobs, patterns...)
	}
}

// WithLogger sets the logger used for discovery diagnostics. Without it,
// discovery logs through slog.Default.
func WithLogger(log logger.Logger) FindOption {
	return func(o *findOptions) {
		o.log = log
	}
}

// WithCommonExcludes skips build output, package caches and hidden directories.
func WithCommonExcludes() FindOption {
	return WithExcludes(commonExcludes...)
}

// FindResult is a discovered file.
type FindResult struct {
	Path    string // Absolute path to the file
	RelPath string // Path relative to the root directory
}

// Depth returns the number of directories between the root and the file.
func (r FindResult) Depth() int {
	return strings.Count(filepath.ToSlash(r.RelPath), "/")
}

// FindFiles returns the target files plus every file below rootDir matching an
// include glob, minus excluded ones. Results are deduplicated and sorted by
// relative path. The walk stops when ctx is canceled.
func FindFiles(ctx context.Context, rootDir string, options ...FindOption) ([]FindResult, error) {
	opts := &findOptions{}
	for _, opt := range options {
		opt(opts)
	}
	if opts.log == nil {
		opts.log = logger.NewFromSlog(slog.Default())
	}
	if err := validateInputs(rootDir, opts); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", rootDir, err)
	}

	found := make(map[string]FindResult)
	for _, targetFile := range opts.targetFiles {
		result, err := findTargetFile(ctx, absRoot, targetFile, opts)
		if err != nil {
			return nil, err
		}
		if result.Path != "" {
			found[result.Path] = result
		}
	}

	if len(opts.includeGlobs) > 0 {
		matches, err := walkDirectory(ctx, absRoot, opts)
		if err != nil {
			return nil, err
		}
		for _, result := range matches {
			found[result.Path] = result
		}
	}

	results := make([]FindResult, 0, len(found))
	for _, result := range found {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].RelPath < results[j].RelPath
	})

	opts.log.Debug(ctx, "File discovery completed",
		logger.Attr("root_dir", absRoot),
		logger.Attr("files_found", len(results)))
	return results, nil
}

// FindBuildTarget picks the file MSBuild should build in dir: the shallowest
// solution file, or failing that the shallowest project file. Ties are broken
// by relative path. Only WithLogger and WithExcludes are meaningful in options.
func FindBuildTarget(ctx context.Context, dir string, options ...FindOption) (FindResult, error) {
	opts := &findOptions{}
	for _, opt := range options {
		opt(opts)
	}
	if opts.log == nil {
		opts.log = logger.NewFromSlog(slog.Default())
	}

	for _, globs := range [][]string{SolutionGlobs, ProjectGlobs} {
		findOpts := append([]FindOption{WithIncludes(globs...), WithCommonExcludes()}, options...)
		results, err := FindFiles(ctx, dir, findOpts...)
		if err != nil {
			return FindResult{}, err
		}
		if len(results) == 0 {
			continue
		}

		best := results[0]
		for _, r := range results[1:] {
			if r.Depth() < best.Depth() {
				best = r
			}
		}
		opts.log.Info(ctx, "Selected build target",
			logger.Attr(logKeyFile, best.RelPath),
			logger.Attr("candidates", len(results)))
		return best, nil
	}
	return FindResult{}, fmt.Errorf("%w in %s", ErrNoBuildTarget, dir)
}

func validateInputs(rootDir string, opts *findOptions) error {
	if rootDir == "" {
		return fmt.Errorf("rootDir cannot be empty")
	}
	if len(opts.targetFiles) == 0 && len(opts.includeGlobs) == 0 {
		return fmt.Errorf("at least one target file or include pattern must be specified")
	}
	for _, pattern := range opts.includeGlobs {
		if _, err := filepath.Match(pattern, "test"); err != nil {
			return fmt.Errorf("invalid include pattern %s: %w", pattern, err)
		}
	}
	for _, pattern := range opts.excludeGlobs {
		if _, err := filepath.Match(pattern, "test"); err != nil {
			return fmt.Errorf("invalid exclude pattern %s: %w", pattern, err)
		}
	}
	return nil
}

// findTargetFile returns an empty result without error when the file is excluded.
func findTargetFile(ctx context.Context, absRoot, targetFile string, opts *findOptions) (FindResult, error) {
	targetPath := targetFile
	if !filepath.IsAbs(targetPath) {
		targetPath = filepath.Join(absRoot, targetPath)
	}
	targetPath = filepath.Clean(targetPath)

	info, err := os.Stat(targetPath)
	if err != nil {
		return FindResult{}, fmt.Errorf("target file %s not found: %w", targetFile, err)
	}
	if info.IsDir() {
		return FindResult{}, fmt.Errorf("target file %s is a directory", targetFile)
	}

	relPath, err := filepath.Rel(absRoot, targetPath)
	if err != nil {
		relPath = targetPath
	}
	if opts.matchesAny(ctx, opts.excludeGlobs, filepath.Base(relPath), relPath) {
		opts.log.Debug(ctx, "Target file excluded by pattern", logger.Attr(logKeyFile, targetFile))
		return FindResult{}, nil
	}
	return FindResult{Path: targetPath, RelPath: relPath}, nil
}

func walkDirectory(ctx context.Context, absRoot string, opts *findOptions) ([]FindResult, error) {
	var results []FindResult

	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			opts.log.Warn(ctx, "Error accessing path", logger.Attr(logKeyPath, path), logger.Err(err))
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if relPath != "." && opts.matchesAny(ctx, opts.excludeGlobs, d.Name(), relPath) {
				return fs.SkipDir
			}
			return nil
		}

		if opts.matchesAny(ctx, opts.excludeGlobs, d.Name(), relPath) {
			return nil
		}
		if opts.matchesAny(ctx, opts.includeGlobs, d.Name(), "") {
			results = append(results, FindResult{Path: path, RelPath: relPath})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", absRoot, err)
	}
	return results, nil
}

// matchesAny reports whether name, or relPath when set, matches one of patterns.
func (o *findOptions) matchesAny(ctx context.Context, patterns []string, name, relPath string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err != nil {
			o.log.Warn(ctx, "Invalid pattern", logger.Attr(logKeyPattern, pattern), logger.Err(err))
			continue
		} else if ok {
			return true
		}
		if relPath == "" {
			continue
		}
		if ok, _ := filepath.Match(pattern, filepath.ToSlash(relPath)); ok {
			return true
		}
	}
	return false
}
