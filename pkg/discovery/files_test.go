//go:build !integration
// +build !integration

package discovery

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snyk/cli-extension-msbuild/pkg/logger"
)

func setupFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, path := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, []byte("<Project />"), 0644))
	}
}

func relPaths(results []FindResult) []string {
	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = filepath.ToSlash(r.RelPath)
	}
	return paths
}

func TestFindFiles_TargetFile(t *testing.T) {
	tmpDir := t.TempDir()
	setupFiles(t, tmpDir, "App.sln", "src/App/App.csproj")

	tests := []struct {
		name        string
		targetFile  string
		exclude     string
		wantRelPath string
		wantErr     string
	}{
		{"finds file at root", "App.sln", "", "App.sln", ""},
		{"finds file in subdirectory", "src/App/App.csproj", "", "src/App/App.csproj", ""},
		{"finds absolute path", filepath.Join(tmpDir, "App.sln"), "", "App.sln", ""},
		{"excluded target yields nothing", "App.sln", "*.sln", "", ""},
		{"missing target", "Missing.sln", "", "", "not found"},
		{"directory target", "src", "", "", "is a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []FindOption{WithTargetFile(tt.targetFile)}
			if tt.exclude != "" {
				opts = append(opts, WithExcludes(tt.exclude))
			}

			results, err := FindFiles(context.Background(), tmpDir, opts...)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantRelPath == "" {
				assert.Empty(t, results)
				return
			}
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantRelPath, filepath.ToSlash(results[0].RelPath))
			assert.True(t, filepath.IsAbs(results[0].Path))
		})
	}
}

func TestFindFiles_IncludesAreSortedAndDeduplicated(t *testing.T) {
	tmpDir := t.TempDir()
	setupFiles(t, tmpDir,
		"b/B.csproj",
		"a/A.csproj",
		"a/A.vcxproj",
		"README.md",
	)

	results, err := FindFiles(context.Background(), tmpDir,
		WithTargetFile("a/A.csproj"),
		WithIncludes(ProjectGlobs...))
	require.NoError(t, err)

	assert.Equal(t, []string{"a/A.csproj", "a/A.vcxproj", "b/B.csproj"}, relPaths(results))
}

func TestFindFiles_CommonExcludes(t *testing.T) {
	tmpDir := t.TempDir()
	files := []string{"src/App.csproj"}
	for _, dir := range commonExcludes {
		if dir == ".*" {
			continue
		}
		files = append(files, dir+"/Generated.csproj")
	}
	files = append(files, ".vs/Cache.csproj", ".git/Hook.csproj")
	setupFiles(t, tmpDir, files...)

	results, err := FindFiles(context.Background(), tmpDir,
		WithIncludes("*.csproj"),
		WithCommonExcludes())
	require.NoError(t, err)

	assert.Equal(t, []string{"src/App.csproj"}, relPaths(results))
}

func TestFindFiles_ExcludeByRelativePath(t *testing.T) {
	tmpDir := t.TempDir()
	setupFiles(t, tmpDir, "src/App.csproj", "samples/Demo/Demo.csproj")

	results, err := FindFiles(context.Background(), tmpDir,
		WithIncludes("*.csproj"),
		WithExcludes("samples/Demo"))
	require.NoError(t, err)

	assert.Equal(t, []string{"src/App.csproj"}, relPaths(results))
}

func TestFindFiles_ContextCancellation(t *testing.T) {
	tmpDir := t.TempDir()
	setupFiles(t, tmpDir, "deep/nested/dir/App.csproj")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FindFiles(ctx, tmpDir, WithIncludes("*.csproj"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindFiles_ValidationErrors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name       string
		rootDir    string
		opts       []FindOption
		wantErrMsg string
	}{
		{"empty root directory", "", []FindOption{WithIncludes("*.sln")}, "rootDir cannot be empty"},
		{"no search criteria", tmpDir, nil, "at least one target file or include pattern must be specified"},
		{"invalid include pattern", tmpDir, []FindOption{WithIncludes("[invalid")}, "invalid include pattern"},
		{"invalid exclude pattern", tmpDir, []FindOption{WithIncludes("*.sln"), WithExcludes("[bad")}, "invalid exclude pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FindFiles(context.Background(), tt.rootDir, tt.opts...)
			assert.ErrorContains(t, err, tt.wantErrMsg)
		})
	}
}

func TestFindBuildTarget(t *testing.T) {
	t.Run("prefers the shallowest solution", func(t *testing.T) {
		tmpDir := t.TempDir()
		setupFiles(t, tmpDir, "Root.csproj", "tools/Tools.sln", "z/deeper/Other.sln", "a/deeper/Another.sln")

		target, err := FindBuildTarget(context.Background(), tmpDir)
		require.NoError(t, err)
		assert.Equal(t, "tools/Tools.sln", filepath.ToSlash(target.RelPath))
	})

	t.Run("falls back to project files", func(t *testing.T) {
		tmpDir := t.TempDir()
		setupFiles(t, tmpDir, "src/Lib/Lib.csproj", "src/App.vcxproj", "obj/Stale.csproj")

		target, err := FindBuildTarget(context.Background(), tmpDir)
		require.NoError(t, err)
		assert.Equal(t, "src/App.vcxproj", filepath.ToSlash(target.RelPath))
	})

	t.Run("breaks ties by path", func(t *testing.T) {
		tmpDir := t.TempDir()
		setupFiles(t, tmpDir, "Zeta.sln", "Alpha.sln")

		target, err := FindBuildTarget(context.Background(), tmpDir)
		require.NoError(t, err)
		assert.Equal(t, "Alpha.sln", target.RelPath)
	})

	t.Run("nothing to build", func(t *testing.T) {
		tmpDir := t.TempDir()
		setupFiles(t, tmpDir, "README.md")

		_, err := FindBuildTarget(context.Background(), tmpDir)
		assert.ErrorIs(t, err, ErrNoBuildTarget)
	})
}

type recordedEntry struct {
	level  string
	msg    string
	fields map[string]any
}

type recordingLogger struct {
	entries []recordedEntry
}

func (r *recordingLogger) record(level, msg string, fields []logger.Field) {
	entry := recordedEntry{level: level, msg: msg, fields: map[string]any{}}
	for _, f := range fields {
		entry.fields[f.Key] = f.Value
	}
	r.entries = append(r.entries, entry)
}

func (r *recordingLogger) Info(_ context.Context, msg string, fields ...logger.Field) {
	r.record("info", msg, fields)
}

func (r *recordingLogger) Debug(_ context.Context, msg string, fields ...logger.Field) {
	r.record("debug", msg, fields)
}

func (r *recordingLogger) Warn(_ context.Context, msg string, fields ...logger.Field) {
	r.record("warn", msg, fields)
}

func (r *recordingLogger) Error(_ context.Context, msg string, fields ...logger.Field) {
	r.record("error", msg, fields)
}

func (r *recordingLogger) find(msg string) (recordedEntry, bool) {
	for _, e := range r.entries {
		if e.msg == msg {
			return e, true
		}
	}
	return recordedEntry{}, false
}

func TestFindBuildTarget_LogsThroughGivenLogger(t *testing.T) {
	root := t.TempDir()
	setupFiles(t, root, "App.sln", "tools/Tools.sln")
	log := &recordingLogger{}

	result, err := FindBuildTarget(context.Background(), root, WithLogger(log))
	require.NoError(t, err)
	assert.Equal(t, "App.sln", result.RelPath)

	selected, ok := log.find("Selected build target")
	require.True(t, ok)
	assert.Equal(t, "info", selected.level)
	assert.Equal(t, "App.sln", selected.fields["file"])
	assert.Equal(t, 2, selected.fields["candidates"])

	completed, ok := log.find("File discovery completed")
	require.True(t, ok)
	assert.Equal(t, "debug", completed.level)
}

func TestFindFiles_ExcludedTargetIsLogged(t *testing.T) {
	root := t.TempDir()
	setupFiles(t, root, "obj/Generated.csproj")
	log := &recordingLogger{}

	results, err := FindFiles(context.Background(), root,
		WithTargetFile("obj/Generated.csproj"), WithExcludes("obj/*"), WithLogger(log))
	require.NoError(t, err)
	assert.Empty(t, results)

	excluded, ok := log.find("Target file excluded by pattern")
	require.True(t, ok)
	assert.Equal(t, "obj/Generated.csproj", excluded.fields["file"])
}

func TestFindFiles_DefaultsToSlog(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	root := t.TempDir()
	setupFiles(t, root, "App.sln")

	_, err := FindFiles(context.Background(), root, WithIncludes(SolutionGlobs...))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `msg="File discovery completed"`)
	assert.Contains(t, buf.String(), "files_found=1")
}
