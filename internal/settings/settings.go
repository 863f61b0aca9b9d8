// Package settings loads the optional TOML file that configures console
// parsing: encodings, summary locale and custom summary patterns.
//
//	source_encoding = "MS932"
//	output_encoding = "UTF-8"
//	locale = "ja"
//
//	[patterns]
//	warnings = '(\d+)\s個の警告'
//	errors = '(\d+)\sエラー'
package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/snyk/cli-extension-msbuild/internal/constants"
	"github.com/snyk/cli-extension-msbuild/pkg/consoleparser"
)

// Settings holds the parser configuration.
type Settings struct {
	SourceEncoding  string
	OutputEncoding  string
	Locale          string
	WarningsPattern string
	ErrorsPattern   string
}

// Default returns the settings used when no file is given.
func Default() Settings {
	return Settings{
		SourceEncoding: consoleparser.DefaultSourceEncoding,
		OutputEncoding: constants.DefaultOutputEncoding,
		Locale:         constants.DefaultSummaryLocale,
	}
}

// Load reads path, falling back to defaults when path is empty, the file does
// not exist, or a value is blank.
func Load(path string) (Settings, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Settings{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		SourceEncoding string `toml:"source_encoding"`
		OutputEncoding string `toml:"output_encoding"`
		Locale         string `toml:"locale"`
		Patterns       struct {
			Warnings string `toml:"warnings"`
			Errors   string `toml:"errors"`
		} `toml:"patterns"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.SourceEncoding = orDefault(raw.SourceEncoding, cfg.SourceEncoding)
	cfg.OutputEncoding = orDefault(raw.OutputEncoding, cfg.OutputEncoding)
	cfg.Locale = orDefault(raw.Locale, cfg.Locale)
	cfg.WarningsPattern = strings.TrimSpace(raw.Patterns.Warnings)
	cfg.ErrorsPattern = strings.TrimSpace(raw.Patterns.Errors)
	return cfg, nil
}

// Override replaces every field for which a non-blank value is given.
func (s Settings) Override(sourceEncoding, outputEncoding, locale string) Settings {
	s.SourceEncoding = orDefault(sourceEncoding, s.SourceEncoding)
	s.OutputEncoding = orDefault(outputEncoding, s.OutputEncoding)
	s.Locale = orDefault(locale, s.Locale)
	return s
}

// ParserOptions converts the settings into console parser options. Custom
// patterns win over the locale; they must be given together.
func (s Settings) ParserOptions() ([]consoleparser.Option, error) {
	var patterns consoleparser.SummaryPatterns
	var err error

	switch {
	case s.WarningsPattern != "" && s.ErrorsPattern != "":
		patterns, err = consoleparser.CompilePatterns(s.WarningsPattern, s.ErrorsPattern)
	case s.WarningsPattern != "" || s.ErrorsPattern != "":
		err = fmt.Errorf("patterns.warnings and patterns.errors must be set together")
	default:
		patterns, err = consoleparser.PatternsForLocale(s.Locale)
	}
	if err != nil {
		return nil, err
	}

	return []consoleparser.Option{
		consoleparser.WithSourceEncoding(s.SourceEncoding),
		consoleparser.WithPatterns(patterns),
	}, nil
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
