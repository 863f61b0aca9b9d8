package consoleparser

import (
	"fmt"
	"regexp"
	"strings"
)

// SummaryPatterns match the "N warnings" and "N errors" lines MSBuild prints
// at the end of a build. The first capture group of each expression holds the
// count.
type SummaryPatterns struct {
	Warnings *regexp.Regexp
	Errors   *regexp.Regexp
}

var (
	// JapanesePatterns match the ja-JP MSBuild console, e.g. "    3 個の警告".
	JapanesePatterns = SummaryPatterns{
		Warnings: regexp.MustCompile(`(\d+)\s個の警告`),
		Errors:   regexp.MustCompile(`(\d+)\sエラー`),
	}

	// EnglishPatterns match the en-US MSBuild console, e.g. "    3 Warning(s)".
	EnglishPatterns = SummaryPatterns{
		Warnings: regexp.MustCompile(`(\d+)\s+Warning\(s\)`),
		Errors:   regexp.MustCompile(`(\d+)\s+Error\(s\)`),
	}
)

// PatternsForLocale returns the built-in patterns for a console locale.
func PatternsForLocale(locale string) (SummaryPatterns, error) {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "", "ja", "ja-jp":
		return JapanesePatterns, nil
	case "en", "en-us":
		return EnglishPatterns, nil
	default:
		return SummaryPatterns{}, fmt.Errorf("unsupported summary locale %q (use 'ja' or 'en')", locale)
	}
}

// CompilePatterns compiles custom summary expressions. Each one needs a
// capture group for the count.
func CompilePatterns(warnings, errs string) (SummaryPatterns, error) {
	w, err := compileCounter("warnings", warnings)
	if err != nil {
		return SummaryPatterns{}, err
	}
	e, err := compileCounter("errors", errs)
	if err != nil {
		return SummaryPatterns{}, err
	}
	return SummaryPatterns{Warnings: w, Errors: e}, nil
}

func compileCounter(name, expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid %s pattern: %w", name, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("%s pattern %q needs a capture group for the count", name, expr)
	}
	return re, nil
}
