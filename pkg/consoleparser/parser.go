// Package consoleparser scans the console output of an MSBuild invocation.
//
// A Parser sits between the build process and its console sink. Every line is
// decoded from the compiler's code page (MS932 by default), checked against the
// localized "N warnings" / "N errors" summary patterns, optionally normalized
// into the target encoding, and forwarded to the sink. The counters start at
// NotObserved and hold the value of the last summary line that was seen.
//
// A Parser is not safe for concurrent use.
package consoleparser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/snyk/cli-extension-msbuild/pkg/logger"
)

// NotObserved is the counter value before any summary line has been parsed.
const NotObserved = -1

var (
	// ErrNilSink is returned by New when no sink is given.
	ErrNilSink = errors.New("console parser: sink must not be nil")
	// ErrClosed is returned when writing to a closed Parser.
	ErrClosed = errors.New("console parser: closed")
)

// Parser counts MSBuild warnings and errors while forwarding the console to a sink.
type Parser struct {
	out            io.WriteCloser
	sourceName     string
	targetName     string
	source         encoding.Encoding
	target         encoding.Encoding
	transcode      bool
	patterns       SummaryPatterns
	lineTerminator string
	log            logger.Logger

	pending  []byte
	warnings int
	errors   int
	closed   bool
}

type options struct {
	sourceEncoding string
	patterns       SummaryPatterns
	lineTerminator string
	log            logger.Logger
}

// Option configures a Parser.
type Option func(*options)

// WithSourceEncoding overrides the encoding the console bytes are decoded from.
func WithSourceEncoding(name string) Option {
	return func(o *options) {
		o.sourceEncoding = name
	}
}

// WithPatterns replaces the summary patterns, JapanesePatterns by default.
func WithPatterns(p SummaryPatterns) Option {
	return func(o *options) {
		o.patterns = p
	}
}

// WithLineTerminator sets what is appended to every line written to the sink.
func WithLineTerminator(terminator string) Option {
	return func(o *options) {
		o.lineTerminator = terminator
	}
}

// WithLogger sets the logger used for match and parse diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// New returns a Parser writing to out. Lines are transcoded into
// targetEncoding when its name differs from the source encoding name.
func New(out io.WriteCloser, targetEncoding string, opts ...Option) (*Parser, error) {
	if out == nil {
		return nil, ErrNilSink
	}

	o := &options{
		sourceEncoding: DefaultSourceEncoding,
		patterns:       JapanesePatterns,
		lineTerminator: nativeLineTerminator(),
		log:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.patterns.Warnings == nil || o.patterns.Errors == nil {
		return nil, fmt.Errorf("console parser: both summary patterns are required")
	}

	source, err := LookupEncoding(o.sourceEncoding)
	if err != nil {
		return nil, fmt.Errorf("source encoding: %w", err)
	}
	target, err := LookupEncoding(targetEncoding)
	if err != nil {
		return nil, fmt.Errorf("target encoding: %w", err)
	}

	return &Parser{
		out:            out,
		sourceName:     o.sourceEncoding,
		targetName:     targetEncoding,
		source:         source,
		target:         target,
		transcode:      o.sourceEncoding != targetEncoding,
		patterns:       o.patterns,
		lineTerminator: o.lineTerminator,
		log:            o.log,
		warnings:       NotObserved,
		errors:         NotObserved,
	}, nil
}

// Warnings returns the last parsed warning count, or NotObserved.
func (p *Parser) Warnings() int {
	return p.warnings
}

// Errors returns the last parsed error count, or NotObserved.
func (p *Parser) Errors() int {
	return p.errors
}

// SourceEncoding returns the configured source encoding name.
func (p *Parser) SourceEncoding() string {
	return p.sourceName
}

// TargetEncoding returns the configured target encoding name.
func (p *Parser) TargetEncoding() string {
	return p.targetName
}

// Transcoding reports whether lines are normalized into the target encoding.
func (p *Parser) Transcoding() bool {
	return p.transcode
}

// Write splits b into lines and processes every complete one. An incomplete
// trailing line is kept until the next Write or Close.
func (p *Parser) Write(b []byte) (int, error) {
	if p.closed {
		return 0, ErrClosed
	}

	n := len(b)
	for len(b) > 0 {
		idx := bytes.IndexByte(b, '\n')
		if idx == -1 {
			p.pending = append(p.pending, b...)
			break
		}

		line := b[:idx+1]
		if len(p.pending) > 0 {
			line = append(p.pending, line...)
			p.pending = nil
		}
		if err := p.ProcessLine(line); err != nil {
			return n - len(b), err
		}
		b = b[idx+1:]
	}
	return n, nil
}

// ProcessLine handles the raw bytes of a single line. A trailing CR/LF is
// tolerated and stripped.
func (p *Parser) ProcessLine(raw []byte) error {
	if p.closed {
		return ErrClosed
	}

	line, err := p.decode(raw)
	if err != nil {
		return err
	}
	line = strings.TrimRight(line, "\r\n")

	p.count(line)

	out, err := p.normalize(line)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(p.out, out+p.lineTerminator); err != nil {
		p.log.Error(context.Background(), "console sink rejected a line", logger.Err(err))
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}

// Close flushes a pending partial line and closes the sink. Calling Close
// again is a no-op.
func (p *Parser) Close() error {
	if p.closed {
		return nil
	}

	var flushErr error
	if len(p.pending) > 0 {
		line := p.pending
		p.pending = nil
		flushErr = p.ProcessLine(line)
	}
	p.closed = true

	return errors.Join(flushErr, p.out.Close())
}

// decode converts raw into UTF-8. Malformed sequences become U+FFFD.
func (p *Parser) decode(raw []byte) (string, error) {
	decoded, err := p.source.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode line from %s: %w", p.sourceName, err)
	}
	return string(decoded), nil
}

// count updates the counters from a summary line. Warnings take priority: an
// errors match is only considered when the warnings pattern does not match.
func (p *Parser) count(line string) {
	if m := p.patterns.Warnings.FindStringSubmatch(line); m != nil {
		if n, ok := p.parseCount("warnings", m[1]); ok {
			p.warnings = n
		}
		return
	}
	if m := p.patterns.Errors.FindStringSubmatch(line); m != nil {
		if n, ok := p.parseCount("errors", m[1]); ok {
			p.errors = n
		}
	}
}

// parseCount is best effort: a count that does not parse leaves the counter
// untouched.
func (p *Parser) parseCount(counter, s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		p.log.Debug(context.Background(), "ignoring unparsable summary count",
			logger.Attr("counter", counter), logger.Attr("value", s), logger.Err(err))
		return 0, false
	}
	p.log.Debug(context.Background(), "summary line matched",
		logger.Attr("counter", counter), logger.Attr("value", n))
	return n, true
}

// normalize round-trips line through the target encoding so that only
// characters representable there reach the sink. Others become '?'.
func (p *Parser) normalize(line string) (string, error) {
	if !p.transcode {
		return line, nil
	}
	encoded, _, err := transform.String(substituteUnsupported(p.target.NewEncoder()), line)
	if err != nil {
		return "", fmt.Errorf("encode line to %s: %w", p.targetName, err)
	}
	decoded, err := p.target.NewDecoder().String(encoded)
	if err != nil {
		return "", fmt.Errorf("decode line from %s: %w", p.targetName, err)
	}
	return decoded, nil
}

func nativeLineTerminator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}
