package consoleparser

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultSourceEncoding is the code page of the Japanese MSBuild console.
const DefaultSourceEncoding = "MS932"

// ErrUnknownEncoding is returned for encoding names that cannot be resolved.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Windows code page names that the IANA index does not know about.
var encodingAliases = map[string]encoding.Encoding{
	"ms932":       japanese.ShiftJIS,
	"cp932":       japanese.ShiftJIS,
	"windows-31j": japanese.ShiftJIS,
	"sjis":        japanese.ShiftJIS,
	"utf8":        unicode.UTF8,
}

// LookupEncoding resolves an encoding name, case-insensitively.
func LookupEncoding(name string) (encoding.Encoding, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownEncoding)
	}
	if enc, ok := encodingAliases[strings.ToLower(trimmed)]; ok {
		return enc, nil
	}

	enc, err := ianaindex.IANA.Encoding(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownEncoding, name, err)
	}
	// ianaindex knows the name but has no implementation for it
	if enc == nil {
		return nil, fmt.Errorf("%w %q: not supported", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// unsupportedReplacement is written for runes the target encoding lacks.
const unsupportedReplacement = '?'

// repertoireError is implemented by the errors x/text encoders return for
// runes outside their repertoire.
type repertoireError interface {
	Replacement() byte
}

type substitutingEncoder struct {
	enc *encoding.Encoder
}

// substituteUnsupported wraps enc so that unencodable runes are written as
// '?' instead of failing the transform.
func substituteUnsupported(enc *encoding.Encoder) transform.Transformer {
	return substitutingEncoder{enc: enc}
}

func (s substitutingEncoder) Reset() {
	s.enc.Reset()
}

func (s substitutingEncoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	nDst, nSrc, err = s.enc.Transform(dst, src, atEOF)
	for err != nil {
		var rerr repertoireError
		if !errors.As(err, &rerr) {
			return nDst, nSrc, err
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		_, size := utf8.DecodeRune(src[nSrc:])
		dst[nDst] = unsupportedReplacement
		nDst++
		err = nil
		if nSrc += size; nSrc < len(src) {
			var dn, sn int
			dn, sn, err = s.enc.Transform(dst[nDst:], src[nSrc:], atEOF)
			nDst += dn
			nSrc += sn
		}
	}
	return nDst, nSrc, nil
}
