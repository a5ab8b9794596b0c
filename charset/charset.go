// Package charset detects the text encoding of strings.xml input files and
// decodes their raw bytes to UTF-8 text.
//
// Android tooling on Windows often saves resource files as UTF-16 with a
// byte-order mark; everything else in practice is UTF-8. Detection order:
//
//  1. UTF-16 BOM (FF FE little-endian, FE FF big-endian)
//  2. BOM-less UTF-16, recognized by null-byte interleaving in the first
//     bytes (ASCII-heavy XML encodes as alternating NUL/char pairs)
//  3. UTF-8 (default)
package charset

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies a detected input encoding.
type Encoding int

const (
	// UTF8 is plain or BOM-prefixed UTF-8.
	UTF8 Encoding = iota
	// UTF16LE is little-endian UTF-16.
	UTF16LE
	// UTF16BE is big-endian UTF-16.
	UTF16BE
)

// String returns the conventional name of the encoding.
func (e Encoding) String() string {
	switch e {
	case UTF16LE:
		return "UTF-16LE"
	case UTF16BE:
		return "UTF-16BE"
	}
	return "UTF-8"
}

// DecodeError reports bytes that are malformed for the detected encoding.
type DecodeError struct {
	Encoding Encoding
	Reason   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s input: %s", e.Encoding, e.Reason)
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect inspects raw file bytes and reports the encoding they appear to use.
// It never fails; malformed content surfaces later in Decode.
func Detect(data []byte) Encoding {
	if bytes.HasPrefix(data, bomUTF16LE) {
		return UTF16LE
	}
	if bytes.HasPrefix(data, bomUTF16BE) {
		return UTF16BE
	}
	if bytes.HasPrefix(data, bomUTF8) {
		return UTF8
	}
	return sniffNullInterleaving(data)
}

// sniffNullInterleaving recognizes BOM-less UTF-16 by the NUL bytes that
// ASCII-range characters produce. XML headers are ASCII, so a strings.xml
// saved as UTF-16 has a NUL in nearly every byte pair near the start.
func sniffNullInterleaving(data []byte) Encoding {
	sample := data
	if len(sample) > 256 {
		sample = sample[:256]
	}
	if len(sample) < 4 {
		return UTF8
	}

	var oddNulls, evenNulls int
	for i, b := range sample {
		if b != 0 {
			continue
		}
		if i%2 == 0 {
			evenNulls++
		} else {
			oddNulls++
		}
	}

	pairs := len(sample) / 2
	// Require NULs in at least half the pairs on one side only.
	if oddNulls > pairs/2 && evenNulls == 0 {
		return UTF16LE // "a\x00b\x00..." — high bytes are NUL
	}
	if evenNulls > pairs/2 && oddNulls == 0 {
		return UTF16BE // "\x00a\x00b..."
	}
	return UTF8
}

// Decode detects the encoding of data and returns its text as a Go string
// (UTF-8, BOM stripped). Malformed input yields a *DecodeError.
func Decode(data []byte) (string, Encoding, error) {
	enc := Detect(data)
	text, err := DecodeAs(data, enc)
	return text, enc, err
}

// DecodeAs decodes data using a known encoding.
func DecodeAs(data []byte, enc Encoding) (string, error) {
	switch enc {
	case UTF16LE, UTF16BE:
		return decodeUTF16(data, enc)
	default:
		data = bytes.TrimPrefix(data, bomUTF8)
		if !utf8.Valid(data) {
			return "", &DecodeError{Encoding: UTF8, Reason: "invalid UTF-8 byte sequence"}
		}
		return string(data), nil
	}
}

func decodeUTF16(data []byte, enc Encoding) (string, error) {
	if len(data)%2 != 0 {
		return "", &DecodeError{Encoding: enc, Reason: fmt.Sprintf("odd byte count %d", len(data))}
	}

	endian := unicode.LittleEndian
	if enc == UTF16BE {
		endian = unicode.BigEndian
	}
	dec := unicode.UTF16(endian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := dec.Bytes(data)
	if err != nil {
		return "", &DecodeError{Encoding: enc, Reason: err.Error()}
	}

	text := trimBOM(string(decoded))
	// x/text substitutes U+FFFD for unpaired surrogates rather than failing.
	if containsReplacement(text) {
		return "", &DecodeError{Encoding: enc, Reason: "unpaired surrogate in input"}
	}
	return text, nil
}

// trimBOM drops a leading U+FEFF left over from the byte-order mark.
func trimBOM(s string) string {
	if r, n := utf8.DecodeRuneInString(s); r == '\uFEFF' {
		return s[n:]
	}
	return s
}

func containsReplacement(s string) bool {
	for _, r := range s {
		if r == utf8.RuneError {
			return true
		}
	}
	return false
}
