// Package placeholder shields printf-style format specifiers and escape
// sequences from the translation provider.
//
// A string like "Hello %1$s, you have %2$d messages" is rewritten to
// "Hello __TOK0__, you have __TOK1__ messages" before translation, and the
// sentinels are substituted back afterwards. Sentinels are matched by
// identity, not by position — languages reorder words freely, and the
// provider may legally move __TOK1__ in front of __TOK0__.
package placeholder

import (
	"fmt"
	"regexp"
	"strings"
)

// pattern recognizes Android/printf format specifiers and the escape
// sequences AAPT treats as literals: %1$s, %s, %d, %i, %f, \n, \t, \r.
var pattern = regexp.MustCompile(`%\d+\$[sdif]|%[sdif]|\\n|\\t|\\r`)

// Token is one masked placeholder occurrence.
type Token struct {
	// Sentinel is the opaque marker inserted into the masked text.
	Sentinel string
	// Value is the original specifier the sentinel stands for.
	Value string
}

// MismatchError reports a sentinel that did not survive translation.
// It is a per-entry warning, not a fatal pipeline error: callers are
// expected to fall back to the untranslated source text.
type MismatchError struct {
	// Sentinel is the marker missing from the translated text.
	Sentinel string
	// Value is the specifier the marker protected.
	Value string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("placeholder %s (%s) missing from translated text", e.Sentinel, e.Value)
}

// Mask replaces every format specifier in text with a numbered sentinel and
// returns the masked text plus the tokens in occurrence order. Text without
// specifiers is returned unchanged with a nil token slice.
func Mask(text string) (string, []Token) {
	var tokens []Token
	masked := pattern.ReplaceAllStringFunc(text, func(match string) string {
		sentinel := fmt.Sprintf("__TOK%d__", len(tokens))
		tokens = append(tokens, Token{Sentinel: sentinel, Value: match})
		return sentinel
	})
	return masked, tokens
}

// Restore substitutes sentinels in translated text back to their original
// specifiers. Every token must appear in the text; the first missing one is
// reported as a *MismatchError, and the partially-restored text should be
// discarded by the caller.
func Restore(text string, tokens []Token) (string, error) {
	for _, tok := range tokens {
		if !strings.Contains(text, tok.Sentinel) {
			return "", &MismatchError{Sentinel: tok.Sentinel, Value: tok.Value}
		}
		text = strings.Replace(text, tok.Sentinel, tok.Value, 1)
	}
	return text, nil
}

// Specifiers returns the format specifiers found in text, in order of
// occurrence. Used to verify that a translation preserved the full set.
func Specifiers(text string) []string {
	return pattern.FindAllString(text, -1)
}

// SameSet reports whether two texts carry the same multiset of format
// specifiers. Order is allowed to differ (translation reorders words);
// dropped, duplicated, or corrupted specifiers make it return false.
func SameSet(original, translated string) bool {
	a := Specifiers(original)
	b := Specifiers(translated)
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		counts[s]--
		if counts[s] < 0 {
			return false
		}
	}
	return true
}
