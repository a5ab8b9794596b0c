// Package langmeta maps two-letter language codes to display names for CLI
// output and normalizes the code spellings users type (ES, es_mx, pt-br).
package langmeta

import (
	"sort"
	"strings"
)

// names holds the native display name per base language code. Translation
// providers accept any two-letter ISO 639-1 code; this table only drives
// what the CLI prints, so an unknown code is not an error.
var names = map[string]string{
	"ar": "العربية",
	"bg": "Български",
	"ca": "Català",
	"cs": "Čeština",
	"da": "Dansk",
	"de": "Deutsch",
	"el": "Ελληνικά",
	"en": "English",
	"es": "Español",
	"et": "Eesti",
	"eu": "Euskara",
	"fa": "فارسی",
	"fi": "Suomi",
	"fr": "Français",
	"gl": "Galego",
	"he": "עברית",
	"hi": "हिन्दी",
	"hr": "Hrvatski",
	"hu": "Magyar",
	"id": "Bahasa Indonesia",
	"it": "Italiano",
	"ja": "日本語",
	"ko": "한국어",
	"lt": "Lietuvių",
	"lv": "Latviešu",
	"nb": "Norsk bokmål",
	"nl": "Nederlands",
	"pl": "Polski",
	"pt": "Português",
	"ro": "Română",
	"ru": "Русский",
	"sk": "Slovenčina",
	"sl": "Slovenščina",
	"sr": "Српски",
	"sv": "Svenska",
	"th": "ไทย",
	"tr": "Türkçe",
	"uk": "Українська",
	"vi": "Tiếng Việt",
	"zh": "中文",
}

// Normalize canonicalizes a user-supplied language code: trims whitespace,
// converts pt_br / PT-BR style spellings to pt-BR, lowercases bare codes.
func Normalize(code string) string {
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if code == "" {
		return ""
	}
	parts := strings.SplitN(code, "-", 2)
	parts[0] = strings.ToLower(parts[0])
	if len(parts) == 2 {
		parts[1] = strings.ToUpper(parts[1])
		return parts[0] + "-" + parts[1]
	}
	return parts[0]
}

// Name returns the native display name for a code, falling back to the base
// language for regional variants and to the code itself when unknown.
func Name(code string) string {
	norm := Normalize(code)
	if n, ok := names[norm]; ok {
		return n
	}
	if base, _, found := strings.Cut(norm, "-"); found {
		if n, ok := names[base]; ok {
			return n
		}
	}
	return code
}

// Known reports whether the base language of code is in the registry.
func Known(code string) bool {
	base, _, _ := strings.Cut(Normalize(code), "-")
	_, ok := names[base]
	return ok
}

// Codes returns the registered base language codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(names))
	for c := range names {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
