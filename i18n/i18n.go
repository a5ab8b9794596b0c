// Package i18n localizes xmltrans's own user-facing messages.
//
// It wraps gotext with a T() helper; translations are embedded into the
// binary via //go:embed and selected from the usual locale environment
// variables at startup.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the .po translation catalogs.
// Layout: locales/{lang}/LC_MESSAGES/xmltrans.po
//
//go:embed all:locales
var locales embed.FS

const domain = "xmltrans"

var locale *gotext.Locale

// Init loads the catalog for lang, auto-detecting from LANGUAGE, LC_ALL,
// LC_MESSAGES, LANG (gettext order) when lang is empty. Call once at
// startup before any T().
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	locale = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	locale.AddDomain(domain)
	locale.SetDomain(domain)
}

// T translates a message, returning it unchanged when no translation exists.
func T(msgid string) string {
	if locale == nil {
		return msgid
	}
	return locale.Get(msgid)
}

func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return "en"
}
