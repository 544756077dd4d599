// Package i18n localizes dokit's own user-facing strings.
//
// It wraps the gotext library behind simple T() and N() helpers. The
// translation catalogs are embedded in the binary and loaded once at
// startup via Init(); the UI language is auto-detected from the standard
// locale environment variables unless set explicitly.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the translation catalogs.
// Directory structure: locales/{lang}/LC_MESSAGES/dokit.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name for dokit.
const domain = "dokit"

var po *gotext.Locale

// Init loads the catalog for lang. An empty lang auto-detects from
// LANGUAGE, LC_ALL, LC_MESSAGES, LANG (in that order, matching GNU
// gettext). Call once at startup, before any T() or N() call.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates a string, returning the original when no translation
// exists (standard gettext passthrough behavior).
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates with plural forms; the target language's plural formula
// picks the form.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage reads the locale environment following GNU gettext
// conventions.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE can be a colon-separated list; take the first entry.
		if env == "LANGUAGE" {
			val = strings.SplitN(val, ":", 2)[0]
		}
		// Strip the encoding suffix ("ru_RU.UTF-8" -> "ru_RU").
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
