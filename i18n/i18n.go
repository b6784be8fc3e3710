// Package i18n translates the user-facing messages of the stringsmith CLI.
//
// Catalogs are gettext .po files embedded under locales/. Messages are
// written in English, so English needs no catalog: T and N pass msgids
// through until Init selects a catalog.
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

// locales holds one directory per language: locales/{lang}/LC_MESSAGES/stringsmith.po
//
//go:embed all:locales
var locales embed.FS

const domain = "stringsmith"

// source is the language the msgids are written in.
const source = "en"

var (
	po      *gotext.Locale
	current = source
)

// Init selects the embedded catalog that best matches lang and returns the
// chosen language. When lang is empty the preferences come from LANGUAGE,
// LC_ALL, LC_MESSAGES and LANG, in that order. Without a usable match the
// messages stay in English.
func Init(lang string) string {
	var prefs []string
	if lang != "" {
		prefs = []string{lang}
	} else {
		prefs = envPreferences()
	}

	current = match(prefs, Available())
	if current == source {
		po = nil
		return current
	}
	po = gotext.NewLocaleFSWithPath(current, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
	return current
}

// Lang returns the language of the active catalog.
func Lang() string {
	return current
}

// Available lists the languages that have an embedded catalog.
func Available() []string {
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil
	}
	var langs []string
	for _, e := range entries {
		if e.IsDir() {
			langs = append(langs, e.Name())
		}
	}
	sort.Strings(langs)
	return langs
}

// T translates msgid, or returns it unchanged.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a message with plural forms chosen by n.
func N(singular, plural string, n int) string {
	if po != nil {
		return po.GetN(singular, plural, n)
	}
	if n == 1 {
		return singular
	}
	return plural
}

// match picks the catalog closest to the first preference x/text can match
// with at least low confidence.
func match(prefs, available []string) string {
	var want []language.Tag
	for _, p := range prefs {
		if tag, err := language.Parse(strings.ReplaceAll(p, "_", "-")); err == nil {
			want = append(want, tag)
		}
	}
	if len(want) == 0 || len(available) == 0 {
		return source
	}

	supported := []language.Tag{language.English}
	for _, a := range available {
		supported = append(supported, language.Make(a))
	}
	_, idx, conf := language.NewMatcher(supported).Match(want...)
	if conf == language.No || idx == 0 {
		return source
	}
	return available[idx-1]
}

// envPreferences reads the gettext locale variables. Every entry of a
// LANGUAGE list is a preference; encodings and modifiers are dropped, and
// the C and POSIX locales are ignored.
func envPreferences() []string {
	var prefs []string
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		for _, v := range strings.Split(val, ":") {
			if i := strings.IndexAny(v, ".@"); i >= 0 {
				v = v[:i]
			}
			if v == "" || v == "C" || v == "POSIX" {
				continue
			}
			prefs = append(prefs, v)
		}
	}
	return prefs
}
