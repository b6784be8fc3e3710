// Package langmeta provides language metadata (display names and emoji
// flags) and language-code detection from file names.
package langmeta

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	Code string
	Name string
	Flag string
}

// names holds the labels shown for the languages the editor is used with
// most. Other languages get their native name from CLDR.
var names = map[string]string{
	"en": "English",
	"th": "ไทย (Thai)",
	"km": "ខ្មែរ (Khmer)",
	"my": "မြန်မာ (Myanmar)",
	"zh": "中文 (Chinese)",
	"ja": "日本語 (Japanese)",
	"ko": "한국어 (Korean)",
	"vi": "Tiếng Việt (Vietnamese)",
	"id": "Bahasa Indonesia",
	"ms": "Bahasa Melayu",
	"tl": "Filipino",
	"es": "Español (Spanish)",
	"fr": "Français (French)",
	"de": "Deutsch (German)",
	"it": "Italiano (Italian)",
	"pt": "Português (Portuguese)",
	"ru": "Русский (Russian)",
	"ar": "العربية (Arabic)",
	"hi": "हिन्दी (Hindi)",
}

// Canonicalize returns the BCP-47 form of a language code
// ("pt_br" -> "pt-BR"). Codes that do not parse are lower-cased.
func Canonicalize(code string) string {
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	return tag.String()
}

// Name returns the display name of code, or the upper-cased code when the
// language is unknown. Regional variants use their CLDR native name.
func Name(code string) string {
	canon := Canonicalize(code)
	if n, ok := names[canon]; ok {
		return n
	}
	tag, err := language.Parse(canon)
	if err != nil {
		return strings.ToUpper(code)
	}
	if _, conf := tag.Region(); conf != language.Exact {
		if n, ok := names[baseOf(tag)]; ok {
			return n
		}
	}
	if self := display.Self.Name(tag); self != "" {
		return self
	}
	return strings.ToUpper(code)
}

func baseOf(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// Flag returns the emoji flag of the most likely region for code, or "".
func Flag(code string) string {
	tag, err := language.Parse(Canonicalize(code))
	if err != nil {
		return ""
	}
	region, conf := tag.Region()
	if conf == language.No {
		return ""
	}
	return regionFlag(region.String())
}

// regionFlag converts a two-letter region code to regional indicator symbols.
func regionFlag(region string) string {
	if len(region) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range strings.ToUpper(region) {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + c - 'A')
	}
	return b.String()
}

// Resolve returns best-effort metadata for code.
func Resolve(code string) Meta {
	return Meta{Code: code, Name: Name(code), Flag: Flag(code)}
}

// ---------------------------------------------------------------------------
// File names
// ---------------------------------------------------------------------------

var filenamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^([a-z]{2})$`),          // en
	regexp.MustCompile(`(?i)^([a-z]{2})_[a-z]{2}$`), // en_US
	regexp.MustCompile(`(?i)_([a-z]{2})_[a-z]{2}$`), // Localizable_en_US
	regexp.MustCompile(`(?i)_([a-z]{2})$`),          // Localizable_en
}

// FromFilename derives a language code from a translation file name such as
// "th.strings", "en_US.strings" or "Localizable_km.strings". The region is
// dropped. Names matching no pattern give the lower-cased base name.
func FromFilename(name string) string {
	base := strings.TrimSuffix(name, extOf(name))
	for _, re := range filenamePatterns {
		if m := re.FindStringSubmatch(base); m != nil {
			return strings.ToLower(m[1])
		}
	}
	return strings.ToLower(base)
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}

var reLangSuffix = regexp.MustCompile(`(?i)[._-][a-z]{2}([_-][a-z]{2})?\.strings$`)
var reBareLang = regexp.MustCompile(`(?i)^[a-z]{2}([_-][a-z]{2})?$`)

// ProjectBaseName returns the part of a .strings file name before its
// language suffix ("Localizable_en.strings" -> "Localizable"), or "" when
// the name is only a language code.
func ProjectBaseName(name string) string {
	base := reLangSuffix.ReplaceAllString(name, "")
	if base == name {
		base = strings.TrimSuffix(name, extOf(name))
	}
	if base == "" || reBareLang.MatchString(base) {
		return ""
	}
	return base
}
