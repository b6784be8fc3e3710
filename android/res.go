package android

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/stringsmith/strfile"
)

// FileName is the resource file holding string resources.
const FileName = "strings.xml"

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

// ParseFile reads and structurally parses a strings.xml file.
func ParseFile(path string) (*ParsedFile, error) {
	content, err := strfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseWithStructure(content), nil
}

// ---------------------------------------------------------------------------
// Language detection from res/ directory
// ---------------------------------------------------------------------------

// DetectLanguages scans an Android res/ directory for values-XX/ directories
// that contain strings.xml and returns the language codes.
func DetectLanguages(resDir string) []string {
	entries, err := os.ReadDir(resDir)
	if err != nil {
		return nil
	}

	var langs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		lang, ok := LangFromDir(entry.Name())
		if !ok || lang == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(resDir, entry.Name(), FileName)); err == nil {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}

// LangFromDir returns the language of a values directory: "" for the default
// "values", "pt-BR" for "values-pt-rBR". ok is false for other directories.
func LangFromDir(dir string) (lang string, ok bool) {
	if dir == "values" {
		return "", true
	}
	if !strings.HasPrefix(dir, "values-") {
		return "", false
	}
	return androidLocaleToStandard(strings.TrimPrefix(dir, "values-")), true
}

// AndroidLocaleDirName converts a standard language code to an Android
// values directory name (e.g., "pt-BR" -> "values-pt-rBR", "ru" -> "values-ru").
func AndroidLocaleDirName(lang string) string {
	return "values-" + standardToAndroidLocale(lang)
}

// StringsXMLPath returns the path to strings.xml for a given language.
func StringsXMLPath(resDir, lang string) string {
	return filepath.Join(resDir, AndroidLocaleDirName(lang), FileName)
}

// SourceStringsXMLPath returns the path to the default (source) strings.xml.
func SourceStringsXMLPath(resDir string) string {
	return filepath.Join(resDir, "values", FileName)
}

// androidLocaleToStandard converts Android locale format to standard BCP-47.
// e.g., "pt-rBR" -> "pt-BR", "zh-rCN" -> "zh-CN", "ru" -> "ru"
func androidLocaleToStandard(androidLocale string) string {
	if idx := strings.Index(androidLocale, "-r"); idx >= 0 {
		return androidLocale[:idx] + "-" + androidLocale[idx+2:]
	}
	return androidLocale
}

// standardToAndroidLocale converts standard BCP-47 to Android locale format.
// e.g., "pt-BR" -> "pt-rBR", "zh-CN" -> "zh-rCN", "ru" -> "ru"
func standardToAndroidLocale(lang string) string {
	lang = strings.ReplaceAll(lang, "_", "-")
	parts := strings.SplitN(lang, "-", 2)
	if len(parts) == 2 && len(parts[1]) > 0 {
		return parts[0] + "-r" + parts[1]
	}
	return lang
}

// IsResourceFile reports whether path names a strings.xml inside a values
// directory ("res/values-th/strings.xml").
func IsResourceFile(path string) bool {
	path = filepath.ToSlash(path)
	if !strings.EqualFold(filepath.Base(path), FileName) {
		return false
	}
	parent := filepath.Base(filepath.Dir(path))
	_, ok := LangFromDir(parent)
	return ok
}
