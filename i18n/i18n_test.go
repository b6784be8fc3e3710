package i18n

import (
	"reflect"
	"testing"
)

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func restore(t *testing.T) {
	t.Helper()
	oldPo, oldLang := po, current
	t.Cleanup(func() { po, current = oldPo, oldLang })
}

func TestEnvPreferences(t *testing.T) {
	t.Run("LANGUAGE list comes first", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:th")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		want := []string{"ru_RU", "th", "de_DE"}
		if got := envPreferences(); !reflect.DeepEqual(got, want) {
			t.Fatalf("envPreferences() = %v, want %v", got, want)
		}
	})

	t.Run("C, POSIX and modifiers", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "sr_RS@latin")

		want := []string{"sr_RS"}
		if got := envPreferences(); !reflect.DeepEqual(got, want) {
			t.Fatalf("envPreferences() = %v, want %v", got, want)
		}
	})

	t.Run("nothing set", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := envPreferences(); len(got) != 0 {
			t.Fatalf("envPreferences() = %v, want none", got)
		}
	})
}

func TestMatch(t *testing.T) {
	available := []string{"th"}
	tests := []struct {
		name  string
		prefs []string
		want  string
	}{
		{name: "exact", prefs: []string{"th"}, want: "th"},
		{name: "region and underscore", prefs: []string{"th_TH"}, want: "th"},
		{name: "first usable preference wins", prefs: []string{"ru", "th"}, want: "th"},
		{name: "english before catalog", prefs: []string{"en_US", "th"}, want: "en"},
		{name: "no catalog", prefs: []string{"ru"}, want: "en"},
		{name: "unparsable", prefs: []string{"!!"}, want: "en"},
		{name: "no preferences", prefs: nil, want: "en"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := match(tc.prefs, available); got != tc.want {
				t.Fatalf("match(%v) = %q, want %q", tc.prefs, got, tc.want)
			}
		})
	}
}

func TestAvailable(t *testing.T) {
	if got := Available(); !reflect.DeepEqual(got, []string{"th"}) {
		t.Fatalf("Available() = %v", got)
	}
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	restore(t)
	po = nil

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}
	if got := N("file", "files", 1); got != "file" {
		t.Fatalf("N singular fallback = %q, want %q", got, "file")
	}
	if got := N("file", "files", 2); got != "files" {
		t.Fatalf("N plural fallback = %q, want %q", got, "files")
	}
}

func TestInit(t *testing.T) {
	restore(t)

	if got := Init("th_TH"); got != "th" || Lang() != "th" {
		t.Fatalf("Init(th_TH) = %q, Lang() = %q", got, Lang())
	}
	if got := T("Output directory"); got != "ไดเรกทอรีปลายทาง" {
		t.Fatalf("T(th) = %q", got)
	}
	if got := N("key", "keys", 5); got != "คีย์" {
		t.Fatalf("N(th) = %q", got)
	}
	if got := T("untranslated message"); got != "untranslated message" {
		t.Fatalf("T passthrough = %q", got)
	}

	clearLocaleEnv(t)
	t.Setenv("LANG", "ru_RU.UTF-8")
	if got := Init(""); got != "en" {
		t.Fatalf("Init from environment = %q, want en", got)
	}
	if got := T("Output directory"); got != "Output directory" {
		t.Fatalf("English passthrough = %q", got)
	}
}
