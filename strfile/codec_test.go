package strfile

import "testing"

func TestUnescape(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: "Hello", want: "Hello"},
		{name: "escaped quote", raw: `Say \"hi\".`, want: `Say "hi".`},
		{name: "escaped backslash", raw: `C:\\Program Files`, want: `C:\Program Files`},
		{name: "newline", raw: `Line 1\nLine 2`, want: "Line 1\nLine 2"},
		{name: "unknown escape kept", raw: `tab\there`, want: `tab\there`},
		{name: "carriage return kept", raw: `a\rb`, want: `a\rb`},
		{name: "backslash before n is not newline", raw: `\\n`, want: `\n`},
		{name: "trailing lone backslash", raw: `end\`, want: `end\`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Unescape(tc.raw); got != tc.want {
				t.Fatalf("Unescape(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{value: `He said "Hello"`, want: `He said \"Hello\"`},
		{value: "Line 1\nLine 2", want: `Line 1\nLine 2`},
		{value: `Path: C:\App`, want: `Path: C:\\App`},
		{value: `""`, want: `\"\"`},
		{value: `\"`, want: `\\\"`},
		{value: "", want: ""},
	}
	for _, tc := range tests {
		if got := Escape(tc.value); got != tc.want {
			t.Errorf("Escape(%q) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	values := []string{
		"",
		"plain",
		`quote " inside`,
		`backslash \ inside`,
		`\n literal backslash-n`,
		"real\nnewline",
		`trailing backslash \`,
		`mixed \"already\" escaped`,
		`tab\t and \u00e9`,
		"ภาษาไทย ក្រុមហ៊ុន မြန်မာ 👋🏽",
	}
	for _, v := range values {
		if got := Unescape(Escape(v)); got != v {
			t.Errorf("Unescape(Escape(%q)) = %q", v, got)
		}
	}
}
