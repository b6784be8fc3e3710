package android

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/minios-linux/stringsmith/kvmap"
)

const sampleXML = `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <!-- General -->
    <string name="app_name" translatable="false">My App</string>
    <string name="welcome">Welcome to \"Home\"</string>

    <!--
      Multi-line comment
    -->
    <string name="terms">Line one
line two</string>
    <string-array name="planets">
        <item>Mercury</item>
    </string-array>
</resources>
`

func joinLines(items []Item) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 && !it.SameLine {
			b.WriteString("\n")
		}
		b.WriteString(it.Line)
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Parse tests
// ---------------------------------------------------------------------------

func TestParse_BasicString(t *testing.T) {
	m := Parse(sampleXML)

	want := map[string]string{
		"app_name": "My App",
		"welcome":  `Welcome to "Home"`,
		"terms":    "Line one\nline two",
	}
	if got := m.ToMap(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse() = %v, want %v", got, want)
	}
}

func TestParse_CommentedOutStringIgnored(t *testing.T) {
	m := Parse(`<resources>
    <!-- <string name="old">Old</string> -->
    <string name="new">New</string>
</resources>`)

	if m.Has("old") || m.Value("new") != "New" {
		t.Fatalf("Parse() = %v", m.ToMap())
	}
}

func TestParseDetailed_Duplicates(t *testing.T) {
	content := `<resources>
    <!--
    <string name="k">commented</string>
    -->
    <string name="k">first</string>
    <string name="other">x</string>
    <string name="k">second</string>
</resources>`

	m, report := ParseDetailed(content)
	if v := m.Value("k"); v != "second" {
		t.Fatalf("k = %q, want latest value", v)
	}
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"other", "k"}) {
		t.Fatalf("Keys() = %v", got)
	}
	if report.Count != 1 {
		t.Fatalf("Count = %d, want 1", report.Count)
	}
	occ := report.Details[0].Occurrences
	if len(occ) != 2 || occ[0].Line != 5 || occ[1].Line != 7 || !occ[1].Used || occ[0].Used {
		t.Fatalf("occurrences = %+v", occ)
	}
}

func TestParse_Empty(t *testing.T) {
	if m := Parse("  \n"); m.Len() != 0 {
		t.Fatalf("Parse(blank) = %v", m.ToMap())
	}
	if pf := ParseWithStructure(""); len(pf.Structure) != 0 || pf.Data.Len() != 0 {
		t.Fatalf("ParseWithStructure(\"\") = %+v", pf)
	}
}

// ---------------------------------------------------------------------------
// Structure tests
// ---------------------------------------------------------------------------

func TestParseWithStructure_Classification(t *testing.T) {
	pf := ParseWithStructure(sampleXML)

	if got := joinLines(pf.Structure); got != sampleXML {
		t.Fatalf("joined lines differ from input:\n%s", got)
	}

	wantKinds := []ItemKind{
		ItemHeader, ItemHeader,
		ItemComment, ItemString, ItemString,
		ItemBlank,
		ItemComment, // three lines
		ItemString,  // two lines
		ItemHeader, ItemHeader, ItemHeader, // string-array kept verbatim
		ItemFooter,
		ItemBlank,
	}
	if len(pf.Structure) != len(wantKinds) {
		t.Fatalf("got %d items, want %d", len(pf.Structure), len(wantKinds))
	}
	for i, want := range wantKinds {
		if got := pf.Structure[i].Kind; got != want {
			t.Errorf("item %d (%q) kind = %v, want %v", i, pf.Structure[i].Line, got, want)
		}
	}

	appName := pf.Structure[3]
	if appName.Attributes != `translatable="false"` || appName.Indent != "    " {
		t.Errorf("app_name item = %+v", appName)
	}
	if terms := pf.Structure[7]; terms.Value != "Line one\nline two" {
		t.Errorf("terms value = %q", terms.Value)
	}
}

func TestMarshalWithStructure_RoundTripIdentity(t *testing.T) {
	inputs := map[string]string{
		"sample":       sampleXML,
		"crlf":         "<?xml version=\"1.0\"?>\r\n<resources>\r\n  <string name=\"a\">A</string>\r\n</resources>\r\n",
		"no newline":   `<resources><!-- x --></resources>`,
		"entities":     `<resources>` + "\n" + `	<string name="e">&lt;b&gt; &amp; &#169; \'q\'</string>` + "\n" + `</resources>`,
		"trailing":     "<resources>\n    <string name=\"k\">v</string> <!-- note -->\n</resources>",
		"unterminated": "<resources>\n<!-- open\n<string name=\"k\">v</string>",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			pf := ParseWithStructure(input)
			if got := MarshalWithStructure(pf.Data, pf.Structure); got != input {
				t.Fatalf("round trip changed content:\ngot:  %q\nwant: %q", got, input)
			}
		})
	}
}

func TestMarshalWithStructure_Edits(t *testing.T) {
	pf := ParseWithStructure(sampleXML)
	pf.Data.Set("app_name", "Your App")
	pf.Data.Set("terms", "A & B")
	pf.Data.Delete("welcome")

	got := MarshalWithStructure(pf.Data, pf.Structure)
	for _, want := range []string{
		`    <string name="app_name" translatable="false">Your App</string>`,
		`    <string name="terms">A &amp; B</string>`,
		"    <!-- General -->",
		`        <item>Mercury</item>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("export missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "welcome") || strings.Contains(got, "line two") {
		t.Fatalf("removed or replaced content still present:\n%s", got)
	}
}

func TestMarshalWithStructure_EditKeepsTrailingText(t *testing.T) {
	pf := ParseWithStructure("<resources>\n    <string name=\"k\">v</string> <!-- note -->\n</resources>")
	pf.Data.Set("k", "w")

	want := "<resources>\n    <string name=\"k\">w</string> <!-- note -->\n</resources>"
	if got := MarshalWithStructure(pf.Data, pf.Structure); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMarshalWithStructure_NewEntriesBeforeFooter(t *testing.T) {
	pf := ParseWithStructure("<resources>\n    <string name=\"a\">1</string>\n</resources>\n")
	pf.Data.Set("b", "2")

	want := "<resources>\n    <string name=\"a\">1</string>\n\n" + NewEntriesComment +
		"\n    <string name=\"b\">2</string>\n</resources>\n"
	if got := MarshalWithStructure(pf.Data, pf.Structure); got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}

func TestMarshalWithStructure_NoFooterAppends(t *testing.T) {
	pf := ParseWithStructure("<resources>\n\n")
	pf.Data.Set("b", "2")

	want := "<resources>\n\n\n" + NewEntriesComment + "\n    <string name=\"b\">2</string>"
	if got := MarshalWithStructure(pf.Data, pf.Structure); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseWithStructure_SeveralStringsOnOneLine(t *testing.T) {
	content := "<resources>\n    <string name=\"a\">x</string> <string name=\"b\">y</string> <!-- n -->\n</resources>"
	pf := ParseWithStructure(content)

	if !reflect.DeepEqual(pf.Data.ToMap(), Parse(content).ToMap()) {
		t.Fatalf("structural data %v differs from strict %v", pf.Data.ToMap(), Parse(content).ToMap())
	}
	if got := pf.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Keys() = %v", got)
	}
	if joinLines(pf.Structure) != content {
		t.Fatalf("joined items differ from input: %q", joinLines(pf.Structure))
	}

	tests := []struct {
		name string
		edit func(m *kvmap.Map)
		want string
	}{
		{
			name: "unchanged",
			edit: func(*kvmap.Map) {},
			want: content,
		},
		{
			name: "edit second",
			edit: func(m *kvmap.Map) { m.Set("b", "z") },
			want: "<resources>\n    <string name=\"a\">x</string> <string name=\"b\">z</string> <!-- n -->\n</resources>",
		},
		{
			name: "drop first",
			edit: func(m *kvmap.Map) { m.Delete("a") },
			want: "<resources>\n <string name=\"b\">y</string> <!-- n -->\n</resources>",
		},
		{
			name: "drop second",
			edit: func(m *kvmap.Map) { m.Delete("b") },
			want: "<resources>\n    <string name=\"a\">x</string>\n</resources>",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := pf.Data.Clone()
			tc.edit(m)
			if got := MarshalWithStructure(m, pf.Structure); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMarshalWithStructure_DuplicatesCollapseToLatest(t *testing.T) {
	pf := ParseWithStructure(`<resources>
    <string name="k">first</string>
    <string name="k">second</string>
</resources>`)

	got := MarshalWithStructure(pf.Data, pf.Structure)
	want := "<resources>\n    <string name=\"k\">second</string>\n</resources>"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMarshal(t *testing.T) {
	m := kvmap.FromPairs("hello", "Hi & bye", "android_ok + ok", "OK")

	want := `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="hello">Hi &amp; bye</string>
    <string name="ok">OK</string>
</resources>
`
	if got := Marshal(m); got != want {
		t.Fatalf("Marshal() =\n%s\nwant\n%s", got, want)
	}
	if got := MarshalWithStructure(m, nil); got != want {
		t.Fatal("empty structure should fall back to Marshal")
	}
}

// ---------------------------------------------------------------------------
// Entity codec
// ---------------------------------------------------------------------------

func TestDecode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "&lt;b&gt; &amp; &quot;x&quot; &apos;", want: `<b> & "x" '`},
		{in: "&#65;&#x42;&#X43;", want: "ABC"},
		{in: `it\'s \"ok\"`, want: `it's "ok"`},
		{in: `a\nb\tc`, want: "a\nb\tc"},
		{in: `\\n`, want: `\n`},
		{in: `\@user \?`, want: "@user ?"},
		{in: `\x`, want: `\x`},
		{in: "&amp;lt;", want: "&lt;"},
		{in: "&bogus; & alone", want: "&bogus; & alone"},
		{in: "<![CDATA[<b>x</b> &amp;]]>", want: "<b>x</b> &amp;"},
		{in: "<b>bold</b>", want: "<b>bold</b>"},
	}
	for _, tc := range tests {
		if got := Decode(tc.in); got != tc.want {
			t.Errorf("Decode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `Tom's "cat"`, want: `Tom\'s \"cat\"`},
		{in: "a < b & c > d", want: "a &lt; b &amp; c &gt; d"},
		{in: "<b>bold</b> & co", want: "<b>bold</b> &amp; co"},
		{in: "a\nb\tc", want: `a\nb\tc`},
		{in: `C:\dir`, want: `C:\\dir`},
		{in: "ยืนยัน", want: "ยืนยัน"},
	}
	for _, tc := range tests {
		if got := Encode(tc.in); got != tc.want {
			t.Errorf("Encode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []string{
		"",
		`quote " and apostrophe '`,
		`backslash \ and \n literal`,
		"real\nnewline\tand tab",
		"&amp; literal entity text",
		"&#65; looks numeric",
		"<b>markup</b> & more",
		"<![CDATA[raw]]> <i>x</i>",
		"</string> injection <b>",
		`\@ \?`,
		"ဘာသာ ភាសា ภาษา 🎉",
	}
	for _, v := range values {
		if got := Decode(Encode(v)); got != v {
			t.Errorf("Decode(Encode(%q)) = %q", v, got)
		}
	}
}

func TestIsAndroidXML(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{content: sampleXML, want: true},
		{content: `<resources tools:ignore="x"><string name="a">b</string></resources>`, want: true},
		{content: `<resources></resources>`, want: false},
		{content: `"a" = "b";`, want: false},
	}
	for _, tc := range tests {
		if got := IsAndroidXML(tc.content); got != tc.want {
			t.Errorf("IsAndroidXML(%q) = %v, want %v", tc.content, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// res/ helpers
// ---------------------------------------------------------------------------

func TestDetectLanguages(t *testing.T) {
	res := t.TempDir()
	for _, dir := range []string{"values", "values-pt-rBR", "values-ru"} {
		path := filepath.Join(res, dir, FileName)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("<resources/>"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(res, "values-night"), 0755); err != nil {
		t.Fatal(err)
	}

	if got := DetectLanguages(res); !reflect.DeepEqual(got, []string{"pt-BR", "ru"}) {
		t.Fatalf("DetectLanguages() = %v", got)
	}
}

func TestLocaleDirs(t *testing.T) {
	tests := []struct {
		lang string
		dir  string
	}{
		{lang: "pt-BR", dir: "values-pt-rBR"},
		{lang: "zh_CN", dir: "values-zh-rCN"},
		{lang: "ru", dir: "values-ru"},
	}
	for _, tc := range tests {
		if got := AndroidLocaleDirName(tc.lang); got != tc.dir {
			t.Errorf("AndroidLocaleDirName(%q) = %q, want %q", tc.lang, got, tc.dir)
		}
	}

	if lang, ok := LangFromDir("values-zh-rCN"); !ok || lang != "zh-CN" {
		t.Errorf("LangFromDir(values-zh-rCN) = %q, %v", lang, ok)
	}
	if lang, ok := LangFromDir("values"); !ok || lang != "" {
		t.Errorf("LangFromDir(values) = %q, %v", lang, ok)
	}
	if _, ok := LangFromDir("drawable"); ok {
		t.Error("LangFromDir(drawable) should not match")
	}
	if got := StringsXMLPath("res", "de"); got != filepath.Join("res", "values-de", "strings.xml") {
		t.Errorf("StringsXMLPath() = %q", got)
	}
	if got := SourceStringsXMLPath("res"); got != filepath.Join("res", "values", "strings.xml") {
		t.Errorf("SourceStringsXMLPath() = %q", got)
	}
}
