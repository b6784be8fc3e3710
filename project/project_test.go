package project

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/minios-linux/stringsmith/keymerge"
	"github.com/minios-linux/stringsmith/kvmap"
)

const enStrings = `/* Greetings */
"hello" = "Hello";
"bye" = "Bye"; // farewell
`

func sampleProject() *Project {
	p := New("Demo")
	en := NewColumn("en", FileTypeStrings)
	en.HasFile = true
	en.SourceFile = "en.strings"
	en.OriginalContent = enStrings
	en.Data = kvmap.FromPairs("hello", "Hello", "bye", "Bye")

	th := NewColumn("th", FileTypeStrings)
	th.Data = kvmap.FromPairs("hello", "สวัสดี", "bye", "ลาก่อน")

	p.Columns = append(p.Columns, en, th)
	return p
}

func TestNew(t *testing.T) {
	p := New("Demo")
	if p.ID == "" {
		t.Fatal("ID not set")
	}
	if p.SchemaVersion != SchemaVersion {
		t.Fatalf("SchemaVersion = %d", p.SchemaVersion)
	}
	if New("Demo").ID == p.ID {
		t.Fatal("IDs should be unique")
	}
}

func TestAccessors(t *testing.T) {
	p := sampleProject()
	p.Column("th").Data.Set("extra", "x")

	if got := p.Codes(); !reflect.DeepEqual(got, []string{"en", "th"}) {
		t.Fatalf("Codes() = %v", got)
	}
	if got := p.Keys(); !reflect.DeepEqual(got, []string{"hello", "bye", "extra"}) {
		t.Fatalf("Keys() = %v", got)
	}
	if p.Column("km") != nil {
		t.Fatal("unknown column should be nil")
	}
	if got := p.Column("th").Name; got != "ไทย (Thai)" {
		t.Fatalf("column name = %q", got)
	}
}

func TestSaveLoad(t *testing.T) {
	p := sampleProject()
	p.Column("en").Data.Set("yes", "true")
	p.Column("en").Data.Set("multi", "line 1\nline 2")

	path := filepath.Join(t.TempDir(), "sub", "demo.yaml")
	if err := p.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.ID != p.ID || got.Name != "Demo" {
		t.Fatalf("header mismatch: %+v", got)
	}
	if len(got.Columns) != 2 {
		t.Fatalf("columns = %d", len(got.Columns))
	}
	for i, c := range got.Columns {
		if !c.Data.Equal(p.Columns[i].Data) {
			t.Errorf("column %s data = %v, want %v", c.Code, c.Data.Keys(), p.Columns[i].Data.Keys())
		}
	}
	if got.Column("en").OriginalContent != enStrings {
		t.Fatalf("original content not preserved: %q", got.Column("en").OriginalContent)
	}
	if got.Column("en").Data.Value("yes") != "true" {
		t.Fatal("string value 'true' changed type")
	}
}

func TestLoad_LegacySchema(t *testing.T) {
	legacy := `name: Old
files:
  - en.strings
  - Localizable_th.strings
  - res/values-km/strings.xml
strings_data:
  - hello: Hello
    bye: Bye
  - hello: สวัสดี
  - hello: សួស្តី
`
	path := filepath.Join(t.TempDir(), "old.yaml")
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.SchemaVersion != SchemaVersion || p.ID == "" {
		t.Fatalf("not upgraded: %+v", p)
	}
	if got := p.Codes(); !reflect.DeepEqual(got, []string{"en", "th", "km"}) {
		t.Fatalf("Codes() = %v", got)
	}
	if got := p.Columns[0].Data.Keys(); !reflect.DeepEqual(got, []string{"hello", "bye"}) {
		t.Fatalf("legacy key order lost: %v", got)
	}
	if p.Columns[2].FileType != FileTypeXML {
		t.Fatalf("strings.xml column type = %q", p.Columns[2].FileType)
	}
	if !p.Columns[1].HasFile || p.Columns[1].SourceFile != "Localizable_th.strings" {
		t.Fatalf("source file = %+v", p.Columns[1])
	}

	// Saving writes the current schema.
	out := filepath.Join(t.TempDir(), "new.yaml")
	if err := p.Save(out); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), "schema_version: 2") {
		t.Fatalf("saved file lacks schema_version:\n%s", data)
	}
	if strings.Contains(string(data), "strings_data") {
		t.Fatalf("saved file kept legacy layout:\n%s", data)
	}
}

func TestDecode_UnknownSchema(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "future version", data: "schema_version: 99\ncolumns: []\n"},
		{name: "no markers", data: "name: nothing\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, ErrUnknownSchema) {
				t.Fatalf("error = %v, want ErrUnknownSchema", err)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestColumnExport_KeepsLayout(t *testing.T) {
	p := sampleProject()
	en := p.Column("en")
	en.Data.Set("bye", "Goodbye")
	en.Data.Set("new", "New")

	want := `/* Greetings */
"hello" = "Hello";
"bye" = "Goodbye"; // farewell

// New keys added during editing
"new" = "New";`
	if got := en.Export(); got != want {
		t.Fatalf("Export() =\n%s\nwant\n%s", got, want)
	}
}

func TestColumnExport_Unchanged(t *testing.T) {
	en := sampleProject().Column("en")
	if got := en.Export(); got != enStrings {
		t.Fatalf("unchanged export differs:\n%q\nwant\n%q", got, enStrings)
	}
}

func TestColumnExport_Plain(t *testing.T) {
	th := sampleProject().Column("th")
	want := `"hello" = "สวัสดี";` + "\n" + `"bye" = "ลาก่อน";`
	if got := th.Export(); got != want {
		t.Fatalf("Export() = %q, want %q", got, want)
	}
}

func TestColumnExport_AndroidXML(t *testing.T) {
	c := NewColumn("th", FileTypeXML)
	c.Data = kvmap.FromPairs("android_ok + ok", "ตกลง")
	got := c.Export()
	if !strings.Contains(got, `<string name="ok">ตกลง</string>`) {
		t.Fatalf("Export() =\n%s", got)
	}
	if c.FileName() != filepath.Join("res", "values-th", "strings.xml") {
		t.Fatalf("FileName() = %q", c.FileName())
	}
}

func TestExportTo(t *testing.T) {
	dir := t.TempDir()
	p := sampleProject()
	for _, c := range p.Columns {
		path, err := c.ExportTo(dir)
		if err != nil {
			t.Fatalf("ExportTo(%s) error: %v", c.Code, err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("exported file missing: %v", err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "en.strings"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != enStrings {
		t.Fatalf("en.strings = %q", data)
	}
}

func TestMergeKeysNow(t *testing.T) {
	p := New("Merge")
	en := NewColumn("en", FileTypeStrings)
	en.Data = kvmap.FromPairs("ok", "OK", "confirm", "OK", "cancel", "Cancel", "empty", "")
	th := NewColumn("th", FileTypeStrings)
	th.Data = kvmap.FromPairs("ok", "ตกลง", "confirm", "ตกลง", "cancel", "ยกเลิก", "empty", "")
	p.Columns = []*Column{en, th}

	labels := p.MergeKeysNow(keymerge.DefaultOptions())
	if !reflect.DeepEqual(labels, []string{"ok + confirm"}) {
		t.Fatalf("labels = %v", labels)
	}
	if !p.MergeKeys {
		t.Fatal("MergeKeys flag not set")
	}
	if got := en.Data.Value("ok + confirm"); got != "OK" {
		t.Fatalf("merged value = %q", got)
	}
	if !p.Column("th").Data.Has("empty") {
		t.Fatal("key without values was dropped")
	}
	if p.Column("en").Data.Has("ok") {
		t.Fatal("merged key should be replaced by its label")
	}

	// second call is a no-op
	again := p.MergeKeysNow(keymerge.DefaultOptions())
	if !reflect.DeepEqual(again, labels) {
		t.Fatalf("second merge = %v", again)
	}
}
