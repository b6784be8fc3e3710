// Package project stores an editing session: one column of key/value data
// per language, plus the original file text each column was imported from.
//
// The line structure of a column is never stored. It is rebuilt from
// OriginalContent whenever the column is exported, so a project file carries
// exactly one source of truth for formatting.
//
// Project files are YAML. Every file written by Save carries schema_version;
// Load decides the schema once from that field and converts older layouts.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/stringsmith/android"
	"github.com/minios-linux/stringsmith/keymerge"
	"github.com/minios-linux/stringsmith/kvmap"
	"github.com/minios-linux/stringsmith/langmeta"
	"github.com/minios-linux/stringsmith/strfile"
)

// SchemaVersion is the version written by Save.
const SchemaVersion = 2

// File types of a column.
const (
	FileTypeStrings = "strings"
	FileTypeXML     = "xml"
)

// ErrUnknownSchema is returned by Load for files whose layout is not
// recognised.
var ErrUnknownSchema = errors.New("unknown project schema")

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Column is one language of a project.
type Column struct {
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	FileType string `yaml:"file_type"`
	HasFile  bool   `yaml:"has_file"`
	// SourceFile is the path the column was imported from, relative to the
	// import root. Export writes back to the same relative path.
	SourceFile string     `yaml:"source_file,omitempty"`
	Data       *kvmap.Map `yaml:"data"`
	// OriginalContent is the unmodified text of SourceFile.
	OriginalContent string `yaml:"original_content,omitempty"`
}

// Project is a set of language columns.
type Project struct {
	SchemaVersion int       `yaml:"schema_version"`
	ID            string    `yaml:"id"`
	Name          string    `yaml:"name"`
	CreatedAt     time.Time `yaml:"created_at"`
	// MergeKeys is set once keys with identical values were merged into
	// composite display keys.
	MergeKeys  bool      `yaml:"merge_keys,omitempty"`
	MergedKeys []string  `yaml:"merged_keys,omitempty"`
	Columns    []*Column `yaml:"columns"`
}

// New returns an empty project with a fresh ID.
func New(name string) *Project {
	return &Project{
		SchemaVersion: SchemaVersion,
		ID:            uuid.NewString(),
		Name:          name,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
}

// NewColumn returns a column for code with an empty data map.
func NewColumn(code, fileType string) *Column {
	return &Column{
		Code:     code,
		Name:     langmeta.Name(code),
		FileType: fileType,
		Data:     kvmap.New(),
	}
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Column returns the column for code, or nil.
func (p *Project) Column(code string) *Column {
	for _, c := range p.Columns {
		if c.Code == code {
			return c
		}
	}
	return nil
}

// Codes returns the language codes in column order.
func (p *Project) Codes() []string {
	codes := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		codes[i] = c.Code
	}
	return codes
}

// Maps returns the data map of every column, in column order.
func (p *Project) Maps() []*kvmap.Map {
	maps := make([]*kvmap.Map, len(p.Columns))
	for i, c := range p.Columns {
		maps[i] = c.Data
	}
	return maps
}

// Keys returns the union of all column keys: the first column's keys in
// order, then keys first seen in later columns.
func (p *Project) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, c := range p.Columns {
		c.Data.Each(func(k, _ string) {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		})
	}
	return keys
}

// MergeKeysNow merges keys whose values are equal across all columns into
// composite display keys and returns the composite labels. Keys without any
// value are kept as they are. Calling it again is a no-op.
func (p *Project) MergeKeysNow(opts keymerge.Options) []string {
	if p.MergeKeys {
		return p.MergedKeys
	}
	maps := p.Maps()
	mappings := keymerge.FindMergeable(maps, opts)
	merged, labels := keymerge.Apply(maps, mappings)

	covered := make(map[string]bool)
	for _, mp := range mappings {
		for _, k := range mp.AllKeys {
			covered[k] = true
		}
	}
	for _, k := range p.Keys() {
		if covered[k] {
			continue
		}
		for i, m := range maps {
			if v, ok := m.Get(k); ok {
				merged[i].Set(k, v)
			}
		}
	}

	for i, c := range p.Columns {
		c.Data = merged[i]
	}
	p.MergeKeys = true
	p.MergedKeys = labels
	return labels
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// FileName returns the path the column is exported to, relative to the
// output directory.
func (c *Column) FileName() string {
	if c.SourceFile != "" {
		return c.SourceFile
	}
	if c.FileType == FileTypeXML {
		if c.Code == "" {
			return android.SourceStringsXMLPath("res")
		}
		return android.StringsXMLPath("res", c.Code)
	}
	return c.Code + strfile.Ext
}

// Structure rebuilds the line structure of a .strings column from its
// original content. It returns nil for other columns and for columns without
// original content.
func (c *Column) Structure() *strfile.ParsedFile {
	if c.FileType == FileTypeXML || c.OriginalContent == "" {
		return nil
	}
	return strfile.ParseWithStructure(c.OriginalContent)
}

// XMLStructure is Structure for strings.xml columns.
func (c *Column) XMLStructure() *android.ParsedFile {
	if c.FileType != FileTypeXML || c.OriginalContent == "" {
		return nil
	}
	return android.ParseWithStructure(c.OriginalContent)
}

// Export renders the column in its file format. Composite keys are split
// back first. When the column has original content its layout is kept;
// otherwise a plain file is written.
func (c *Column) Export() string {
	data := keymerge.Split(c.Data, keymerge.DefaultOptions())
	if c.FileType == FileTypeXML {
		if pf := c.XMLStructure(); pf != nil {
			return android.MarshalWithStructure(data, pf.Structure)
		}
		return android.Marshal(data)
	}
	if pf := c.Structure(); pf != nil {
		return strfile.MarshalWithStructure(data, pf.Structure)
	}
	return strfile.Marshal(data)
}

// ExportTo writes the column below dir and returns the written path.
func (c *Column) ExportTo(dir string) (string, error) {
	path := filepath.Join(dir, filepath.FromSlash(c.FileName()))
	if err := strfile.WriteFile(path, c.Export()); err != nil {
		return "", fmt.Errorf("exporting %s: %w", c.Code, err)
	}
	return path, nil
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// header is the part of a project file read before choosing the schema.
type header struct {
	SchemaVersion int         `yaml:"schema_version"`
	Files         []yaml.Node `yaml:"files"`
	StringsData   []yaml.Node `yaml:"strings_data"`
}

// legacyProject is the schema 1 layout: parallel lists of file names and
// key/value maps.
type legacyProject struct {
	Name        string       `yaml:"name"`
	Files       []string     `yaml:"files"`
	StringsData []*kvmap.Map `yaml:"strings_data"`
}

// Load reads a project file, converting older schemas to the current one.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	p, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, nil
}

// Decode parses project YAML.
func Decode(data []byte) (*Project, error) {
	var h header
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, err
	}

	switch {
	case h.SchemaVersion == SchemaVersion:
		var p Project
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		for _, c := range p.Columns {
			if c.Data == nil {
				c.Data = kvmap.New()
			}
		}
		return &p, nil

	case h.SchemaVersion == 0 && (len(h.Files) > 0 || len(h.StringsData) > 0):
		var lp legacyProject
		if err := yaml.Unmarshal(data, &lp); err != nil {
			return nil, err
		}
		return fromLegacy(lp), nil
	}
	return nil, fmt.Errorf("%w: schema_version %d", ErrUnknownSchema, h.SchemaVersion)
}

func fromLegacy(lp legacyProject) *Project {
	p := New(lp.Name)
	if p.Name == "" {
		p.Name = "Imported Project"
	}
	for i, m := range lp.StringsData {
		name := ""
		if i < len(lp.Files) {
			name = lp.Files[i]
		}
		code := fmt.Sprintf("lang%d", i+1)
		fileType := FileTypeStrings
		switch {
		case android.IsResourceFile(name):
			fileType = FileTypeXML
			code, _ = android.LangFromDir(filepath.Base(filepath.Dir(filepath.FromSlash(name))))
		case name != "":
			code = langmeta.FromFilename(filepath.Base(name))
		}
		c := NewColumn(code, fileType)
		c.HasFile = name != ""
		c.SourceFile = name
		if m != nil {
			c.Data = m
		}
		p.Columns = append(p.Columns, c)
	}
	return p
}

// Save writes the project as YAML using the current schema.
func (p *Project) Save(path string) error {
	p.SchemaVersion = SchemaVersion
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling project: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
