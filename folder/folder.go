// Package folder imports a directory of translation files into language
// columns: every .strings file and every Android values*/strings.xml below
// the directory is parsed and grouped by language.
package folder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/minios-linux/stringsmith/android"
	"github.com/minios-linux/stringsmith/kvmap"
	"github.com/minios-linux/stringsmith/langmeta"
	"github.com/minios-linux/stringsmith/project"
	"github.com/minios-linux/stringsmith/strfile"
)

// ErrNoStringsFiles is returned when a directory holds no translation files.
var ErrNoStringsFiles = errors.New("no .strings or strings.xml files found")

// File is one translation file found during import.
type File struct {
	// Path is relative to the import root, with forward slashes.
	Path     string
	Lang     string
	LangName string
	FileType string
	Size     int
	// Valid is false when the file could not be read.
	Valid      bool
	Keys       int
	Duplicates strfile.DuplicateReport

	data    *kvmap.Map
	content string
}

// FileError records a file that could not be imported.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to process file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Result is the outcome of Import.
type Result struct {
	Files   []File
	Columns []*project.Column
	// KeyCount is the largest number of keys in a single file.
	KeyCount        int
	TotalDuplicates int
	Errors          []*FileError
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// ---------------------------------------------------------------------------
// Import
// ---------------------------------------------------------------------------

// Import walks dir and parses every translation file below it. Hidden
// directories are skipped. The strings.xml files of an Android res/
// directory are taken together when the walk reaches it: the default
// values/ file first, then the translations sorted by language.
//
// Files for the same language are merged into one column in walk order:
// later files overwrite values of earlier ones, and the first file's text is
// kept as the column's original content. Unreadable files are logged and
// collected in Result.Errors; they never abort the import.
func Import(dir string) (*Result, error) {
	var paths []string
	listed := make(map[string]bool)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			for _, xml := range resourceFiles(path) {
				listed[xml] = true
				paths = append(paths, xml)
			}
			return nil
		}
		if listed[path] {
			return nil
		}
		if strfile.IsStringsFile(d.Name()) || android.IsResourceFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoStringsFiles, dir)
	}

	res := &Result{}
	for _, path := range paths {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		f, err := readFile(path, rel)
		res.Files = append(res.Files, f)
		if err != nil {
			log.Warn().Err(err).Str("file", rel).Msg("Skipping unreadable file")
			res.Errors = append(res.Errors, &FileError{Path: rel, Err: err})
			continue
		}
		res.TotalDuplicates += f.Duplicates.Count
		if f.Keys > res.KeyCount {
			res.KeyCount = f.Keys
		}
	}
	res.Columns = columns(res.Files)
	return res, nil
}

// resourceFiles returns the strings.xml files of resDir when it is an
// Android res/ directory.
func resourceFiles(resDir string) []string {
	var files []string
	if src := android.SourceStringsXMLPath(resDir); isFile(src) {
		files = append(files, src)
	}
	for _, lang := range android.DetectLanguages(resDir) {
		if path := android.StringsXMLPath(resDir, lang); isFile(path) {
			files = append(files, path)
		}
	}
	return files
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// readFile reads and parses one file. The language is known even when the
// read fails.
func readFile(path, rel string) (File, error) {
	f := File{Path: rel}
	if android.IsResourceFile(path) {
		f.FileType = project.FileTypeXML
		f.Lang, _ = android.LangFromDir(filepath.Base(filepath.Dir(path)))
		if f.Lang == "" {
			f.Lang = "en"
		}
	} else {
		f.FileType = project.FileTypeStrings
		f.Lang = langmeta.FromFilename(filepath.Base(path))
	}
	f.LangName = langmeta.Name(f.Lang)

	content, err := strfile.ReadFile(path)
	if err != nil {
		return f, err
	}
	f.Valid = true
	f.Size = len(content)
	f.content = content
	if f.FileType == project.FileTypeXML {
		f.data, f.Duplicates = android.ParseDetailed(content)
	} else {
		f.data, f.Duplicates = strfile.ParseDetailed(content)
	}
	f.Keys = f.data.Len()
	return f, nil
}

// columns groups valid files by language, in order of first appearance.
func columns(files []File) []*project.Column {
	var cols []*project.Column
	byLang := make(map[string]*project.Column)
	for _, f := range files {
		if !f.Valid {
			continue
		}
		col, ok := byLang[f.Lang]
		if !ok {
			col = project.NewColumn(f.Lang, f.FileType)
			col.HasFile = true
			col.SourceFile = f.Path
			col.OriginalContent = f.content
			byLang[f.Lang] = col
			cols = append(cols, col)
		}
		f.data.Each(func(k, v string) {
			col.Data.Set(k, v)
		})
	}
	return cols
}

// Project returns a new project holding the imported columns.
func (r *Result) Project() *project.Project {
	p := project.New(ProjectName(r.Files))
	p.Columns = r.Columns
	return p
}

// ---------------------------------------------------------------------------
// Validation and naming
// ---------------------------------------------------------------------------

// Report is the outcome of Validate.
type Report struct {
	Valid       bool
	Warnings    []string
	Suggestions []string
}

// Validate checks an import for situations the user should know about.
func Validate(files []File) Report {
	var r Report

	counts := make(map[string]int)
	var langs []string
	for _, f := range files {
		if counts[f.Lang] == 0 {
			langs = append(langs, f.Lang)
		}
		counts[f.Lang]++
	}
	for _, lang := range langs {
		if counts[lang] > 1 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("Multiple files detected for language '%s' - data will be merged", lang))
		}
	}

	valid := 0
	dups := false
	for _, f := range files {
		if f.Valid {
			valid++
			if f.Duplicates.HasDuplicates() {
				dups = true
			}
		}
	}
	if invalid := len(files) - valid; invalid > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d files could not be parsed", invalid))
	}

	if valid < 2 {
		r.Suggestions = append(r.Suggestions, "Consider adding more language files for better multi-language support")
	}
	if dups {
		r.Suggestions = append(r.Suggestions, "Some files contain duplicate keys - the latest values will be used")
	}

	r.Valid = valid > 0
	return r
}

// ProjectName derives a project name from the first valid file:
// "Localizable - Multi-Language" for Localizable_en.strings. When the file
// name is only a language code the name counts the languages instead.
func ProjectName(files []File) string {
	var first string
	langs := make(map[string]bool)
	for _, f := range files {
		if !f.Valid {
			continue
		}
		if first == "" {
			first = f.Path
		}
		langs[f.Lang] = true
	}
	if first == "" {
		return "Imported Project"
	}

	name := filepath.Base(filepath.FromSlash(first))
	if strfile.IsStringsFile(name) {
		if base := langmeta.ProjectBaseName(name); base != "" {
			return base + " - Multi-Language"
		}
	}
	return fmt.Sprintf("Project (%d languages)", len(langs))
}

// AllKeys returns the sorted union of the keys of all columns.
func AllKeys(cols []*project.Column) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, c := range cols {
		c.Data.Each(func(k, _ string) {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		})
	}
	sort.Strings(keys)
	return keys
}
