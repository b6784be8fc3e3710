// stringsmith edits multi-language Apple .strings and Android strings.xml
// projects without disturbing the layout of the original files.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/minios-linux/stringsmith/android"
	"github.com/minios-linux/stringsmith/config"
	"github.com/minios-linux/stringsmith/folder"
	"github.com/minios-linux/stringsmith/i18n"
	"github.com/minios-linux/stringsmith/jsonflat"
	"github.com/minios-linux/stringsmith/keymerge"
	"github.com/minios-linux/stringsmith/kvmap"
	"github.com/minios-linux/stringsmith/langmeta"
	"github.com/minios-linux/stringsmith/lockfile"
	"github.com/minios-linux/stringsmith/project"
	"github.com/minios-linux/stringsmith/specialchars"
	"github.com/minios-linux/stringsmith/strfile"
	"github.com/minios-linux/stringsmith/tsvfile"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

// errProblemsFound makes check exit non-zero without printing another error.
var errProblemsFound = errors.New("problems found")

func logInfo(format string, args ...any) {
	log.Info().Msgf(i18n.T(format), args...)
}

func logSuccess(format string, args ...any) {
	log.Info().Bool("ok", true).Msgf(i18n.T(format), args...)
}

func logWarning(format string, args ...any) {
	log.Warn().Msgf(i18n.T(format), args...)
}

func logError(format string, args ...any) {
	log.Error().Msgf(i18n.T(format), args...)
}

// setupLogging sends zerolog output to w in console format at level.
func setupLogging(w io.Writer, level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"})
	return nil
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir  string
	logLevel string
	cfg      = config.Default()
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stringsmith",
		Short: i18n.T("Lossless editor for Apple .strings and Android strings.xml"),
		Long: `stringsmith edits multi-language .strings and strings.xml projects.

Files are imported into a project (one column per language). Exporting
writes every file back with its comments, blank lines, spacing and escapes
untouched; only edited entries change and new keys are appended.

Commands:
  import    Import a folder of .strings / strings.xml files into a project
  export    Write project columns back to their files
  status    Show per-language counts and changes since the last sync
  check     Report duplicate keys and placeholders in files
  merge     Show keys that hold identical values in every language
  flatten   Convert JSON to .strings (or back with --reverse)
  tsv       Split a multi-language TSV table into .strings files`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			cfg = loaded
			level := cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = logLevel
			}
			if err := setupLogging(cmd.ErrOrStderr(), level); err != nil {
				return err
			}
			if cfg.UILang != "" {
				log.Debug().Str("lang", i18n.Init(cfg.UILang)).Msg("Interface language")
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", i18n.T("Directory holding .stringsmith.yaml and .env"))
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", i18n.T("Log level (debug, info, warn, error)"))

	root.AddCommand(
		newImportCmd(),
		newExportCmd(),
		newStatusCmd(),
		newCheckCmd(),
		newMergeCmd(),
		newFlattenCmd(),
		newTSVCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	// Help texts are built before the config is read, so only the
	// environment can pick their language.
	i18n.Init(os.Getenv(config.EnvPrefix + "LANG"))
	_ = setupLogging(os.Stderr, "info")

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errProblemsFound) {
			logError("%v", err)
		}
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "stringsmith version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// import
// ---------------------------------------------------------------------------

func newImportCmd() *cobra.Command {
	var (
		projectPath string
		mergeKeys   bool
	)

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: i18n.T("Import a folder of translation files into a project"),
		Long: `Scan a directory for .strings files and Android values*/strings.xml,
parse them and save one project with a column per language.

The language of a .strings file comes from its name (en.strings,
en_US.strings, Localizable_en.strings); strings.xml files take it from
their values-XX directory. Several files of one language are merged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("project") {
				projectPath = cfg.Project
			}
			if !cmd.Flags().Changed("merge-keys") {
				mergeKeys = cfg.MergeKeys
			}
			return runImport(cmd.OutOrStdout(), args[0], projectPath, mergeKeys)
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "project.yaml", i18n.T("Project file to write"))
	cmd.Flags().BoolVar(&mergeKeys, "merge-keys", false, i18n.T("Merge keys whose values are identical in every language"))

	return cmd
}

func runImport(out io.Writer, dir, projectPath string, mergeKeys bool) error {
	res, err := folder.Import(dir)
	if err != nil {
		return err
	}

	for _, f := range res.Files {
		if !f.Valid {
			continue
		}
		logInfo("Found %s (%s, %d keys)", f.Path, f.Lang, f.Keys)
		for _, d := range f.Duplicates.Details {
			lines := make([]string, len(d.Occurrences))
			for i, o := range d.Occurrences {
				lines[i] = fmt.Sprint(o.Line)
			}
			logWarning("%s: duplicate key %q on lines %s", f.Path, d.Key, strings.Join(lines, ", "))
		}
	}

	report := folder.Validate(res.Files)
	for _, w := range report.Warnings {
		logWarning("%s", w)
	}
	for _, s := range report.Suggestions {
		logInfo("%s", s)
	}
	if !report.Valid {
		return fmt.Errorf("%s", i18n.T("no file could be imported"))
	}

	p := res.Project()
	if mergeKeys {
		labels := p.MergeKeysNow(cfg.KeyMergeOptions())
		logInfo("Merged %d key groups", len(labels))
	}

	if err := p.Save(projectPath); err != nil {
		return err
	}
	if err := recordLock(filepath.Dir(projectPath), p.Columns); err != nil {
		return err
	}

	keys := len(folder.AllKeys(p.Columns))
	fmt.Fprintf(out, "%s: %s (%d %s, %d %s)\n",
		i18n.T("Saved"), projectPath,
		len(p.Columns), i18n.N("language", "languages", len(p.Columns)),
		keys, i18n.N("key", "keys", keys))
	return nil
}

// recordLock stores the current values of cols in the lock file next to the
// project.
func recordLock(dir string, cols []*project.Column) error {
	lf, err := lockfile.Load(dir)
	if err != nil {
		return err
	}
	for _, c := range cols {
		lf.Record(c.Code, c.Data)
	}
	return lf.Save()
}

// ---------------------------------------------------------------------------
// export
// ---------------------------------------------------------------------------

func newExportCmd() *cobra.Command {
	var (
		projectPath string
		outDir      string
		langs       []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: i18n.T("Write project columns back to translation files"),
		Long: `Export every language column of a project to its file below --out.

Files that were imported keep their original layout: only edited entries
are rewritten, removed keys are dropped and new keys are appended. Merged
display keys are split back into their original key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("project") {
				projectPath = cfg.Project
			}
			if !cmd.Flags().Changed("out") {
				outDir = cfg.Output
			}
			return runExport(cmd.OutOrStdout(), projectPath, outDir, langs)
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "project.yaml", i18n.T("Project file to read"))
	cmd.Flags().StringVarP(&outDir, "out", "o", "export", i18n.T("Output directory"))
	cmd.Flags().StringSliceVarP(&langs, "lang", "l", nil, i18n.T("Languages to export (default: all)"))

	return cmd
}

func runExport(out io.Writer, projectPath, outDir string, langs []string) error {
	p, err := project.Load(projectPath)
	if err != nil {
		return err
	}

	codes := p.Codes()
	if len(langs) > 0 {
		codes = intersectLanguages(codes, langs)
		if len(codes) == 0 {
			return fmt.Errorf("%s: %s", i18n.T("no matching languages"), strings.Join(langs, ", "))
		}
	}

	var written []*project.Column
	for _, code := range codes {
		c := p.Column(code)
		path, err := c.ExportTo(outDir)
		if err != nil {
			return err
		}
		written = append(written, c)
		fmt.Fprintf(out, "%s %s\n", langCell(code, langColumnWidth(codes)), path)
	}

	if err := recordLock(filepath.Dir(projectPath), written); err != nil {
		return err
	}
	logSuccess("Exported %d files", len(written))
	return nil
}

// intersectLanguages returns the languages of available that appear in
// filter, in the order of available.
func intersectLanguages(available, filter []string) []string {
	want := make(map[string]bool, len(filter))
	for _, l := range filter {
		want[strings.TrimSpace(l)] = true
	}
	var out []string
	for _, l := range available {
		if want[l] {
			out = append(out, l)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: i18n.T("Show project languages and changes since the last sync"),
		Long: `Show every language column with its key count, how many keys have a
value, and which keys were added, edited or removed since the last import
or export. Does not modify any files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("project") {
				projectPath = cfg.Project
			}
			return runStatus(cmd.OutOrStdout(), projectPath)
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "project.yaml", i18n.T("Project file to read"))

	return cmd
}

func runStatus(out io.Writer, projectPath string) error {
	p, err := project.Load(projectPath)
	if err != nil {
		return err
	}
	lf, err := lockfile.Load(filepath.Dir(projectPath))
	if err != nil {
		return err
	}

	keys := p.Keys()
	fmt.Fprintf(out, "\n%s%s%s\n", colorBlue, i18n.T("Project"), colorReset)
	fmt.Fprintln(out, strings.Repeat("─", 60))
	fmt.Fprintf(out, "  %-11s %s\n", i18n.T("Name:"), p.Name)
	fmt.Fprintf(out, "  %-11s %s\n", i18n.T("ID:"), p.ID)
	fmt.Fprintf(out, "  %-11s %d\n", i18n.T("Keys:"), len(keys))
	if p.MergeKeys {
		fmt.Fprintf(out, "  %-11s %d\n", i18n.T("Merged:"), len(p.MergedKeys))
	}
	fmt.Fprintf(out, "  %-11s %s\n", i18n.T("Lock:"), lf.Summary())
	fmt.Fprintln(out)

	width := langColumnWidth(p.Codes())
	for _, c := range p.Columns {
		filled := 0
		for _, k := range keys {
			if strings.TrimSpace(c.Data.Value(k)) != "" {
				filled++
			}
		}
		percent := 0
		if len(keys) > 0 {
			percent = filled * 100 / len(keys)
		}

		fmt.Fprintf(out, "  %s %s  %d/%d  %s\n",
			langCell(c.Code, width), progressBar(percent, 20), filled, len(keys), c.Name)

		changes := lf.Diff(c.Code, c.Data)
		if !changes.Empty() {
			fmt.Fprintf(out, "  %s %s%s%s\n", strings.Repeat(" ", width+3), colorYellow, changes.String(), colorReset)
		}
	}
	return nil
}

// progressBar renders percent as a bar of width cells followed by the
// number. The color goes from red through yellow to green.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	full := percent * width / 100

	color := colorRed
	switch {
	case percent == 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	return color + strings.Repeat("█", full) + strings.Repeat("░", width-full) + colorReset + fmt.Sprintf(" %3d%%", percent)
}

// langColumnWidth returns the width of the widest language code.
func langColumnWidth(langs []string) int {
	w := 0
	for _, l := range langs {
		if n := utf8.RuneCountInString(l); n > w {
			w = n
		}
	}
	return w
}

// langCell renders a flag and a language code padded to width.
func langCell(lang string, width int) string {
	flag := langmeta.Flag(lang)
	if flag == "" {
		flag = "  "
	}
	return flag + " " + lang + strings.Repeat(" ", max(0, width-utf8.RuneCountInString(lang)))
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: i18n.T("Report duplicate keys and placeholders in translation files"),
		Long: `Parse each file and list keys that occur more than once (with the
line of every occurrence; the last one wins) and the placeholders and
escape sequences found in each value. Exits with status 1 when duplicates
are found.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), args)
		},
	}
}

func runCheck(out io.Writer, paths []string) error {
	problems := 0
	for _, path := range paths {
		content, err := strfile.ReadFile(path)
		if err != nil {
			return err
		}
		data, report := parseAny(path, content)

		fmt.Fprintf(out, "%s%s%s: %d %s\n", colorBlue, path, colorReset, data.Len(), i18n.N("key", "keys", data.Len()))
		for _, d := range report.Details {
			problems++
			fmt.Fprintf(out, "  %s%s%s %q\n", colorRed, i18n.T("duplicate"), colorReset, d.Key)
			for _, o := range d.Occurrences {
				mark := " "
				if o.Used {
					mark = "*"
				}
				fmt.Fprintf(out, "    %s %s %d: %q\n", mark, i18n.T("line"), o.Line, o.Value)
			}
		}
		data.Each(func(k, v string) {
			if chars := specialchars.Detect(v); len(chars) > 0 {
				fmt.Fprintf(out, "  %-30s %s\n", k, strings.Join(specialchars.Tokens(chars), " "))
			}
		})
	}
	if problems > 0 {
		logWarning("Found %d duplicated keys", problems)
		return errProblemsFound
	}
	return nil
}

// parseAny parses content as strings.xml or .strings depending on path and
// content.
func parseAny(path, content string) (*kvmap.Map, strfile.DuplicateReport) {
	if strings.EqualFold(filepath.Ext(path), ".xml") || android.IsAndroidXML(content) {
		return android.ParseDetailed(content)
	}
	return strfile.ParseDetailed(content)
}

// ---------------------------------------------------------------------------
// merge
// ---------------------------------------------------------------------------

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <file>...",
		Short: i18n.T("List keys whose values are identical in every language"),
		Long: `Treat each file as one language and print the groups of keys that hold
the same values in all of them, with the display key the editor would use.
Nothing is written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd.OutOrStdout(), args)
		},
	}
}

func runMerge(out io.Writer, paths []string) error {
	maps := make([]*kvmap.Map, 0, len(paths))
	for _, path := range paths {
		content, err := strfile.ReadFile(path)
		if err != nil {
			return err
		}
		m, _ := parseAny(path, content)
		maps = append(maps, m)
	}

	groups := 0
	for _, mp := range keymerge.FindMergeable(maps, cfg.KeyMergeOptions()) {
		if !mp.ShouldMerge {
			continue
		}
		groups++
		fmt.Fprintf(out, "%s%s%s\n", colorGreen, mp.Label(), colorReset)
		for i, v := range mp.Values {
			fmt.Fprintf(out, "  %-20s %q\n", filepath.Base(paths[i]), v)
		}
	}
	if groups == 0 {
		logInfo("No mergeable keys")
	}
	return nil
}

// ---------------------------------------------------------------------------
// flatten
// ---------------------------------------------------------------------------

func newFlattenCmd() *cobra.Command {
	var (
		preset  string
		output  string
		reverse bool
	)

	cmd := &cobra.Command{
		Use:   "flatten <file>",
		Short: i18n.T("Convert JSON to .strings, or .strings to JSON with --reverse"),
		Long: `Flatten nested JSON into "a.b.c" keys and write them as a .strings file.
With --reverse, read a .strings file and rebuild nested JSON from its keys.

Presets: web, mobile, config, simple.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlatten(cmd.OutOrStdout(), args[0], output, preset, reverse)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", i18n.T("Flattening preset (default from config)"))
	cmd.Flags().StringVarP(&output, "out", "o", "", i18n.T("Output file (default: stdout)"))
	cmd.Flags().BoolVar(&reverse, "reverse", false, i18n.T("Convert .strings to JSON"))

	return cmd
}

func runFlatten(out io.Writer, path, output, preset string, reverse bool) error {
	content, err := strfile.ReadFile(path)
	if err != nil {
		return err
	}

	var result string
	if reverse {
		opts := jsonflat.DefaultUnflattenOptions()
		if p, err := cfg.FlattenOptions(preset); err == nil {
			opts.Separator = p.Separator
		}
		result = jsonflat.Unflatten(strfile.Parse(content), opts)
	} else {
		opts, err := cfg.FlattenOptions(preset)
		if err != nil {
			return err
		}
		m, err := jsonflat.Flatten(content, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		result = strfile.Marshal(m) + "\n"
	}

	if output == "" {
		_, err := io.WriteString(out, result)
		return err
	}
	if err := strfile.WriteFile(output, result); err != nil {
		return err
	}
	logSuccess("Wrote %s", output)
	return nil
}

// ---------------------------------------------------------------------------
// tsv
// ---------------------------------------------------------------------------

func newTSVCmd() *cobra.Command {
	var (
		outDir      string
		langs       []string
		projectPath string
	)

	cmd := &cobra.Command{
		Use:   "tsv <file>",
		Short: i18n.T("Split a multi-language TSV table into .strings files"),
		Long: `Read rows of "key<TAB>value<TAB>value..." (tabs or runs of two or more
spaces) and write one <lang>.strings file per language column. Column
order comes from --langs (default: th, en, km, my). With --project the
columns are also saved as a project.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("langs") {
				langs = cfg.Languages
			}
			if !cmd.Flags().Changed("out") {
				outDir = cfg.Output
			}
			return runTSV(cmd.OutOrStdout(), args[0], outDir, langs, projectPath)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "export", i18n.T("Output directory"))
	cmd.Flags().StringSliceVar(&langs, "langs", tsvfile.DefaultLanguages, i18n.T("Language of each value column"))
	cmd.Flags().StringVarP(&projectPath, "project", "p", "", i18n.T("Also save the columns as a project"))

	return cmd
}

func runTSV(out io.Writer, path, outDir string, langs []string, projectPath string) error {
	content, err := strfile.ReadFile(path)
	if err != nil {
		return err
	}
	if !tsvfile.IsTSV(content) {
		logWarning("%s does not look like a TSV table", path)
	}

	table := tsvfile.Parse(content, langs)
	if table.Len() == 0 {
		return fmt.Errorf("%s: %s", path, i18n.T("no valid rows"))
	}

	p := project.New(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	for i, lang := range table.Languages {
		c := project.NewColumn(lang, project.FileTypeStrings)
		c.Data = table.Columns[i]
		c.HasFile = true
		p.Columns = append(p.Columns, c)

		written, err := c.ExportTo(outDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", langCell(lang, langColumnWidth(table.Languages)), written)
	}

	if projectPath != "" {
		if err := p.Save(projectPath); err != nil {
			return err
		}
		if err := recordLock(filepath.Dir(projectPath), p.Columns); err != nil {
			return err
		}
		logSuccess("Saved %s", projectPath)
	}
	return nil
}
