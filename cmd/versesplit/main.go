// Command versesplit converts raw KJV text into canonical chapter documents
// and validates them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/FocuswithJustin/versesplit/core/books"
	"github.com/FocuswithJustin/versesplit/core/cas"
	"github.com/FocuswithJustin/versesplit/core/chapter"
	"github.com/FocuswithJustin/versesplit/core/chapters"
	vserrors "github.com/FocuswithJustin/versesplit/core/errors"
	"github.com/FocuswithJustin/versesplit/core/sqlite"
	"github.com/FocuswithJustin/versesplit/core/verify"
	"github.com/FocuswithJustin/versesplit/internal/config"
	"github.com/FocuswithJustin/versesplit/internal/fill"
	"github.com/FocuswithJustin/versesplit/internal/pipeline"
	"github.com/FocuswithJustin/versesplit/internal/validation"
	"github.com/FocuswithJustin/versesplit/internal/versedb"
)

const version = "0.1.0"

// stdout receives results; logs go to stderr.
var stdout io.Writer = color.Output

// exitCode makes main exit with a status without kong printing an error.
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// CLI defines the command-line interface for versesplit.
var CLI struct {
	// Global flags
	Config    string `name:"config" short:"c" help:"Config file (default versesplit.yaml when present)" type:"path"`
	LogLevel  string `name:"log-level" help:"Override the configured log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" help:"Override the configured log format (text, json)"`

	Split   SplitCmd    `cmd:"" help:"Split a raw source into per-chapter C:V files"`
	Build   BuildCmd    `cmd:"" help:"Build the EN-only document of one chapter"`
	Verify  VerifyCmd   `cmd:"" help:"Validate a chapter document"`
	Fill    FillCmd     `cmd:"" help:"Fill the KO field of one chapter"`
	Batch   BatchCmd    `cmd:"" help:"Build, fill and verify a range of chapters"`
	Bundle  BundleGroup `cmd:"" help:"Chapter bundles (create, check)"`
	Export  ExportGroup `cmd:"" help:"Export verified chapters"`
	Runs    RunsGroup   `cmd:"" help:"Batch run transcripts"`
	Books   BooksCmd    `cmd:"" help:"List the book table"`
	Version VersionCmd  `cmd:"" help:"Print version information"`
}

// BundleGroup contains bundle operations.
type BundleGroup struct {
	Create BundleCreateCmd `cmd:"" help:"Pack the verified chapters of a book"`
	Check  BundleCheckCmd  `cmd:"" help:"Re-verify a bundle against its manifest"`
}

// ExportGroup contains export targets.
type ExportGroup struct {
	SQLite ExportSQLiteCmd `cmd:"" name:"sqlite" help:"Load verified chapters into a SQLite database"`
	Show   ExportShowCmd   `cmd:"" help:"Print one exported chapter as a canonical document"`
}

// RunsGroup contains transcript operations.
type RunsGroup struct {
	Show RunsShowCmd `cmd:"" help:"Summarize a batch transcript"`
}

// loadConfig reads the configuration, applies the global overrides and
// sets up logging.
func loadConfig() (*config.Config, *books.Table, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, nil, err
	}
	if CLI.LogLevel != "" {
		cfg.Logging.Level = CLI.LogLevel
	}
	if CLI.LogFormat != "" {
		cfg.Logging.Format = CLI.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := cfg.InitLogging(); err != nil {
		return nil, nil, err
	}
	table, err := cfg.Books()
	if err != nil {
		return nil, nil, err
	}
	return cfg, table, nil
}

func newPipeline(tr fill.Translator) (*pipeline.Pipeline, error) {
	cfg, table, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, table, tr), nil
}

func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func checkBook(code string) error {
	if err := validation.ValidateBookCode(code); err != nil {
		return fmt.Errorf("invalid book code: %w", err)
	}
	return nil
}

// printReport writes one line per chapter and a summary. A run with
// failures yields exit status 1.
func printReport(report *pipeline.Report) error {
	for _, res := range report.Results {
		if !res.OK() {
			fmt.Fprintf(stdout, "%s %s: %v\n", color.RedString("FAIL"), res.Name(), res.Err)
			continue
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(stdout, "%s %s: %s\n", color.YellowString("WARN"), res.Name(), w)
		}
		fmt.Fprintf(stdout, "%s %s: verses=%d\n", color.GreenString("PASS"), res.Name(), res.Verses)
	}
	fmt.Fprintf(stdout, "chapters=%d succeeded=%d failed=%d\n", len(report.Results), report.Succeeded(), report.Failed())
	if report.Failed() > 0 {
		return exitCode(1)
	}
	return nil
}

// SplitCmd splits a raw source into per-chapter files.
type SplitCmd struct {
	Source   string `arg:"" help:"Raw KJV text or XHTML file" type:"existingfile"`
	Book     string `short:"b" help:"Book code for every verse (required unless --headings)"`
	Chapters string `help:"Chapter selection such as 1-3,5 (default all)"`
	Headings bool   `help:"Switch books on the heading lines of the book table"`
}

func (c *SplitCmd) Run() error {
	if err := validation.ValidatePath(c.Source); err != nil {
		return fmt.Errorf("invalid source path: %w", err)
	}
	if c.Book != "" {
		if err := checkBook(c.Book); err != nil {
			return err
		}
	}
	sel, err := chapters.Parse(c.Chapters)
	if err != nil {
		return err
	}

	f, err := os.Open(c.Source)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	ft, err := validation.ValidateFileType(f, c.Source)
	f.Close()
	if err != nil {
		return err
	}
	if ft != validation.FileTypeText && ft != validation.FileTypeXML {
		return fmt.Errorf("unsupported source type %s", ft)
	}

	p, err := newPipeline(nil)
	if err != nil {
		return err
	}
	if c.Headings {
		p.Config().Segment.UseHeadings = true
	}

	ctx, cancel := runContext()
	defer cancel()
	report, err := p.Split(ctx, c.Source, c.Book, sel)
	if err != nil {
		return err
	}
	return printReport(report)
}

// BuildCmd builds one EN-only chapter document.
type BuildCmd struct {
	Book    string `arg:"" help:"Book code"`
	Chapter int    `arg:"" help:"Chapter number"`
	Source  string `help:"Raw chapter file (default <raw_dir>/<book>_<ccc>.txt)" type:"existingfile"`
}

func (c *BuildCmd) Run() error {
	if err := checkBook(c.Book); err != nil {
		return err
	}
	p, err := newPipeline(nil)
	if err != nil {
		return err
	}

	ctx, cancel := runContext()
	defer cancel()
	var res pipeline.Result
	if c.Source != "" {
		if err := validation.ValidatePath(c.Source); err != nil {
			return fmt.Errorf("invalid source path: %w", err)
		}
		res = p.BuildFile(ctx, c.Source, c.Book, c.Chapter)
	} else {
		res = p.Build(ctx, c.Book, c.Chapter)
	}
	return printReport(&pipeline.Report{Results: []pipeline.Result{res}})
}

// VerifyCmd validates a chapter document and prints a single verdict.
type VerifyCmd struct {
	Path    string `arg:"" help:"Chapter document" type:"existingfile"`
	Dialect string `help:"Document dialect" enum:"en-only,filled" default:"filled"`
}

func (c *VerifyCmd) Run() error {
	if err := validation.ValidatePath(c.Path); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	d, err := chapter.ParseDialect(c.Dialect)
	if err != nil {
		return err
	}
	p, err := newPipeline(nil)
	if err != nil {
		return err
	}

	res, err := p.VerifyFile(c.Path, d)
	if err != nil {
		var ce *vserrors.ChapterError
		if errors.As(err, &ce) {
			fmt.Fprintf(stdout, "%s: %s\n", color.RedString("FAIL"), ce)
		} else {
			fmt.Fprintf(stdout, "%s: %v\n", color.RedString("FAIL"), err)
		}
		return exitCode(1)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stdout, "%s: %s\n", color.YellowString("WARN"), w)
	}
	fmt.Fprintf(stdout, "%s: verses=%d\n", color.GreenString("PASS"), res.Count())
	return nil
}

// FillCmd fills one chapter from recorded translator responses.
type FillCmd struct {
	Book      string `arg:"" help:"Book code"`
	Chapter   int    `arg:"" help:"Chapter number"`
	All       bool   `help:"Re-translate verses that already have KO text"`
	Responses string `help:"Directory of recorded responses (overrides fill.responses_dir)" type:"path"`
}

func (c *FillCmd) Run() error {
	if err := checkBook(c.Book); err != nil {
		return err
	}
	p, err := newPipeline(responsesTranslator(c.Responses))
	if err != nil {
		return err
	}

	ctx, cancel := runContext()
	defer cancel()
	res := p.Fill(ctx, c.Book, c.Chapter, c.All)
	return printReport(&pipeline.Report{Results: []pipeline.Result{res}})
}

func responsesTranslator(dir string) fill.Translator {
	if dir == "" {
		return nil
	}
	return fill.FileTranslator{Dir: dir}
}

// BatchCmd runs build, and optionally fill, over a chapter range.
type BatchCmd struct {
	Book       string `arg:"" help:"Book code"`
	Chapters   string `help:"Chapter selection such as 1-50 (default every raw chapter)"`
	Fill       bool   `help:"Fill KO after each build and verify the final document"`
	All        bool   `help:"Re-translate verses that already have KO text"`
	Responses  string `help:"Directory of recorded responses (overrides fill.responses_dir)" type:"path"`
	Transcript string `help:"Write a JSONL run transcript" type:"path"`
}

func (c *BatchCmd) Run() error {
	if err := checkBook(c.Book); err != nil {
		return err
	}
	sel, err := chapters.Parse(c.Chapters)
	if err != nil {
		return err
	}
	if c.Transcript != "" {
		if err := validation.ValidatePath(c.Transcript); err != nil {
			return fmt.Errorf("invalid transcript path: %w", err)
		}
	}
	p, err := newPipeline(responsesTranslator(c.Responses))
	if err != nil {
		return err
	}

	ctx, cancel := runContext()
	defer cancel()
	report, err := p.Batch(ctx, c.Book, sel, pipeline.BatchOptions{
		Fill:           c.Fill,
		All:            c.All,
		TranscriptPath: c.Transcript,
	})
	if report != nil {
		fmt.Fprintf(stdout, "run %s\n", report.RunID)
		if perr := printReport(report); err == nil {
			err = perr
		}
	}
	return err
}

// BundleCreateCmd packs a book's chapters.
type BundleCreateCmd struct {
	Book    string `arg:"" help:"Book code"`
	Dialect string `help:"Which documents to pack" enum:"en-only,filled" default:"filled"`
}

func (c *BundleCreateCmd) Run() error {
	if err := checkBook(c.Book); err != nil {
		return err
	}
	d, err := chapter.ParseDialect(c.Dialect)
	if err != nil {
		return err
	}
	p, err := newPipeline(nil)
	if err != nil {
		return err
	}

	ctx, cancel := runContext()
	defer cancel()
	path, m, err := p.CreateBundle(ctx, c.Book, d)
	if err != nil {
		return err
	}
	sum, err := cas.SumFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s %s chapters=%d id=%s sha256=%s\n", color.GreenString("CREATED"), path, len(m.Chapters), m.ID, sum.SHA256)
	return nil
}

// BundleCheckCmd verifies a bundle.
type BundleCheckCmd struct {
	Path string `arg:"" help:"Bundle file (.tar.xz)" type:"existingfile"`
}

func (c *BundleCheckCmd) Run() error {
	if err := validation.ValidatePath(c.Path); err != nil {
		return fmt.Errorf("invalid bundle path: %w", err)
	}
	f, err := os.Open(c.Path)
	if err != nil {
		return fmt.Errorf("failed to open bundle: %w", err)
	}
	ft, err := validation.ValidateFileType(f, c.Path)
	f.Close()
	if err != nil {
		return err
	}
	if ft != validation.FileTypeTarXZ && ft != validation.FileTypeTarGZ {
		return fmt.Errorf("not a bundle: %s", ft)
	}

	p, err := newPipeline(nil)
	if err != nil {
		return err
	}
	ctx, cancel := runContext()
	defer cancel()
	m, err := p.CheckBundle(ctx, c.Path)
	if err != nil {
		fmt.Fprintf(stdout, "%s: %v\n", color.RedString("FAIL"), err)
		return exitCode(1)
	}
	verses := 0
	for _, e := range m.Chapters {
		verses += e.Verses
	}
	fmt.Fprintf(stdout, "%s: chapters=%d verses=%d dialect=%s id=%s\n", color.GreenString("PASS"), len(m.Chapters), verses, m.Dialect, m.ID)
	return nil
}

// ExportSQLiteCmd loads chapters into SQLite.
type ExportSQLiteCmd struct {
	Books   []string `arg:"" optional:"" help:"Book codes (default every book)"`
	DB      string   `name:"db" help:"Database path (overrides database)" type:"path"`
	Dialect string   `help:"Which documents to export" enum:"en-only,filled" default:"filled"`
}

func (c *ExportSQLiteCmd) Run() error {
	for _, code := range c.Books {
		if err := checkBook(code); err != nil {
			return err
		}
	}
	d, err := chapter.ParseDialect(c.Dialect)
	if err != nil {
		return err
	}
	p, err := newPipeline(nil)
	if err != nil {
		return err
	}
	dbPath := c.DB
	if dbPath == "" {
		dbPath = p.Config().Database
	}
	if err := validation.ValidatePath(dbPath); err != nil {
		return fmt.Errorf("invalid database path: %w", err)
	}

	ctx, cancel := runContext()
	defer cancel()
	report, stats, err := p.Export(ctx, dbPath, c.Books, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s books=%d chapters=%d verses=%d\n", dbPath, stats.Books, stats.Chapters, stats.Verses)
	return printReport(report)
}

// ExportShowCmd reads one chapter back from the database.
type ExportShowCmd struct {
	Book    string `arg:"" help:"Book code"`
	Chapter int    `arg:"" help:"Chapter number"`
	DB      string `name:"db" help:"Database path (overrides database)" type:"path"`
	Dialect string `help:"Validate the stored chapter in this dialect" enum:"en-only,filled" default:"filled"`
}

func (c *ExportShowCmd) Run() error {
	if err := checkBook(c.Book); err != nil {
		return err
	}
	d, err := chapter.ParseDialect(c.Dialect)
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	dbPath := c.DB
	if dbPath == "" {
		dbPath = cfg.Database
	}

	db, err := versedb.OpenReadOnly(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := runContext()
	defer cancel()
	doc, err := db.Chapter(ctx, c.Book, c.Chapter)
	if err != nil {
		return err
	}
	opts := verify.Options{Dialect: d, BookCode: c.Book, Chapter: c.Chapter, Glosses: cfg.Glosses}
	if _, err := verify.Text(string(doc.Bytes()), opts); err != nil {
		return fmt.Errorf("stored chapter %s: %w", chapter.FileName(c.Book, c.Chapter), err)
	}
	_, err = doc.WriteTo(stdout)
	return err
}

// RunsShowCmd prints the failures recorded in a transcript.
type RunsShowCmd struct {
	Transcript string `arg:"" help:"Transcript file" type:"existingfile"`
}

func (c *RunsShowCmd) Run() error {
	tr, err := pipeline.LoadTranscript(c.Transcript)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "run %s: completed=%d failed=%d warnings=%d\n",
		tr.RunID(), len(tr.Completed()), len(tr.Failures()), len(tr.Warnings()))
	for _, e := range tr.Failures() {
		fmt.Fprintf(stdout, "%s %s [%s]: %s\n", color.RedString("FAIL"), chapter.FileName(e.Book, e.Chapter), e.Stage, e.Message)
	}
	if tr.HasErrors() {
		return exitCode(1)
	}
	return nil
}

// BooksCmd lists the configured book table.
type BooksCmd struct{}

func (c *BooksCmd) Run() error {
	_, table, err := loadConfig()
	if err != nil {
		return err
	}
	for _, code := range table.Codes() {
		b, err := table.Lookup(code)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%-4s %-16s %s\n", b.Code, b.Name, b.NameKO)
	}
	fmt.Fprintf(stdout, "books=%d\n", table.Len())
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := sqlite.GetInfo()
	fmt.Fprintf(stdout, "versesplit version %s\n", version)
	fmt.Fprintf(stdout, "sqlite driver: %s (%s, %s)\n", info.DriverName, info.DriverType, info.Package)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("versesplit"),
		kong.Description("KJV verse segmentation and canonical chapter validation"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run()
	var code exitCode
	if errors.As(err, &code) {
		os.Exit(int(code))
	}
	ctx.FatalIfErrorf(err)
}
