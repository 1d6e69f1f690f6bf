package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

const rawGenesis = `The First Book of Moses: Called Genesis

CHAPTER 1
1:1 In the beginning God created
the heaven and the earth.
1:2 And the earth was without form, and void; and God spake unto the waters.

CHAPTER 2
2:1 Thus the heavens and the earth were finished.
`

// Test helper functions

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

// setupCLI points the global flags at a config rooted in a temp directory
// and captures stdout.
func setupCLI(t *testing.T) (string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`raw_dir: %q
en_only_dir: %q
final_dir: %q
bundle_dir: %q
database: %q
fill:
  responses_dir: %q
  max_attempts: 2
  initial_interval: 1ms
  max_interval: 2ms
`,
		filepath.Join(dir, "raw"), filepath.Join(dir, "en_only"), filepath.Join(dir, "final"),
		filepath.Join(dir, "bundles"), filepath.Join(dir, "kjv.db"), filepath.Join(dir, "responses"))

	out := &bytes.Buffer{}
	oldOut, oldNoColor := stdout, color.NoColor
	stdout, color.NoColor = out, true
	CLI.Config = createTestFile(t, dir, "versesplit.yaml", cfg)
	CLI.LogLevel = "error"
	t.Cleanup(func() {
		stdout, color.NoColor = oldOut, oldNoColor
		CLI.Config, CLI.LogLevel, CLI.LogFormat = "", "", ""
	})
	return dir, out
}

func wantExit(t *testing.T, err error, code int) {
	t.Helper()
	var got exitCode
	if !errors.As(err, &got) || int(got) != code {
		t.Fatalf("expected exit status %d, got %v", code, err)
	}
}

func TestVerifyCmd(t *testing.T) {
	dir, out := setupCLI(t)
	valid := "#BOOK=Genesis|BOOKCODE=gen|CHAPTER=1|VERSION=KJV|LANGPAIR=EN-KO|ARCHAIC=INLINE_PARENS\n" +
		"T|EN=Genesis 1|KO=창세기 1장\n" +
		"V|N=1|EN=In the beginning|KO=태초에\n" +
		"V|N=2|EN=Come unto(to) me|KO=내게로 오라\n"

	tests := []struct {
		name    string
		content string
		want    string
		fail    bool
	}{
		{"pass", valid, "PASS: verses=2\n", false},
		{"blank line", strings.Replace(valid, "V|N=2", "\nV|N=2", 1), "FAIL: line 4: blank line; no blank lines allowed\n", true},
		{"bare archaic word", strings.Replace(valid, "unto(to)", "unto", 1), "FAIL: line 4: archaic rule: 'unto' must be glossed as unto(to)\n", true},
		{"order", strings.Replace(valid, "V|N=2", "V|N=3", 1), "FAIL: line 4: missing verse numbers: [2]\n", true},
		{"empty KO", strings.Replace(valid, "KO=태초에", "KO=", 1), "FAIL: line 3: verse 1 has empty KO text\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			path := createTestFile(t, filepath.Join(dir, tt.name), "gen_001.txt", tt.content)
			err := (&VerifyCmd{Path: path, Dialect: "filled"}).Run()
			if tt.fail {
				wantExit(t, err, 1)
			} else if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestVerifyCmd_EmptyENWarning(t *testing.T) {
	dir, out := setupCLI(t)
	doc := "#BOOK=Genesis|BOOKCODE=gen|CHAPTER=1|VERSION=KJV|LANGPAIR=EN-KO|ARCHAIC=INLINE_PARENS\n" +
		"T|EN=Genesis 1|KO=\n" +
		"V|N=1|EN=|KO=\n"
	path := createTestFile(t, dir, "gen_001.txt", doc)
	if err := (&VerifyCmd{Path: path, Dialect: "en-only"}).Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	want := "WARN: line 3: verse 1 has empty EN text\nPASS: verses=1\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestPipelineCommands(t *testing.T) {
	dir, out := setupCLI(t)
	src := createTestFile(t, dir, "kjv.txt", rawGenesis)
	createTestFile(t, dir, "responses/gen_001.txt", "KO|N=1|KO=태초에 하나님이 천지를 창조하시니라\nKO|N=2|KO=땅이 혼돈하고\n")
	createTestFile(t, dir, "responses/gen_002.txt", "KO|N=1|KO=천지와 만물이 다 이루니라\n")

	if err := (&SplitCmd{Source: src, Book: "gen"}).Run(); err != nil {
		t.Fatalf("split: %v\n%s", err, out)
	}
	if !strings.Contains(out.String(), "PASS gen_002.txt: verses=1") {
		t.Errorf("split output:\n%s", out)
	}

	out.Reset()
	transcript := filepath.Join(dir, "run.jsonl")
	if err := (&BatchCmd{Book: "gen", Chapters: "1-2", Fill: true, Transcript: transcript}).Run(); err != nil {
		t.Fatalf("batch: %v\n%s", err, out)
	}
	if !strings.Contains(out.String(), "chapters=2 succeeded=2 failed=0") {
		t.Errorf("batch output:\n%s", out)
	}

	out.Reset()
	if err := (&VerifyCmd{Path: filepath.Join(dir, "final", "gen_001.txt"), Dialect: "filled"}).Run(); err != nil {
		t.Fatalf("verify: %v\n%s", err, out)
	}

	out.Reset()
	if err := (&BundleCreateCmd{Book: "gen", Dialect: "filled"}).Run(); err != nil {
		t.Fatalf("bundle create: %v", err)
	}
	if !strings.Contains(out.String(), "CREATED") {
		t.Errorf("bundle create output:\n%s", out)
	}

	out.Reset()
	if err := (&BundleCheckCmd{Path: filepath.Join(dir, "bundles", "gen.tar.xz")}).Run(); err != nil {
		t.Fatalf("bundle check: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out.String(), "PASS: chapters=2 verses=3 dialect=filled") {
		t.Errorf("bundle check output:\n%s", out)
	}

	out.Reset()
	if err := (&ExportSQLiteCmd{Books: []string{"gen"}, Dialect: "filled"}).Run(); err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	if !strings.Contains(out.String(), "chapters=2 verses=3") {
		t.Errorf("export output:\n%s", out)
	}

	out.Reset()
	if err := (&ExportShowCmd{Book: "gen", Chapter: 2, Dialect: "filled"}).Run(); err != nil {
		t.Fatalf("export show: %v", err)
	}
	final, err := os.ReadFile(filepath.Join(dir, "final", "gen_002.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != string(final) {
		t.Errorf("export show output:\n%s\nwant:\n%s", out, final)
	}

	out.Reset()
	if err := (&RunsShowCmd{Transcript: transcript}).Run(); err != nil {
		t.Fatalf("runs show: %v", err)
	}
	if !strings.Contains(out.String(), "completed=2 failed=0") {
		t.Errorf("runs show output:\n%s", out)
	}
}

func TestBatchCmd_FailureExitCode(t *testing.T) {
	dir, out := setupCLI(t)
	src := createTestFile(t, dir, "kjv.txt", rawGenesis)
	if err := (&SplitCmd{Source: src, Book: "gen"}).Run(); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	transcript := filepath.Join(dir, "run.jsonl")
	// no recorded responses, so the fill step fails for every chapter
	err := (&BatchCmd{Book: "gen", Fill: true, Transcript: transcript}).Run()
	wantExit(t, err, 1)
	if !strings.Contains(out.String(), "succeeded=0 failed=2") {
		t.Errorf("batch output:\n%s", out)
	}

	out.Reset()
	wantExit(t, (&RunsShowCmd{Transcript: transcript}).Run(), 1)
	if !strings.Contains(out.String(), "FAIL gen_001.txt [fill]") {
		t.Errorf("runs show output:\n%s", out)
	}
}

func TestCommands_InvalidInput(t *testing.T) {
	dir, _ := setupCLI(t)
	src := createTestFile(t, dir, "kjv.txt", rawGenesis)
	tests := []struct {
		name string
		cmd  interface{ Run() error }
	}{
		{"split bad book", &SplitCmd{Source: src, Book: "Gen"}},
		{"split bad selection", &SplitCmd{Source: src, Book: "gen", Chapters: "3-1"}},
		{"split binary source", &SplitCmd{Source: createTestFile(t, dir, "kjv.bin.txt", "\x00\x01\x02\x03\x04"), Book: "gen"}},
		{"batch oversized selection", &BatchCmd{Book: "gen", Chapters: "1-1000000000"}},
		{"build bad book", &BuildCmd{Book: "../gen", Chapter: 1}},
		{"bundle check not an archive", &BundleCheckCmd{Path: src}},
		{"export bad book", &ExportSQLiteCmd{Books: []string{"GEN"}}},
		{"export show missing database", &ExportShowCmd{Book: "gen", Chapter: 1, DB: filepath.Join(dir, "absent.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBooksCmd(t *testing.T) {
	_, out := setupCLI(t)
	if err := (&BooksCmd{}).Run(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 67 || lines[66] != "books=66" {
		t.Errorf("got %d lines, last %q", len(lines), lines[len(lines)-1])
	}
	if !strings.HasPrefix(lines[0], "gen  Genesis") || !strings.Contains(lines[0], "창세기") {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestVersionCmd(t *testing.T) {
	_, out := setupCLI(t)
	if err := (&VersionCmd{}).Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "versesplit version "+version) || !strings.Contains(out.String(), "sqlite driver: ") {
		t.Errorf("output = %q", out.String())
	}
}
