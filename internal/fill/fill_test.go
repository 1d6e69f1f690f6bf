package fill

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/versesplit/core/chapter"
)

var fast = Options{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

func enOnly() *chapter.Document {
	return &chapter.Document{
		Header: chapter.Header{Book: "Genesis", BookCode: "gen", Chapter: 1},
		Title:  chapter.Title{EN: "Genesis 1", KO: "창세기 1장"},
		Verses: []chapter.Verse{
			{N: 1, EN: "In the beginning God created the heaven and the earth."},
			{N: 2, EN: "And the earth was without form, and void;"},
			{N: 3, EN: "And God said, Let there be light: and there was light."},
		},
	}
}

func TestParseResponse(t *testing.T) {
	resp := strings.Join([]string{
		"Here you go:",
		"KO|N=1|KO=태초에 하나님이 천지를 창조하시니라",
		"  KO|N=2|KO=땅이   혼돈하고  ",
		"KO|N=2|KO=중복",
		"KO|N=3|KO=",
		"KO|N=4|KO=a|b",
		"KO|N=0|KO=영",
		"V|N=5|EN=x|KO=y",
	}, "\n")
	want := map[int]string{
		1: "태초에 하나님이 천지를 창조하시니라",
		2: "땅이 혼돈하고",
	}
	if diff := cmp.Diff(want, ParseResponse(resp)); diff != "" {
		t.Errorf("ParseResponse() mismatch (-want +got):\n%s", diff)
	}
}

func TestPromptText(t *testing.T) {
	p := Prompt{BookCode: "gen", Chapter: 1, Attempt: 1, Verses: enOnly().Verses[:2]}
	text := p.Text()
	for _, want := range []string{"gen chapter 1", "KO|N=<verse>|KO=", "EVERY verse", "EN|N=1|EN=In the beginning", "EN|N=2|EN=And the earth"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "N=3|") {
		t.Error("prompt should only list the requested verses")
	}

	p = Prompt{BookCode: "gen", Chapter: 1, Attempt: 2, Verses: enOnly().Verses[2:]}
	if text := p.Text(); !strings.Contains(text, "missing verses [3]") {
		t.Errorf("retry prompt should name missing verses:\n%s", text)
	}
}

func TestChapter_RetriesMissing(t *testing.T) {
	doc := enOnly()
	var asked [][]int
	tr := TranslatorFunc(func(_ context.Context, p Prompt) (string, error) {
		var nums []int
		var sb strings.Builder
		for _, v := range p.Verses {
			nums = append(nums, v.N)
			// the first answer drops verse 2
			if p.Attempt == 1 && v.N == 2 {
				continue
			}
			fmt.Fprintf(&sb, "KO|N=%d|KO=절%d\n", v.N, v.N)
		}
		asked = append(asked, nums)
		return sb.String(), nil
	})

	if err := Chapter(context.Background(), doc, tr, fast); err != nil {
		t.Fatalf("Chapter() error: %v", err)
	}
	if diff := cmp.Diff([][]int{{1, 2, 3}, {2}}, asked); diff != "" {
		t.Errorf("prompts mismatch (-want +got):\n%s", diff)
	}
	if len(Missing(doc)) != 0 {
		t.Errorf("Missing() = %v", Missing(doc))
	}
	if doc.Verses[1].KO != "절2" {
		t.Errorf("verse 2 KO = %q", doc.Verses[1].KO)
	}
}

func TestChapter_Incomplete(t *testing.T) {
	doc := enOnly()
	calls := 0
	tr := TranslatorFunc(func(_ context.Context, p Prompt) (string, error) {
		calls++
		return "KO|N=1|KO=하나\n", nil
	})
	err := Chapter(context.Background(), doc, tr, fast)
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if calls != fast.MaxAttempts {
		t.Errorf("translator called %d times, want %d", calls, fast.MaxAttempts)
	}
	if diff := cmp.Diff([]int{2, 3}, Missing(doc)); diff != "" {
		t.Errorf("Missing() mismatch (-want +got):\n%s", diff)
	}
}

func TestChapter_TranslatorErrorRetried(t *testing.T) {
	doc := enOnly()
	calls := 0
	tr := TranslatorFunc(func(_ context.Context, p Prompt) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("rate limited")
		}
		return "KO|N=1|KO=가\nKO|N=2|KO=나\nKO|N=3|KO=다\n", nil
	})
	if err := Chapter(context.Background(), doc, tr, fast); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestChapter_SkipsFilledUnlessAll(t *testing.T) {
	doc := enOnly()
	for i := range doc.Verses {
		doc.Verses[i].KO = "기존"
	}
	called := false
	tr := TranslatorFunc(func(_ context.Context, p Prompt) (string, error) {
		called = true
		return "KO|N=1|KO=새\nKO|N=2|KO=새\nKO|N=3|KO=새\n", nil
	})

	if err := Chapter(context.Background(), doc, tr, fast); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("translator should not be called when nothing is missing")
	}

	opts := fast
	opts.All = true
	if err := Chapter(context.Background(), doc, tr, opts); err != nil {
		t.Fatal(err)
	}
	if doc.Verses[0].KO != "새" {
		t.Errorf("All did not re-translate: %q", doc.Verses[0].KO)
	}
}

func TestChapter_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr := TranslatorFunc(func(ctx context.Context, p Prompt) (string, error) {
		cancel()
		return "", ctx.Err()
	})
	err := Chapter(ctx, enOnly(), tr, Options{MaxAttempts: 10, InitialInterval: time.Millisecond})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFileTranslator(t *testing.T) {
	dir := t.TempDir()
	resp := "KO|N=1|KO=가\nKO|N=2|KO=나\nKO|N=3|KO=다\n"
	if err := os.WriteFile(filepath.Join(dir, "gen_001.txt"), []byte(resp), 0644); err != nil {
		t.Fatal(err)
	}

	doc := enOnly()
	if err := Chapter(context.Background(), doc, FileTranslator{Dir: dir}, fast); err != nil {
		t.Fatal(err)
	}
	if doc.Verses[2].KO != "다" {
		t.Errorf("verse 3 KO = %q", doc.Verses[2].KO)
	}

	doc = enOnly()
	doc.Header.Chapter = 2
	calls := 0
	counting := TranslatorFunc(func(ctx context.Context, p Prompt) (string, error) {
		calls++
		return FileTranslator{Dir: dir}.Translate(ctx, p)
	})
	if err := Chapter(context.Background(), doc, counting, fast); err == nil {
		t.Fatal("expected error for missing recording")
	}
	if calls != 1 {
		t.Errorf("missing recording should not be retried, calls = %d", calls)
	}
}
