package validation

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizePath(t *testing.T) {
	base := t.TempDir()
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{"simple", "chapters/gen_001.txt", filepath.Join("chapters", "gen_001.txt"), nil},
		{"dot segments", "chapters/./gen_001.txt", filepath.Join("chapters", "gen_001.txt"), nil},
		{"inner parent", "chapters/../gen_001.txt", "gen_001.txt", nil},
		{"double dot in name", "chapters/a..b.txt", filepath.Join("chapters", "a..b.txt"), nil},
		{"escape", "../etc/passwd", "", ErrPathTraversal},
		{"escape nested", "chapters/../../x", "", ErrPathTraversal},
		{"absolute", "/etc/passwd", "", ErrPathTraversal},
		{"empty", "", "", ErrEmptyPath},
		{"null byte", "a\x00b", "", ErrInvalidCharacter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePath(base, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("SanitizePath(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizePath(%q) unexpected error: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("SanitizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr error
	}{
		{"raw/kjv.txt", nil},
		{"", ErrEmptyPath},
		{strings.Repeat("a", MaxPathLength+1), ErrPathTooLong},
		{"bad\npath", ErrInvalidCharacter},
	}
	for _, tt := range tests {
		err := ValidatePath(tt.path)
		if tt.wantErr == nil && err != nil {
			t.Errorf("ValidatePath(%q) unexpected error: %v", tt.path, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidatePath(%q) error = %v, want %v", tt.path, err, tt.wantErr)
		}
	}
}

func TestValidateBookCode(t *testing.T) {
	for _, ok := range []string{"gen", "1sa", "song_of_songs"} {
		if err := ValidateBookCode(ok); err != nil {
			t.Errorf("ValidateBookCode(%q) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "Gen", "gen-1", "a b", "../x"} {
		if err := ValidateBookCode(bad); !errors.Is(err, ErrInvalidBookCode) {
			t.Errorf("ValidateBookCode(%q) error = %v", bad, err)
		}
	}
}

func TestParseChapterFileName(t *testing.T) {
	tests := []struct {
		name string
		code string
		ch   int
		ok   bool
	}{
		{"gen_001.txt", "gen", 1, true},
		{"out/psa_150.txt", "psa", 150, true},
		{"1sa_012.txt", "1sa", 12, true},
		{"gen_1.txt", "", 0, false},
		{"gen_000.txt", "", 0, false},
		{"GEN_001.txt", "", 0, false},
		{"gen_001.md", "", 0, false},
	}
	for _, tt := range tests {
		code, ch, ok := ParseChapterFileName(tt.name)
		if code != tt.code || ch != tt.ch || ok != tt.ok {
			t.Errorf("ParseChapterFileName(%q) = %q, %d, %v", tt.name, code, ch, ok)
		}
	}
}

func TestValidateFileType(t *testing.T) {
	xzMagic := []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00, 0x00}
	tests := []struct {
		name     string
		content  []byte
		filename string
		want     FileType
		wantErr  bool
	}{
		{"tar.xz", xzMagic, "bundle.tar.xz", FileTypeTarXZ, false},
		{"tar.gz", []byte{0x1f, 0x8b, 0x08}, "bundle.tar.gz", FileTypeTarGZ, false},
		{"sqlite", []byte("SQLite format 3\x00rest"), "kjv.db", FileTypeSQLite, false},
		{"text", []byte("1:1 In the beginning\n"), "kjv.txt", FileTypeText, false},
		{"empty text", nil, "kjv.txt", FileTypeText, false},
		{"utf16 text", []byte{0xff, 0xfe, '1', 0}, "kjv.txt", FileTypeText, false},
		{"xhtml", []byte("<html><p>1:1</p></html>"), "ch1.xhtml", FileTypeXML, false},
		{"binary as text", []byte{0x01, 0x02, 0x03, 0x04, 0x05}, "kjv.txt", FileTypeUnknown, true},
		{"xz claimed gz", xzMagic, "bundle.tar.gz", FileTypeUnknown, true},
		{"text claimed xz", []byte("hello"), "bundle.tar.xz", FileTypeUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFileType(bytes.NewReader(tt.content), tt.filename)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFileType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateFileType() = %v, want %v", got, tt.want)
			}
		})
	}
}
