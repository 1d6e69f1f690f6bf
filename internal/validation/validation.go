// Package validation checks user-supplied paths, book codes and file types
// before the pipeline touches the filesystem.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Limits on user-supplied input.
const (
	// MaxSourceSize is the largest raw source file accepted (64 MB).
	MaxSourceSize = 64 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrInvalidBookCode  = errors.New("invalid book code")
)

var (
	bookCodePattern        = regexp.MustCompile(`^[a-z0-9_]+$`)
	chapterFileNamePattern = regexp.MustCompile(`^([a-z0-9_]+)_([0-9]{3,})\.txt$`)
)

// SanitizePath validates a relative path taken from untrusted input, such
// as a bundle manifest, and ensures it stays inside baseDir.
// Returns the cleaned relative path.
func SanitizePath(baseDir, userPath string) (string, error) {
	if err := ValidatePath(userPath); err != nil {
		return "", err
	}

	cleanPath := filepath.Clean(filepath.FromSlash(userPath))
	if filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(baseDir, cleanPath))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	return cleanPath, nil
}

// ValidatePath checks length limits and rejects control characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// ValidateBookCode checks that code is usable in a header and a file name.
func ValidateBookCode(code string) error {
	if !bookCodePattern.MatchString(code) {
		return fmt.Errorf("%w: %q must match [a-z0-9_]+", ErrInvalidBookCode, code)
	}
	return nil
}

// ParseChapterFileName splits a name such as "gen_001.txt" into its book
// code and chapter number.
func ParseChapterFileName(name string) (string, int, bool) {
	m := chapterFileNamePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return "", 0, false
	}
	ch, err := strconv.Atoi(m[2])
	if err != nil || ch <= 0 {
		return "", 0, false
	}
	return m[1], ch, true
}

// FileType represents a validated file type.
type FileType string

const (
	FileTypeTarXZ   FileType = "tar.xz"
	FileTypeTarGZ   FileType = "tar.gz"
	FileTypeXZ      FileType = "xz"
	FileTypeGzip    FileType = "gzip"
	FileTypeSQLite  FileType = "sqlite"
	FileTypeXML     FileType = "xml"
	FileTypeText    FileType = "text"
	FileTypeUnknown FileType = "unknown"
)

// magicBytes defines magic byte signatures for file type detection.
var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeGzip, []byte{0x1f, 0x8b}},
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{FileTypeSQLite, []byte("SQLite format 3\x00")},
}

// ValidateFileType checks that content read from reader matches the type
// implied by filename's extension.
func ValidateFileType(reader io.Reader, filename string) (FileType, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	buf = buf[:n]

	detected := detectFileTypeFromMagic(buf)
	expected := detectFileTypeFromExtension(filename)

	switch {
	case expected == FileTypeTarXZ && detected == FileTypeXZ:
		return FileTypeTarXZ, nil
	case expected == FileTypeTarGZ && detected == FileTypeGzip:
		return FileTypeTarGZ, nil
	case detected == expected && detected != FileTypeUnknown:
		return detected, nil
	case detected == FileTypeUnknown && (expected == FileTypeText || expected == FileTypeXML):
		if isLikelyText(buf) {
			return expected, nil
		}
		return FileTypeUnknown, fmt.Errorf("file type mismatch: %s does not look like text", filename)
	case expected == FileTypeUnknown:
		return detected, nil
	default:
		return FileTypeUnknown, fmt.Errorf("file type mismatch: extension suggests %s but content is %s", expected, detected)
	}
}

func detectFileTypeFromMagic(buf []byte) FileType {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(buf, sig.magic) {
			return sig.fileType
		}
	}
	return FileTypeUnknown
}

func detectFileTypeFromExtension(filename string) FileType {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".tar.xz"):
		return FileTypeTarXZ
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FileTypeTarGZ
	}

	switch filepath.Ext(lower) {
	case ".xz":
		return FileTypeXZ
	case ".gz":
		return FileTypeGzip
	case ".sqlite", ".db", ".sqlite3":
		return FileTypeSQLite
	case ".xml", ".xhtml", ".html", ".htm":
		return FileTypeXML
	case ".txt":
		return FileTypeText
	default:
		return FileTypeUnknown
	}
}

// isLikelyText reports whether buf looks like UTF-8 or ASCII text. An empty
// buffer counts as text.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	// UTF-16 sources start with a BOM and contain NUL bytes
	if bytes.HasPrefix(buf, []byte{0xff, 0xfe}) || bytes.HasPrefix(buf, []byte{0xfe, 0xff}) {
		return true
	}
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	control := 0
	for _, b := range buf {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			control++
		}
	}
	return control*20 < len(buf)
}
