// Package rawsource reads a raw KJV source file into the line sequence the
// segmentation engine consumes.
//
// Plain text is decoded (UTF-8, or UTF-16 when a BOM says so), NFC
// normalized and split on line breaks. XHTML sources, such as the chapters
// of an EPUB edition, yield one line per paragraph or heading.
package rawsource

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Format identifies a source layout.
type Format int

const (
	// Text is a plain text file, one physical line per line.
	Text Format = iota
	// XHTML is an (X)HTML or XML document read paragraph by paragraph.
	XHTML
)

func (f Format) String() string {
	if f == XHTML {
		return "xhtml"
	}
	return "text"
}

// blockSelector picks paragraphs and headings in document order,
// with or without an XHTML namespace.
var blockSelector = xpath.MustCompile(`//*[local-name()='p' or local-name()='h1' or local-name()='h2' or local-name()='h3' or local-name()='h4']`)

// DetectFormat chooses a format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xhtml", ".html", ".htm", ".xml":
		return XHTML
	default:
		return Text
	}
}

// decoder strips a UTF-8 BOM and transcodes UTF-16 input with a BOM.
func decoder(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadLines reads every line of r in the given format.
func ReadLines(r io.Reader, f Format) ([]string, error) {
	if f == XHTML {
		return readXHTML(r)
	}
	return readText(r)
}

// ReadFile reads path, detecting the format from its extension.
func ReadFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", path, err)
	}
	defer file.Close()

	lines, err := ReadLines(file, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read source %s: %w", path, err)
	}
	return lines, nil
}

func readText(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(norm.NFC.Reader(decoder(r)))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func readXHTML(r io.Reader) ([]string, error) {
	root, err := xmlquery.ParseWithOptions(decoder(r), xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			Strict:    false,
			AutoClose: xml.HTMLAutoClose,
			Entity:    xml.HTMLEntity,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("parsing XHTML: %w", err)
	}

	var lines []string
	for _, n := range xmlquery.QuerySelectorAll(root, blockSelector) {
		text := strings.Join(strings.Fields(n.InnerText()), " ")
		if text == "" {
			continue
		}
		lines = append(lines, norm.NFC.String(text))
	}
	return lines, nil
}
