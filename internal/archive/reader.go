// Package archive reads and writes the compressed tar bundles that carry a
// set of validated chapter documents and their manifest.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

// Reader wraps a tar.Reader with automatic decompression handling.
type Reader struct {
	*tar.Reader
	file         *os.File
	decompressor io.Closer
}

// NewReader creates a new archive reader for the given path.
// It automatically detects and handles .tar.gz and .tar.xz compression.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	var reader io.Reader = f
	var decompressor io.Closer

	switch {
	case strings.HasSuffix(path, ".tar.xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		reader = xzr
	case strings.HasSuffix(path, ".tar.gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		reader = gzr
		decompressor = gzr
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported archive format: %s", path)
	}

	return &Reader{
		Reader:       tar.NewReader(reader),
		file:         f,
		decompressor: decompressor,
	}, nil
}

// Close closes the archive reader and any underlying decompressors.
func (r *Reader) Close() error {
	var first error
	if r.decompressor != nil {
		first = r.decompressor.Close()
	}
	if err := r.file.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// Visitor is called for each regular file with its name relative to the
// bundle base directory. Return true to stop iteration.
type Visitor func(name string, content io.Reader) (stop bool, err error)

// Walk visits every regular file in the archive in stored order.
func (r *Reader) Walk(visit Visitor) error {
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		stop, err := visit(stripBase(header.Name), r)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// ReadAll returns the content of every regular file keyed by its name
// relative to the base directory.
func ReadAll(path string) (map[string][]byte, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	files := make(map[string][]byte)
	err = r.Walk(func(name string, content io.Reader) (bool, error) {
		data, err := io.ReadAll(content)
		if err != nil {
			return true, fmt.Errorf("read %s: %w", name, err)
		}
		files[name] = data
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ReadFile reads a specific file from the archive.
func ReadFile(archivePath, filename string) ([]byte, error) {
	r, err := NewReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var content []byte
	err = r.Walk(func(name string, c io.Reader) (bool, error) {
		if name != filename {
			return false, nil
		}
		var err error
		content, err = io.ReadAll(c)
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, fmt.Errorf("file not found: %s", filename)
	}
	return content, nil
}

func stripBase(name string) string {
	if idx := strings.Index(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
