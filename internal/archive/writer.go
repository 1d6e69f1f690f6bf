package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// File is one regular file to place in a bundle.
type File struct {
	Name string // slash-separated path below the base directory
	Data []byte
}

// Write creates a compressed tar archive at dstPath. The compression is
// chosen from the extension (.tar.xz or .tar.gz). Every entry is stored
// under baseDir with modTime so that equal inputs give equal archives.
func Write(dstPath, baseDir string, files []File, modTime time.Time) (err error) {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	outFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if cerr := outFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close archive file: %w", cerr)
		}
		if err != nil {
			os.Remove(dstPath)
		}
	}()

	var compressor io.WriteCloser
	switch {
	case strings.HasSuffix(dstPath, ".tar.xz"):
		compressor, err = xz.NewWriter(outFile)
		if err != nil {
			return fmt.Errorf("xz writer: %w", err)
		}
	case strings.HasSuffix(dstPath, ".tar.gz"):
		compressor = gzip.NewWriter(outFile)
	default:
		return fmt.Errorf("unsupported archive format: %s", dstPath)
	}

	tw := tar.NewWriter(compressor)

	if err := tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeDir,
		Name:     baseDir + "/",
		Mode:     0755,
		ModTime:  modTime,
	}); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	for _, f := range files {
		if err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     baseDir + "/" + f.Name,
			Mode:     0644,
			Size:     int64(len(f.Data)),
			ModTime:  modTime,
		}); err != nil {
			return fmt.Errorf("failed to add %s: %w", f.Name, err)
		}
		if _, err := tw.Write(f.Data); err != nil {
			return fmt.Errorf("failed to add %s: %w", f.Name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return fmt.Errorf("failed to finish compression: %w", err)
	}
	return nil
}
