// Package cas computes content digests for chapter documents.
// Every document carries both a SHA-256 and a BLAKE3 digest so bundles can
// be checked with either.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/zeebo/blake3"
)

// ErrInvalidHash is returned when a hash string is not 64 lowercase hex digits.
var ErrInvalidHash = errors.New("invalid hash format")

// ErrDigestMismatch is returned by Verify when content does not match.
var ErrDigestMismatch = errors.New("digest mismatch")

var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Digest holds both hashes of one blob.
type Digest struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
	Size   int64  `json:"size"`
}

// Sum computes the digest of data.
func Sum(data []byte) Digest {
	s := sha256.Sum256(data)
	b := blake3.Sum256(data)
	return Digest{
		SHA256: hex.EncodeToString(s[:]),
		BLAKE3: hex.EncodeToString(b[:]),
		Size:   int64(len(data)),
	}
}

// SumReader computes the digest of everything read from r.
func SumReader(r io.Reader) (Digest, error) {
	sh := sha256.New()
	bh := blake3.New()
	n, err := io.Copy(io.MultiWriter(sh, bh), r)
	if err != nil {
		return Digest{}, fmt.Errorf("failed to hash content: %w", err)
	}
	return Digest{
		SHA256: hex.EncodeToString(sh.Sum(nil)),
		BLAKE3: hex.EncodeToString(bh.Sum(nil)),
		Size:   n,
	}, nil
}

// SumFile computes the digest of the file at path.
func SumFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return SumReader(f)
}

// Valid reports whether both hashes are well formed.
func (d Digest) Valid() bool {
	return hashPattern.MatchString(d.SHA256) && hashPattern.MatchString(d.BLAKE3)
}

// Verify checks data against d.
func (d Digest) Verify(data []byte) error {
	if !d.Valid() {
		return ErrInvalidHash
	}
	got := Sum(data)
	if got.SHA256 != d.SHA256 {
		return fmt.Errorf("%w: sha256 %s, want %s", ErrDigestMismatch, got.SHA256, d.SHA256)
	}
	if got.BLAKE3 != d.BLAKE3 {
		return fmt.Errorf("%w: blake3 %s, want %s", ErrDigestMismatch, got.BLAKE3, d.BLAKE3)
	}
	if got.Size != d.Size {
		return fmt.Errorf("%w: size %d, want %d", ErrDigestMismatch, got.Size, d.Size)
	}
	return nil
}

// Short returns the first 12 hex digits of the SHA-256, for log lines.
func (d Digest) Short() string {
	if len(d.SHA256) < 12 {
		return d.SHA256
	}
	return d.SHA256[:12]
}
