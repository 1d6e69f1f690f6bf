package cas

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSum_KnownVectors(t *testing.T) {
	d := Sum([]byte(""))
	if d.SHA256 != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("sha256 of empty = %s", d.SHA256)
	}
	if d.BLAKE3 != "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262" {
		t.Errorf("blake3 of empty = %s", d.BLAKE3)
	}
	if d.Size != 0 || !d.Valid() {
		t.Errorf("unexpected digest %+v", d)
	}
}

func TestSumReader_MatchesSum(t *testing.T) {
	data := "V|N=1|EN=In the beginning|KO=\n"
	got, err := SumReader(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if got != Sum([]byte(data)) {
		t.Errorf("SumReader() = %+v, Sum() = %+v", got, Sum([]byte(data)))
	}
}

func TestSumFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen_001.txt")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := SumFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != Sum([]byte("abc")) {
		t.Errorf("SumFile() mismatch")
	}
	if got.Short() != got.SHA256[:12] {
		t.Errorf("Short() = %s", got.Short())
	}

	if _, err := SumFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestVerify(t *testing.T) {
	d := Sum([]byte("chapter"))
	if err := d.Verify([]byte("chapter")); err != nil {
		t.Errorf("Verify() unexpected error: %v", err)
	}
	if err := d.Verify([]byte("chapters")); !errors.Is(err, ErrDigestMismatch) {
		t.Errorf("expected mismatch, got %v", err)
	}
	if err := (Digest{SHA256: "zz"}).Verify(nil); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("expected invalid hash, got %v", err)
	}
}
