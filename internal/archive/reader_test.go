package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var fixedTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testFiles() []File {
	return []File{
		{Name: ManifestName, Data: []byte(`{"version":1}`)},
		{Name: "chapters/gen_001.txt", Data: []byte("V|N=1|EN=a|KO=\n")},
	}
}

func TestWriteReadAll(t *testing.T) {
	for _, ext := range []string{".tar.xz", ".tar.gz"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "bundle"+ext)
			if err := Write(path, "bundle", testFiles(), fixedTime); err != nil {
				t.Fatalf("Write() error: %v", err)
			}

			got, err := ReadAll(path)
			if err != nil {
				t.Fatalf("ReadAll() error: %v", err)
			}
			want := map[string][]byte{
				ManifestName:           []byte(`{"version":1}`),
				"chapters/gen_001.txt": []byte("V|N=1|EN=a|KO=\n"),
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ReadAll() mismatch (-want +got):\n%s", diff)
			}

			data, err := ReadFile(path, "chapters/gen_001.txt")
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != "V|N=1|EN=a|KO=\n" {
				t.Errorf("ReadFile() = %q", data)
			}
			if _, err := ReadFile(path, "chapters/exo_001.txt"); err == nil {
				t.Error("expected error for missing entry")
			}
		})
	}
}

func TestWrite_Reproducible(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.tar.xz"), filepath.Join(dir, "b.tar.xz")
	for _, p := range []string{a, b} {
		if err := Write(p, "bundle", testFiles(), fixedTime); err != nil {
			t.Fatal(err)
		}
	}
	da, _ := os.ReadFile(a)
	db, _ := os.ReadFile(b)
	if !bytes.Equal(da, db) {
		t.Error("equal inputs produced different archives")
	}
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.zip")
	if err := Write(path, "bundle", testFiles(), fixedTime); err == nil {
		t.Fatal("expected error for .zip")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("failed write should not leave a file behind")
	}
}

func TestNewReader_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewReader(filepath.Join(dir, "missing.tar.xz")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.tar.xz")
	if err := os.WriteFile(bad, []byte("not xz"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewReader(bad); err == nil {
		t.Error("expected error for corrupt xz")
	}

	other := filepath.Join(dir, "x.rar")
	if err := os.WriteFile(other, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewReader(other); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestWalk_SkipsDirectoriesAndStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.tar.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	tw.WriteHeader(&tar.Header{Typeflag: tar.TypeDir, Name: "b/", Mode: 0755})
	for _, name := range []string{"b/one", "b/two"} {
		tw.WriteHeader(&tar.Header{Typeflag: tar.TypeReg, Name: name, Mode: 0644, Size: 1})
		tw.Write([]byte("x"))
	}
	tw.Close()
	gw.Close()
	f.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var names []string
	err = r.Walk(func(name string, _ io.Reader) (bool, error) {
		names = append(names, name)
		return true, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"one"}, names); diff != "" {
		t.Errorf("Walk() mismatch (-want +got):\n%s", diff)
	}
}
