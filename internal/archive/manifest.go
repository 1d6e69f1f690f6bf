package archive

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/FocuswithJustin/versesplit/core/cas"
)

// ManifestName is the manifest's path inside a bundle.
const ManifestName = "manifest.json"

// ChaptersDir holds the chapter documents inside a bundle.
const ChaptersDir = "chapters"

// ManifestVersion is bumped when the manifest layout changes.
const ManifestVersion = 1

// Manifest describes the chapters carried by a bundle.
type Manifest struct {
	Version  int       `json:"version"`
	ID       string    `json:"id"`
	Created  time.Time `json:"created"`
	Dialect  string    `json:"dialect"`
	Chapters []Entry   `json:"chapters"`
}

// Entry is one chapter document in a bundle.
type Entry struct {
	Path     string     `json:"path"`
	BookCode string     `json:"book_code"`
	Chapter  int        `json:"chapter"`
	Verses   int        `json:"verses"`
	Digest   cas.Digest `json:"digest"`
}

// Sort orders entries by path.
func (m *Manifest) Sort() {
	sort.Slice(m.Chapters, func(i, j int) bool { return m.Chapters[i].Path < m.Chapters[j].Path })
}

// Marshal encodes the manifest as indented JSON.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseManifest decodes and sanity-checks a manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	seen := make(map[string]bool, len(m.Chapters))
	for _, e := range m.Chapters {
		if e.Path == "" {
			return nil, fmt.Errorf("manifest entry without path")
		}
		if seen[e.Path] {
			return nil, fmt.Errorf("manifest lists %s twice", e.Path)
		}
		seen[e.Path] = true
		if !e.Digest.Valid() {
			return nil, fmt.Errorf("manifest entry %s: %w", e.Path, cas.ErrInvalidHash)
		}
	}
	return &m, nil
}
