package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/versesplit/core/cas"
	"github.com/FocuswithJustin/versesplit/core/chapter"
	vserrors "github.com/FocuswithJustin/versesplit/core/errors"
	"github.com/FocuswithJustin/versesplit/internal/archive"
	"github.com/FocuswithJustin/versesplit/internal/logging"
	"github.com/FocuswithJustin/versesplit/internal/validation"
)

// BundleExt is the bundle file extension.
const BundleExt = ".tar.xz"

// sourceDir returns the directory holding documents of dialect d.
func (p *Pipeline) sourceDir(d chapter.Dialect) string {
	if d == chapter.Filled {
		return p.cfg.FinalDir
	}
	return p.cfg.ENOnlyDir
}

// BundlePath returns where CreateBundle writes the bundle for bookCode.
func (p *Pipeline) BundlePath(bookCode string) string {
	return filepath.Join(p.cfg.BundleDir, bookCode+BundleExt)
}

// CreateBundle packs every chapter document of bookCode in dialect d into
// one archive with a manifest of digests. Every document must validate;
// the first that does not aborts the bundle.
func (p *Pipeline) CreateBundle(ctx context.Context, bookCode string, d chapter.Dialect) (string, *archive.Manifest, error) {
	if _, err := p.table.Lookup(bookCode); err != nil {
		return "", nil, err
	}
	dir := p.sourceDir(d)
	nums, err := chapterFiles(dir, bookCode)
	if err != nil {
		return "", nil, err
	}
	if len(nums) == 0 {
		return "", nil, vserrors.NewNotFound("chapter documents for book", bookCode+" in "+dir)
	}

	m := &archive.Manifest{
		Version: archive.ManifestVersion,
		ID:      uuid.NewString(),
		Created: p.now().UTC().Truncate(time.Second),
		Dialect: d.String(),
	}
	files := make([]archive.File, 0, len(nums)+1)
	for _, ch := range nums {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		src := chapterPath(dir, bookCode, ch)
		data, err := os.ReadFile(src)
		if err != nil {
			return "", nil, vserrors.NewIO("read", src, err)
		}
		vr, err := p.verifyBytes(src, data, d)
		if err != nil {
			return "", nil, err
		}

		name := path.Join(archive.ChaptersDir, chapter.FileName(bookCode, ch))
		m.Chapters = append(m.Chapters, archive.Entry{
			Path:     name,
			BookCode: bookCode,
			Chapter:  ch,
			Verses:   vr.Count(),
			Digest:   cas.Sum(data),
		})
		files = append(files, archive.File{Name: name, Data: data})
		logging.DebugContext(ctx, "bundle_entry", "path", name, "verses", vr.Count(), "sha256", m.Chapters[len(m.Chapters)-1].Digest.Short())
	}
	m.Sort()

	manifest, err := m.Marshal()
	if err != nil {
		return "", nil, err
	}
	files = append([]archive.File{{Name: archive.ManifestName, Data: manifest}}, files...)

	dst := p.BundlePath(bookCode)
	if err := archive.Write(dst, bookCode, files, m.Created); err != nil {
		return "", nil, err
	}
	logging.InfoContext(ctx, "bundle_created", "book", bookCode, "path", dst, "chapters", len(m.Chapters), "id", m.ID)
	return dst, m, nil
}

// CheckBundle re-reads a bundle and checks that the manifest and the
// chapter documents agree: every listed path is safe and present, every
// digest and verse count matches, every document validates in the
// manifest's dialect and no unlisted chapter is carried.
func (p *Pipeline) CheckBundle(ctx context.Context, bundlePath string) (*archive.Manifest, error) {
	files, err := archive.ReadAll(bundlePath)
	if err != nil {
		return nil, err
	}
	data, ok := files[archive.ManifestName]
	if !ok {
		return nil, fmt.Errorf("bundle %s: %s missing", bundlePath, archive.ManifestName)
	}
	m, err := archive.ParseManifest(data)
	if err != nil {
		return nil, vserrors.Wrap(err, "bundle "+bundlePath)
	}
	d, err := chapter.ParseDialect(m.Dialect)
	if err != nil {
		return nil, vserrors.Wrap(err, "bundle "+bundlePath)
	}

	listed := make(map[string]bool, len(m.Chapters))
	for _, e := range m.Chapters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.checkEntry(files, e, d); err != nil {
			return nil, vserrors.Wrap(err, "bundle "+bundlePath)
		}
		listed[path.Clean(e.Path)] = true
	}
	for name := range files {
		if strings.HasPrefix(name, archive.ChaptersDir+"/") && !listed[name] {
			return nil, fmt.Errorf("bundle %s: %s is not listed in the manifest", bundlePath, name)
		}
	}

	logging.InfoContext(ctx, "bundle_checked", "path", bundlePath, "chapters", len(m.Chapters), "id", m.ID)
	return m, nil
}

func (p *Pipeline) checkEntry(files map[string][]byte, e archive.Entry, d chapter.Dialect) error {
	clean, err := validation.SanitizePath(".", e.Path)
	if err != nil {
		return fmt.Errorf("%s: %w", e.Path, err)
	}
	name := filepath.ToSlash(clean)
	data, ok := files[name]
	if !ok {
		return fmt.Errorf("%s: listed in the manifest but missing", name)
	}
	if err := e.Digest.Verify(data); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	code, ch, ok := validation.ParseChapterFileName(name)
	if !ok || code != e.BookCode || ch != e.Chapter {
		return fmt.Errorf("%s: name does not match %s", name, chapter.FileName(e.BookCode, e.Chapter))
	}
	vr, err := p.verifyBytes(name, data, d)
	if err != nil {
		return err
	}
	if vr.Count() != e.Verses {
		return fmt.Errorf("%s: %d verses, manifest says %d", name, vr.Count(), e.Verses)
	}
	return nil
}
