// Package builder assembles translated documents into a single GuideXML
// guide, ordering chapters by the master document's toctree.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/guidexml/internal/doctree"
	"github.com/dgallion1/guidexml/internal/guidexml"
	"github.com/dgallion1/guidexml/internal/parser"
)

var (
	ErrNoChapterOrder = errors.New("could not determine chapter ordering")
	ErrNoTitle        = errors.New("required title configuration absent")
)

// sourceExts is the lookup order used when resolving a document name to a
// file in the source directory.
var sourceExts = []string{".xml", ".md", ".markdown", ".txt", ".html", ".htm", ".docx", ".pdf", ".csv"}

// Builder turns a project's source directory into one guide file.
type Builder struct {
	project    *Project
	translator *guidexml.Translator
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Builder)

func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithClock overrides the time source used for the <date> element.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func New(p *Project, opts ...Option) *Builder {
	b := &Builder{
		project: p,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.project.applyDefaults()
	b.translator = guidexml.NewTranslator(
		guidexml.WithTags(p.Tags),
		guidexml.WithLogger(b.logger),
	)
	return b
}

// Build writes the guide and the static directories into outDir and
// returns the path of the guide file.
func (b *Builder) Build(ctx context.Context, outDir string) (string, error) {
	p := b.project
	if p.Title == "" {
		return "", ErrNoTitle
	}

	order, err := b.chapterOrder()
	if err != nil {
		return "", err
	}

	chapters := make([]Chapter, 0, len(order))
	for _, entry := range order {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		ch, err := b.chapter(entry)
		if err != nil {
			return "", err
		}
		chapters = append(chapters, ch)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := copyStatic(p.SourceDir, outDir, p.StaticPaths); err != nil {
		return "", err
	}

	out := filepath.Join(outDir, p.Output)
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("create guide: %w", err)
	}
	meta := Meta{Title: p.Title, Version: p.Version, Date: b.now()}
	if err := WriteGuide(f, meta, chapters); err != nil {
		f.Close()
		return "", fmt.Errorf("write guide: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close guide: %w", err)
	}

	b.logger.Info("guide written", "path", out, "chapters", len(chapters))
	return out, nil
}

// chapterOrder reads the toctree of the master document, falling back to
// the chapters listed in the project.
func (b *Builder) chapterOrder() ([]doctree.TocEntry, error) {
	p := b.project
	if path, ok := b.locate(p.MasterDoc); ok {
		tree, err := parseFile(path)
		if err != nil {
			return nil, fmt.Errorf("master doc %s: %w", p.MasterDoc, err)
		}
		if entries, ok := tree.TOCEntries(); ok && len(entries) > 0 {
			return entries, nil
		}
	}
	if len(p.Chapters) > 0 {
		return p.Chapters, nil
	}
	return nil, ErrNoChapterOrder
}

func (b *Builder) chapter(entry doctree.TocEntry) (Chapter, error) {
	ch := Chapter{Title: entry.Title}

	path, ok := b.locate(entry.DocName)
	if !ok {
		b.logger.Warn("chapter document not found", "doc", entry.DocName)
		if ch.Title == "" {
			ch.Title = entry.DocName
		}
		return ch, nil
	}

	tree, err := parseFile(path)
	if err != nil {
		return ch, fmt.Errorf("chapter %s: %w", entry.DocName, err)
	}
	records, err := b.translator.Translate(tree)
	if err != nil {
		return ch, fmt.Errorf("translate %s: %w", entry.DocName, err)
	}
	for _, rec := range records {
		ch.Sections = append(ch.Sections, rec.Sections...)
	}

	// An untitled entry takes the title of its document.
	if ch.Title == "" {
		ch.Title = entry.DocName
		if len(ch.Sections) > 0 && ch.Sections[0].Title != "" {
			ch.Title = ch.Sections[0].Title
		}
	}
	b.logger.Debug("chapter translated", "doc", entry.DocName, "sections", len(ch.Sections))
	return ch, nil
}

// locate finds the source file for a document name, trying each
// supported extension in turn.
func (b *Builder) locate(docName string) (string, bool) {
	base := filepath.Join(b.project.SourceDir, filepath.FromSlash(docName))
	if parser.IsSupportedExtension(base) && fileExists(base) {
		return base, true
	}
	for _, ext := range sourceExts {
		if fileExists(base + ext) {
			return base + ext, true
		}
	}
	return "", false
}

func parseFile(path string) (*doctree.Node, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f, path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// copyStatic replaces each static directory in outDir with a fresh copy
// from the source directory.
func copyStatic(srcDir, outDir string, paths []string) error {
	for _, rel := range paths {
		src := filepath.Join(srcDir, rel)
		dst := filepath.Join(outDir, rel)
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("remove stale %s: %w", rel, err)
		}
		if err := os.CopyFS(dst, os.DirFS(src)); err != nil {
			return fmt.Errorf("copy static %s: %w", rel, err)
		}
	}
	return nil
}
