package markdown

import (
	"cmp"
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

// Document is one Markdown file plus the metadata the importer needs.
type Document struct {
	Path        string
	FrontMatter FrontMatter
	Body        string
	Checksum    []byte
	ModTime     time.Time
}

// LoaderConfig selects which files LoadDirectory picks up.
type LoaderConfig struct {
	// Pattern is matched against the file name, or against the full
	// slash path when it contains a "/". Defaults to "*.md".
	Pattern   string
	Recursive bool
}

// Loader reads Markdown documents out of an fs.FS. Paths are slash separated
// and relative to the root of that filesystem.
type Loader struct {
	fsys      fs.FS
	pattern   string
	recursive bool
}

func NewLoader(fsys fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	return &Loader{
		fsys:      fsys,
		pattern:   strings.TrimPrefix(pattern, "**/"),
		recursive: cfg.Recursive,
	}
}

// Read parses a single document.
func (l *Loader) Read(ctx context.Context, name string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = path.Clean(strings.TrimPrefix(name, "/"))

	info, err := fs.Stat(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("markdown: stat %s: %w", name, err)
	}
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("markdown: read %s: %w", name, err)
	}
	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("markdown: %s: %w", name, err)
	}

	sum := sha256.Sum256(data)
	return &Document{
		Path:        name,
		FrontMatter: fm,
		Body:        string(body),
		Checksum:    sum[:],
		ModTime:     info.ModTime(),
	}, nil
}

// LoadDirectory reads every matching document below dir, sorted by path.
// Entries whose name starts with "." or "_" are skipped.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root := path.Clean(strings.TrimPrefix(dir, "/"))

	var docs []*Document
	err := fs.WalkDir(l.fsys, root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if name != root && hidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if name != root && !l.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if !l.matches(name) {
			return nil
		}
		doc, err := l.Read(ctx, name)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(docs, func(a, b *Document) int { return cmp.Compare(a.Path, b.Path) })
	return docs, nil
}

func (l *Loader) matches(name string) bool {
	target := path.Base(name)
	if strings.Contains(l.pattern, "/") {
		target = name
	}
	ok, err := path.Match(l.pattern, target)
	return err == nil && ok
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
