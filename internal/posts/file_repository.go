package posts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

const (
	// MetaFileName is the listing document inside the content root.
	MetaFileName = "posts.json"
	// PostsDirName holds one Markdown file per slug.
	PostsDirName = "posts"
)

const postsDocumentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array"
}`

var (
	metaSchemaOnce sync.Once
	metaSchema     *jsonschema.Schema
	metaSchemaErr  error
)

func compiledMetaSchema() (*jsonschema.Schema, error) {
	metaSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("posts.schema.json", strings.NewReader(postsDocumentSchema)); err != nil {
			metaSchemaErr = err
			return
		}
		metaSchema, metaSchemaErr = compiler.Compile("posts.schema.json")
	})
	return metaSchema, metaSchemaErr
}

// FileRepository stores posts under a content root:
//
//	<root>/posts.json
//	<root>/posts/<slug>.md
//
// Every write replaces the target through a temporary file and rename.
type FileRepository struct {
	root string
	mu   sync.RWMutex
}

var _ Repository = (*FileRepository)(nil)

// NewFileRepository returns a repository rooted at root.
func NewFileRepository(root string) *FileRepository {
	return &FileRepository{root: filepath.Clean(root)}
}

// Root returns the content root directory.
func (r *FileRepository) Root() string {
	return r.root
}

func (r *FileRepository) metaPath() string {
	return filepath.Join(r.root, MetaFileName)
}

func (r *FileRepository) markdownPath(slug string) string {
	return filepath.Join(r.root, PostsDirName, slug+".md")
}

// ListMeta reads posts.json. A missing file is an empty listing; a document
// that is not a JSON array is rejected.
func (r *FileRepository) ListMeta(ctx context.Context) ([]interfaces.PostMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	raw, err := os.ReadFile(r.metaPath())
	r.mu.RUnlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []interfaces.PostMeta{}, nil
		}
		return nil, storageError(err, "read posts.json")
	}
	return decodeMetaDocument(raw)
}

func decodeMetaDocument(raw []byte) ([]interfaces.PostMeta, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var document any
	if err := decoder.Decode(&document); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "posts.json is not valid JSON").
			WithTextCode(TextCodeMetaInvalid)
	}

	schema, err := compiledMetaSchema()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "compile posts.json schema")
	}
	if err := schema.Validate(document); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "posts.json must be an array").
			WithTextCode(TextCodeMetaInvalid)
	}

	items, _ := document.([]any)
	posts := make([]interfaces.PostMeta, 0, len(items))
	for _, item := range items {
		fields, _ := item.(map[string]any)
		posts = append(posts, NormalizeMeta(fields))
	}
	return SortByDateDesc(dropEmptySlugs(posts)), nil
}

// GetMeta returns a single post from the listing.
func (r *FileRepository) GetMeta(ctx context.Context, slug string) (*interfaces.PostMeta, error) {
	posts, err := r.ListMeta(ctx)
	if err != nil {
		return nil, err
	}
	return findMeta(posts, strings.TrimSpace(slug))
}

// SaveMeta normalises, sorts newest first and writes posts.json as indented
// JSON followed by a newline.
func (r *FileRepository) SaveMeta(ctx context.Context, posts []interfaces.PostMeta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	normalized := make([]interfaces.PostMeta, 0, len(posts))
	for _, post := range posts {
		normalized = append(normalized, CleanMeta(post))
	}
	payload, err := json.MarshalIndent(SortByDateDesc(normalized), "", "  ")
	if err != nil {
		return storageError(err, "encode posts.json")
	}
	payload = append(payload, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	return storageError(WriteFileAtomic(r.metaPath(), payload), "write posts.json")
}

// ReadMarkdown returns the body for slug, or "" when no file exists.
func (r *FileRepository) ReadMarkdown(ctx context.Context, slug string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !IsValidSlug(slug) {
		return "", InvalidSlugError(slug)
	}
	r.mu.RLock()
	data, err := os.ReadFile(r.markdownPath(slug))
	r.mu.RUnlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", storageError(err, "read markdown")
	}
	return string(data), nil
}

// WriteMarkdown stores the trimmed body followed by a single newline.
func (r *FileRepository) WriteMarkdown(ctx context.Context, slug, markdown string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !IsValidSlug(slug) {
		return InvalidSlugError(slug)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	content := []byte(strings.TrimSpace(markdown) + "\n")
	return storageError(WriteFileAtomic(r.markdownPath(slug), content), "write markdown")
}

// DeleteMarkdown removes the body for slug; a missing file is not an error.
func (r *FileRepository) DeleteMarkdown(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !IsValidSlug(slug) {
		return InvalidSlugError(slug)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.Remove(r.markdownPath(slug)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return storageError(err, "delete markdown")
	}
	return nil
}

// WriteFileAtomic writes data to path.tmp and renames it over path, creating
// the parent directory when needed.
func WriteFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
