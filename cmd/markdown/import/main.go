package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/kong"
	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-notes/cmd/markdown/internal/bootstrap"
	postscmd "github.com/goliatone/go-notes/internal/commands/posts"
	"github.com/goliatone/go-notes/internal/markdown"
	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

const (
	wordsPerMinute   = 200
	maxExcerptLength = 160
)

var moduleBuilder = bootstrap.BuildModule

type importCLI struct {
	Directory   string `arg:"" help:"Directory holding the Markdown files to import."`
	Pattern     string `default:"*.md" help:"Glob pattern applied when discovering files."`
	Recursive   bool   `default:"true" negatable:"" help:"Descend into subdirectories."`
	Config      string `help:"YAML configuration file."`
	EnvFile     string `name:"env-file" help:"Dotenv file loaded before the environment."`
	ContentRoot string `name:"content-root" help:"Content root holding posts.json (local source)."`
	Source      string `help:"Post source override (local or api)."`
	APIBaseURL  string `name:"api-base-url" help:"API base URL when the source is api."`
	DryRun      bool   `name:"dry-run" help:"Validate documents without saving them."`
}

func main() {
	if err := runImport(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("markdown import: %v", err)
	}
}

func runImport(ctx context.Context, args []string, stdout io.Writer) error {
	var cli importCLI
	parser, err := kong.New(&cli,
		kong.Name("import"),
		kong.Description("Import a directory of Markdown files with YAML frontmatter as posts."),
		kong.Writers(stdout, os.Stderr),
	)
	if err != nil {
		return err
	}
	if _, err := parser.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigFile:  cli.Config,
		EnvFile:     cli.EnvFile,
		ContentRoot: cli.ContentRoot,
		SourceMode:  cli.Source,
		APIBaseURL:  cli.APIBaseURL,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	if module.Source == nil {
		return fmt.Errorf("post source not configured")
	}

	loader := markdown.NewLoader(os.DirFS(cli.Directory), markdown.LoaderConfig{
		Pattern:   cli.Pattern,
		Recursive: cli.Recursive,
	})
	docs, err := loader.LoadDirectory(ctx, ".")
	if err != nil {
		return fmt.Errorf("load %s: %w", cli.Directory, err)
	}

	saved := 0
	handler := postscmd.NewUpsertPostHandler(module.Source, module.Logger, func(post *interfaces.Post) {
		saved++
		fmt.Fprintf(stdout, "saved %s\n", post.Slug)
	})

	for _, doc := range docs {
		msg, err := importCommand(doc)
		if err != nil {
			return err
		}
		msg.DryRun = cli.DryRun
		if err := handler.Execute(ctx, msg); err != nil {
			return fmt.Errorf("import %s: %w", doc.Path, err)
		}
		if cli.DryRun {
			fmt.Fprintf(stdout, "validated %s (%s)\n", msg.Slug, doc.Path)
		}
	}

	if cli.DryRun {
		fmt.Fprintf(stdout, "dry run: %d documents validated\n", len(docs))
		return nil
	}
	fmt.Fprintf(stdout, "imported %d posts\n", saved)
	return nil
}

// importCommand maps a loaded document onto an upsert message. Missing
// metadata is derived from the document itself where possible.
func importCommand(doc *markdown.Document) (postscmd.UpsertPostCommand, error) {
	fm := doc.FrontMatter
	body := strings.TrimSpace(doc.Body)

	title := fm.Title
	if title == "" {
		title = firstHeading(body)
	}
	if title == "" {
		title = strings.TrimSuffix(path.Base(doc.Path), path.Ext(doc.Path))
	}

	postSlug, err := deriveSlug(fm.Slug, title, doc.Path)
	if err != nil {
		return postscmd.UpsertPostCommand{}, err
	}

	date := fm.Date
	if date == "" && !doc.ModTime.IsZero() {
		date = doc.ModTime.UTC().Format("2006-01-02")
	}

	excerpt := fm.Excerpt
	if excerpt == "" {
		excerpt = fm.Description
	}
	if excerpt == "" {
		excerpt = firstParagraph(body)
	}

	reading := fm.ReadingTime
	if reading <= 0 {
		reading = estimateReadingTime(body)
	}

	return postscmd.UpsertPostCommand{
		Slug:        postSlug,
		Title:       title,
		Tag:         fm.Tag,
		Date:        date,
		Excerpt:     excerpt,
		Description: fm.Description,
		ReadingTime: reading,
		Markdown:    body,
	}, nil
}

func deriveSlug(explicit, title, filePath string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	candidates := []string{title, strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))}
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		normalized, err := slug.Normalize(candidate)
		if err != nil {
			continue
		}
		normalized = strings.ToLower(normalized)
		if posts.IsValidSlug(normalized) {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("derive slug for %s: no usable title or filename", filePath)
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

func firstParagraph(body string) string {
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			continue
		}
		trimmed := strings.TrimSpace(line)
		if inFence || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return truncate(trimmed, maxExcerptLength)
	}
	return ""
}

func truncate(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

func estimateReadingTime(body string) float64 {
	words := len(strings.Fields(body))
	if words == 0 {
		return 0
	}
	return math.Ceil(float64(words) / wordsPerMinute)
}
