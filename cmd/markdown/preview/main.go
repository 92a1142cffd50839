package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/goliatone/go-notes/cmd/markdown/internal/bootstrap"
	"github.com/goliatone/go-notes/internal/markdown"
)

var moduleBuilder = bootstrap.BuildModule

type previewCLI struct {
	File    string `arg:"" help:"Markdown file to preview."`
	Config  string `help:"YAML configuration file."`
	EnvFile string `name:"env-file" help:"Dotenv file loaded before the environment."`
	Engine  string `help:"Render engine override (builtin or goldmark)."`
	TOCOnly bool   `name:"toc-only" help:"Print only the table of contents."`
}

func main() {
	if err := runPreview(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("preview: %v", err)
	}
}

func runPreview(ctx context.Context, args []string, stdout io.Writer) error {
	var cli previewCLI
	parser, err := kong.New(&cli,
		kong.Name("preview"),
		kong.Description("Render a Markdown file and print its HTML and table of contents."),
		kong.Writers(stdout, os.Stderr),
	)
	if err != nil {
		return err
	}
	if _, err := parser.Parse(args); err != nil {
		return err
	}

	source, err := os.ReadFile(cli.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", cli.File, err)
	}
	fm, body, err := markdown.ParseFrontMatter(source)
	if err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigFile: cli.Config,
		EnvFile:    cli.EnvFile,
		Engine:     cli.Engine,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	if module.Markdown == nil {
		return fmt.Errorf("markdown service not configured")
	}

	doc, err := module.Markdown.Render(ctx, string(body))
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}

	toc, err := json.MarshalIndent(doc.Headings, "", "  ")
	if err != nil {
		return err
	}
	if cli.TOCOnly {
		fmt.Fprintf(stdout, "%s\n", toc)
		return nil
	}

	fmt.Fprintf(stdout, "Path: %s\nEngine: %s\n", cli.File, module.Markdown.Engine())
	if title := strings.TrimSpace(fm.Title); title != "" {
		fmt.Fprintf(stdout, "Title: %s\n", title)
	}
	if len(fm.Raw) > 0 {
		if frontmatter, err := json.MarshalIndent(fm.Raw, "", "  "); err == nil {
			fmt.Fprintf(stdout, "\nFrontmatter:\n%s\n", frontmatter)
		}
	}
	fmt.Fprintf(stdout, "\nRendered HTML:\n%s\n\nHeadings:\n%s\n", doc.HTML, toc)
	return nil
}
