package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	notes "github.com/goliatone/go-notes"
	postscmd "github.com/goliatone/go-notes/internal/commands/posts"
	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/internal/markdown"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// lookupEnv is swapped in tests to isolate the process environment.
var lookupEnv = os.LookupEnv

type postsCLI struct {
	Config      string `help:"YAML configuration file."`
	EnvFile     string `name:"env-file" help:"Dotenv file loaded before the environment."`
	ContentRoot string `name:"content-root" help:"Content root holding posts.json."`
	EditsPath   string `name:"edits-path" help:"Local drafts file."`
	Source      string `help:"Post source override (local or api)."`
	APIBaseURL  string `name:"api-base-url" help:"API base URL when the source is api."`
	Username    string `help:"Admin username used to log in before mutating an api source."`
	Password    string `env:"ADMIN_PASSWORD" help:"Admin password used with --username."`

	List       listCmd       `cmd:"" help:"List posts newest first."`
	Show       showCmd       `cmd:"" help:"Print a post as JSON."`
	Tags       tagsCmd       `cmd:"" help:"List distinct tags."`
	Upsert     upsertCmd     `cmd:"" help:"Create or replace a post from a Markdown file."`
	Delete     deleteCmd     `cmd:"" help:"Delete a post."`
	Drafts     draftsCmd     `cmd:"" help:"Show unpublished local edits."`
	Clear      clearCmd      `cmd:"" help:"Discard unpublished local edits."`
	Operations operationsCmd `cmd:"" help:"Show the admin operation log (api source)."`
}

// runEnv is bound into every subcommand Run method.
type runEnv struct {
	ctx    context.Context
	out    io.Writer
	source notes.SourceService
	logger interfaces.Logger
	login  func() error
}

func main() {
	if err := runPosts(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("posts: %v", err)
	}
}

func runPosts(ctx context.Context, args []string, stdout io.Writer) error {
	var cli postsCLI
	parser, err := kong.New(&cli,
		kong.Name("posts"),
		kong.Description("Inspect and edit posts through the configured source."),
		kong.Writers(stdout, os.Stderr),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := cli.config()
	if err != nil {
		return err
	}
	module, err := notes.New(cfg)
	if err != nil {
		return fmt.Errorf("initialise notes module: %w", err)
	}
	defer module.Close()

	env := &runEnv{
		ctx:    ctx,
		out:    stdout,
		source: module.Source(),
		logger: logging.PostsLogger(module.LoggerProvider()),
	}
	env.login = func() error { return cli.login(env) }
	return kctx.Run(env)
}

func (cli *postsCLI) config() (notes.Config, error) {
	cfg, err := notes.LoadConfig(notes.LoadOptions{
		ConfigFile: cli.Config,
		EnvFile:    cli.EnvFile,
		Lookup:     lookupEnv,
	})
	if err != nil {
		return notes.Config{}, fmt.Errorf("load config: %w", err)
	}
	if cli.ContentRoot != "" {
		cfg.Content.Root = cli.ContentRoot
	}
	if cli.EditsPath != "" {
		cfg.Source.EditsPath = cli.EditsPath
	}
	if cli.Source != "" {
		cfg.Source.Mode = cli.Source
	}
	if cli.APIBaseURL != "" {
		cfg.Source.APIBaseURL = cli.APIBaseURL
	}
	cfg.Admin.Enabled = false
	cfg.Content.Watch = false
	cfg.Metrics.Enabled = false
	if err := cfg.Validate(); err != nil {
		return notes.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// login opens an admin session on api sources when credentials are given.
func (cli *postsCLI) login(env *runEnv) error {
	if strings.TrimSpace(cli.Username) == "" {
		return nil
	}
	session, err := env.source.Login(env.ctx, cli.Username, cli.Password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if !session.LoggedIn {
		return fmt.Errorf("login: session not established")
	}
	return nil
}

type listCmd struct {
	JSON bool `help:"Print JSON instead of a table."`
}

func (c *listCmd) Run(env *runEnv) error {
	list, err := env.source.AllPosts(env.ctx)
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(env.out, list)
	}
	w := tabwriter.NewWriter(env.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSLUG\tTAG\tTITLE")
	for _, post := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", post.Date, post.Slug, post.Tag, post.Title)
	}
	return w.Flush()
}

type showCmd struct {
	Slug string `arg:"" help:"Post slug."`
}

func (c *showCmd) Run(env *runEnv) error {
	post, err := env.source.PostBySlug(env.ctx, c.Slug)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("post %q not found", c.Slug)
	}
	return writeJSON(env.out, post)
}

type tagsCmd struct{}

func (tagsCmd) Run(env *runEnv) error {
	tags, err := env.source.Tags(env.ctx)
	if err != nil {
		return err
	}
	for _, tag := range tags {
		fmt.Fprintln(env.out, tag)
	}
	return nil
}

type upsertCmd struct {
	File        string  `arg:"" help:"Markdown file; frontmatter fields fill unset flags."`
	Slug        string  `help:"Post slug."`
	Title       string  `help:"Post title."`
	Tag         string  `help:"Post tag."`
	Date        string  `help:"Publication date (YYYY-MM-DD)."`
	Excerpt     string  `help:"Listing excerpt."`
	Description string  `help:"Meta description."`
	ReadingTime float64 `name:"reading-time" help:"Reading time in minutes."`
	DryRun      bool    `name:"dry-run" help:"Validate without saving."`
}

func (c *upsertCmd) Run(env *runEnv) error {
	raw, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}
	fm, body, err := markdown.ParseFrontMatter(raw)
	if err != nil {
		return err
	}

	msg := postscmd.UpsertPostCommand{
		Slug:        firstNonEmpty(c.Slug, fm.Slug),
		Title:       firstNonEmpty(c.Title, fm.Title),
		Tag:         firstNonEmpty(c.Tag, fm.Tag),
		Date:        firstNonEmpty(c.Date, fm.Date),
		Excerpt:     firstNonEmpty(c.Excerpt, fm.Excerpt),
		Description: firstNonEmpty(c.Description, fm.Description),
		ReadingTime: c.ReadingTime,
		Markdown:    strings.TrimSpace(string(body)),
		DryRun:      c.DryRun,
	}
	if msg.ReadingTime <= 0 {
		msg.ReadingTime = fm.ReadingTime
	}

	if err := env.login(); err != nil {
		return err
	}
	handler := postscmd.NewUpsertPostHandler(env.source, env.logger, func(post *interfaces.Post) {
		fmt.Fprintf(env.out, "saved %s\n", post.Slug)
	})
	if err := handler.Execute(env.ctx, msg); err != nil {
		return err
	}
	if c.DryRun {
		fmt.Fprintf(env.out, "valid %s\n", msg.Slug)
	}
	return nil
}

type deleteCmd struct {
	Slug string `arg:"" help:"Post slug."`
}

func (c *deleteCmd) Run(env *runEnv) error {
	if err := env.login(); err != nil {
		return err
	}
	handler := postscmd.NewDeletePostHandler(env.source, env.logger)
	if err := handler.Execute(env.ctx, postscmd.DeletePostCommand{Slug: c.Slug}); err != nil {
		return err
	}
	fmt.Fprintf(env.out, "deleted %s\n", c.Slug)
	return nil
}

type draftsCmd struct{}

func (draftsCmd) Run(env *runEnv) error {
	status, err := env.source.DraftStatus(env.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "upserts: %d\ndeleted: %d\n", status.UpsertCount, status.DeletedCount)
	return nil
}

type clearCmd struct{}

func (clearCmd) Run(env *runEnv) error {
	handler := postscmd.NewClearLocalEditsHandler(env.source, env.logger)
	if err := handler.Execute(env.ctx, postscmd.ClearLocalEditsCommand{}); err != nil {
		return err
	}
	fmt.Fprintln(env.out, "local edits cleared")
	return nil
}

type operationsCmd struct{}

func (operationsCmd) Run(env *runEnv) error {
	if err := env.login(); err != nil {
		return err
	}
	ops, err := env.source.Operations(env.ctx)
	if err != nil {
		return err
	}
	return writeJSON(env.out, ops)
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
