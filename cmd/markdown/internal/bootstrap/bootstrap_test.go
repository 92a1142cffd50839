package bootstrap

import (
	"context"
	"errors"
	"testing"

	notes "github.com/goliatone/go-notes"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestLoadConfigAppliesOverridesAndDisablesServerFeatures(t *testing.T) {
	cfg, err := LoadConfig(Options{
		ContentRoot: "  docs/content ",
		Engine:      "goldmark",
		Lookup:      lookupFrom(map[string]string{"METRICS_ENABLED": "true"}),
	})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Content.Root != "docs/content" {
		t.Fatalf("expected content root override, got %q", cfg.Content.Root)
	}
	if cfg.Markdown.Engine != "goldmark" {
		t.Fatalf("expected engine override, got %q", cfg.Markdown.Engine)
	}
	if cfg.Admin.Enabled || cfg.Content.Watch || cfg.Metrics.Enabled {
		t.Fatalf("expected server features disabled for CLI runs, got %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalidOverrides(t *testing.T) {
	_, err := LoadConfig(Options{SourceMode: "api", Lookup: lookupFrom(nil)})
	if !errors.Is(err, notes.ErrSourceAPIBaseURLMissing) {
		t.Fatalf("expected ErrSourceAPIBaseURLMissing, got %v", err)
	}

	_, err = LoadConfig(Options{Engine: "pandoc", Lookup: lookupFrom(nil)})
	if !errors.Is(err, notes.ErrMarkdownEngineInvalid) {
		t.Fatalf("expected ErrMarkdownEngineInvalid, got %v", err)
	}
}

func TestBuildModuleExposesMarkdownAndSource(t *testing.T) {
	root := t.TempDir()
	module, err := BuildModule(Options{
		ContentRoot: root,
		Lookup: lookupFrom(map[string]string{
			"LOCAL_EDITS_PATH": root + "/edits.json",
			"LOG_LEVEL":        "error",
		}),
	})
	if err != nil {
		t.Fatalf("BuildModule: %v", err)
	}
	defer module.Close()

	if module.Markdown == nil || module.Source == nil || module.Logger == nil {
		t.Fatalf("expected markdown, source and logger, got %+v", module)
	}
	if module.Module.Admin() != nil {
		t.Fatal("expected admin to be disabled for CLI modules")
	}

	doc, err := module.Markdown.Render(context.Background(), "## Hello")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(doc.Headings) != 1 || doc.Headings[0].ID != "hello" {
		t.Fatalf("unexpected headings %+v", doc.Headings)
	}

	list, err := module.Source.AllPosts(context.Background())
	if err != nil {
		t.Fatalf("all posts: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty listing for a fresh root, got %d", len(list))
	}
}
