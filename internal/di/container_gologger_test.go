package di

import (
	"testing"

	"github.com/goliatone/go-notes/internal/logging/gologger"
	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/internal/runtimeconfig"
)

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Watch = false
	cfg.Admin.Enabled = false
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg, WithRepository(posts.NewMemoryRepository()))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	provider, ok := container.loggerProvider.(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.loggerProvider)
	}

	logger := provider.GetLogger("notes.test")
	if logger == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}

func TestConfigureLoggerProviderNoneLeavesProviderNil(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Watch = false
	cfg.Admin.Enabled = false
	cfg.Logging.Provider = "none"

	container, err := NewContainer(cfg, WithRepository(posts.NewMemoryRepository()))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if container.loggerProvider != nil {
		t.Fatalf("expected nil provider, got %T", container.loggerProvider)
	}
}
