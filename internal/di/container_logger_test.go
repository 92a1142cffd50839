package di_test

import (
	"context"
	"maps"
	"slices"
	"sync"
	"testing"

	"github.com/goliatone/go-notes/internal/di"
	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/internal/runtimeconfig"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

func TestContainerLogsGeneratedPasswordUnderAdminModule(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Watch = false
	cfg.Admin.DataRoot = t.TempDir()
	cfg.Admin.Password = ""

	rec := newRecordingProvider()

	container, err := di.NewContainer(cfg,
		di.WithLoggerProvider(rec),
		di.WithRepository(posts.NewMemoryRepository()),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	entry := rec.find("admin.password.generated")
	if entry == nil {
		t.Fatalf("expected admin.password.generated log entry, got %#v", rec.entries)
	}
	if entry.level != "WARN" {
		t.Fatalf("expected WARN level, got %s", entry.level)
	}
	if got := entry.fields["module"]; got != "notes.admin" {
		t.Fatalf("expected module field to be notes.admin, got %v", got)
	}
	if got, _ := entry.fields["password"].(string); got == "" {
		t.Fatalf("expected generated password to be logged, got %v", entry.fields)
	}
}

func TestContainerStartLogsAdminState(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Watch = false
	cfg.Admin.DataRoot = t.TempDir()
	cfg.Admin.Password = "Sturdy-Password-42"

	rec := newRecordingProvider()
	container, err := di.NewContainer(cfg,
		di.WithLoggerProvider(rec),
		di.WithRepository(posts.NewMemoryRepository()),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if err := container.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rec.find("admin.password.generated") != nil {
		t.Fatal("did not expect a generated password")
	}
	if rec.find("admin.state.loaded") == nil {
		t.Fatalf("expected admin.state.loaded entry, got %#v", rec.entries)
	}
	if rec.find("admin.sweeper.started") == nil {
		t.Fatalf("expected admin.sweeper.started entry, got %#v", rec.entries)
	}
}

// recordingProvider captures every entry written through its loggers.
type recordingProvider struct {
	mu      sync.Mutex
	entries []recordedEntry
}

type recordedEntry struct {
	level  string
	msg    string
	fields map[string]any
}

func newRecordingProvider() *recordingProvider { return &recordingProvider{} }

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	return recordingLogger{sink: p, fields: map[string]any{"logger": name}}
}

func (p *recordingProvider) find(msg string) *recordedEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := slices.IndexFunc(p.entries, func(e recordedEntry) bool { return e.msg == msg })
	if idx < 0 {
		return nil
	}
	found := p.entries[idx]
	return &found
}

type recordingLogger struct {
	sink   *recordingProvider
	fields map[string]any
}

var _ interfaces.Logger = recordingLogger{}

func (l recordingLogger) Trace(msg string, args ...any) { l.write("TRACE", msg, args) }
func (l recordingLogger) Debug(msg string, args ...any) { l.write("DEBUG", msg, args) }
func (l recordingLogger) Info(msg string, args ...any)  { l.write("INFO", msg, args) }
func (l recordingLogger) Warn(msg string, args ...any)  { l.write("WARN", msg, args) }
func (l recordingLogger) Error(msg string, args ...any) { l.write("ERROR", msg, args) }
func (l recordingLogger) Fatal(msg string, args ...any) { l.write("FATAL", msg, args) }

func (l recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := maps.Clone(l.fields)
	maps.Copy(merged, fields)
	return recordingLogger{sink: l.sink, fields: merged}
}

func (l recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l recordingLogger) write(level, msg string, args []any) {
	fields := maps.Clone(l.fields)
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok && key != "" {
			fields[key] = args[i+1]
		}
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = append(l.sink.entries, recordedEntry{level: level, msg: msg, fields: fields})
}
