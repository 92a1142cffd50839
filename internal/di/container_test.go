package di_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-notes/internal/di"
	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/internal/runtimeconfig"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

const testPassword = "Sturdy-Password-42"

func testConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Root = t.TempDir()
	cfg.Content.Watch = false
	cfg.Admin.DataRoot = t.TempDir()
	cfg.Admin.Password = testPassword
	cfg.Logging.Provider = "none"
	cfg.Source.EditsPath = filepath.Join(t.TempDir(), "edits.json")
	return cfg
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestNewContainerValidatesConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Source.Mode = "ftp"

	_, err := di.NewContainer(cfg)
	if !errors.Is(err, runtimeconfig.ErrSourceModeInvalid) {
		t.Fatalf("expected ErrSourceModeInvalid, got %v", err)
	}
}

func TestContainerServesAPIAndMetrics(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = true

	repo := posts.NewMemoryRepository(interfaces.Post{
		PostMeta: interfaces.PostMeta{Slug: "hello", Title: "Hello", Tag: "go", Date: "2024-01-01", Excerpt: "hi"},
		Markdown: "## Hi",
	})
	container, err := di.NewContainer(cfg, di.WithRepository(repo))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	if err := container.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	handler, err := container.API().Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts/hello", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "notes_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}

func TestContainerUsesSQLiteOperationsStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Admin.OperationsStore = "sqlite"
	cfg.Admin.OperationsDSN = "file:" + filepath.Join(t.TempDir(), "ops.db") + "?_fk=1"

	container, err := di.NewContainer(cfg, di.WithRepository(posts.NewMemoryRepository()))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	if err := container.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	adminSvc := container.AdminService()
	if _, err := adminSvc.Login(context.Background(), "admin", testPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}
	ops := adminSvc.Operations()
	if len(ops) != 1 || ops[0].Type != "login" {
		t.Fatalf("expected login operation, got %+v", ops)
	}
	if _, err := os.Stat(filepath.Join(cfg.Admin.DataRoot, "operations.json")); !os.IsNotExist(err) {
		t.Fatalf("expected no operations.json with sqlite store, got %v", err)
	}
}

func TestContainerWatcherRefreshesLocalSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Content.Watch = true
	cfg.Content.WatchDebounce = 20 * time.Millisecond
	cfg.Admin.Enabled = false

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	if err := container.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ctx := context.Background()
	src := container.SourceService()
	initial, err := src.AllPosts(ctx)
	if err != nil {
		t.Fatalf("AllPosts: %v", err)
	}
	if len(initial) != 0 {
		t.Fatalf("expected empty content root, got %+v", initial)
	}

	doc := `[{"slug":"fresh","title":"Fresh","tag":"go","date":"2024-06-01","excerpt":"new","readingTime":3}]`
	if err := os.WriteFile(filepath.Join(cfg.Content.Root, "posts.json"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write posts.json: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		list, err := src.AllPosts(ctx)
		return err == nil && len(list) == 1 && list[0].Slug == "fresh"
	})
}
