package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorderGathers(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveRender("builtin", 2*time.Millisecond)
	pr.ObserveHTTPRequest("GET /api/posts", 200, 5*time.Millisecond)
	pr.ObserveLogin("failure")
	pr.ObserveOperation("save")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}
	for _, want := range []string{
		"notes_markdown_render_duration_seconds",
		"notes_http_requests_total",
		"notes_http_request_duration_seconds",
		"notes_admin_login_attempts_total",
		"notes_admin_operations_total",
	} {
		if !names[want] {
			t.Fatalf("expected metric family %s, got %v", want, names)
		}
	}
}

func TestPrometheusRecorderHandler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.ObserveLogin("success")

	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `notes_admin_login_attempts_total{result="success"} 1`) {
		t.Fatalf("expected login counter in exposition, got:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Fatal("expected runtime collectors on the default registry")
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveRender("builtin", time.Millisecond)
	pr.ObserveLogin("success")
	var _ Recorder = NoopRecorder{}
}
