package http

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-notes/internal/posts"
)

type recordedRequest struct {
	route  string
	status int
}

type recordingRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recordingRecorder) ObserveRender(string, time.Duration) {}
func (r *recordingRecorder) ObserveLogin(string)                 {}
func (r *recordingRecorder) ObserveOperation(string)             {}

func (r *recordingRecorder) ObserveHTTPRequest(route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{route: route, status: status})
}

func TestWrapRecordsRoutePatterns(t *testing.T) {
	recorder := &recordingRecorder{}
	api := NewAPI(
		WithPostsService(posts.NewService(posts.NewMemoryRepository(seedPosts()...))),
		WithRecorder(recorder),
	)
	handler, err := api.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}

	for _, path := range []string{"/api/posts/first", "/api/posts/missing", "/nowhere"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	want := []recordedRequest{
		{route: "GET /api/posts/{slug}", status: http.StatusOK},
		{route: "GET /api/posts/{slug}", status: http.StatusNotFound},
		{route: "unmatched", status: http.StatusNotFound},
	}
	if len(recorder.requests) != len(want) {
		t.Fatalf("expected %d observations got %+v", len(want), recorder.requests)
	}
	for i := range want {
		if recorder.requests[i] != want[i] {
			t.Fatalf("observation %d: expected %+v got %+v", i, want[i], recorder.requests[i])
		}
	}
}

func TestMetricsRouteIsOptional(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("notes_up 1\n"))
	})
	api := NewAPI(
		WithPostsService(posts.NewService(posts.NewMemoryRepository())),
		WithMetricsHandler(metrics),
	)
	handler, err := api.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "notes_up 1\n" {
		t.Fatalf("unexpected metrics response %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/session", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected admin routes to be absent got %d", rec.Code)
	}
}
