package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// DefaultAPITimeout bounds a single API round trip.
const DefaultAPITimeout = 15 * time.Second

// APISource reads and writes posts through a running notes API. The cookie
// jar carries the admin session between calls.
type APISource struct {
	baseURL *url.URL
	client  *http.Client
	logger  interfaces.Logger
}

var (
	_ interfaces.PostSource  = (*APISource)(nil)
	_ interfaces.AdminSource = (*APISource)(nil)
)

// APIOption configures an APISource.
type APIOption func(*APISource)

// WithHTTPClient replaces the default client. A client without a jar gets one.
func WithHTTPClient(client *http.Client) APIOption {
	return func(s *APISource) {
		if client != nil {
			s.client = client
		}
	}
}

// WithAPILogger sets the module logger.
func WithAPILogger(logger interfaces.Logger) APIOption {
	return func(s *APISource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewAPISource targets the API served at baseURL (for example
// "http://localhost:8787"). An empty baseURL is rejected.
func NewAPISource(baseURL string, opts ...APIOption) (*APISource, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, goerrors.New("api source requires a base URL", goerrors.CategoryBadInput).
			WithTextCode(TextCodeBaseURLRequired)
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "parse api base URL")
	}

	s := &APISource{
		baseURL: parsed,
		client:  &http.Client{Timeout: DefaultAPITimeout},
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("api source: cookie jar: %w", err)
		}
		s.client.Jar = jar
	}
	return s, nil
}

func (s *APISource) endpoint(path string) string {
	return s.baseURL.String() + path
}

// do sends body as JSON when non-nil and decodes the reply into out when
// non-nil. Non-2xx replies become errors carrying the payload message.
func (s *APISource) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryBadInput, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint(path), reader)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "build api request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "api request failed: "+path).
			WithTextCode(TextCodeRequestFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "read api response").
			WithTextCode(TextCodeRequestFailed)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := "API request failed: " + path
		var payload struct {
			Message string `json:"message"`
		}
		if len(raw) > 0 && json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
			message = payload.Message
		}
		s.logger.Debug("source.api.request_failed", "method", method, "path", path, "status", resp.StatusCode)
		return requestError(resp.StatusCode, message)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "decode api response: "+path).
			WithTextCode(TextCodeRequestFailed)
	}
	return nil
}

func postPath(slug string) string {
	return "/api/posts/" + url.PathEscape(slug)
}

func adminPostPath(slug string) string {
	return "/api/admin/posts/" + url.PathEscape(slug)
}

// AllPosts calls GET /api/posts.
func (s *APISource) AllPosts(ctx context.Context) ([]interfaces.PostMeta, error) {
	out := []interfaces.PostMeta{}
	if err := s.do(ctx, http.MethodGet, "/api/posts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PostBySlug maps a 404 reply to nil.
func (s *APISource) PostBySlug(ctx context.Context, slug string) (*interfaces.Post, error) {
	var post interfaces.Post
	if err := s.do(ctx, http.MethodGet, postPath(slug), nil, &post); err != nil {
		if goerrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Tags calls GET /api/tags.
func (s *APISource) Tags(ctx context.Context) ([]string, error) {
	out := []string{}
	if err := s.do(ctx, http.MethodGet, "/api/tags", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RelatedPosts calls GET /api/posts/{slug}/related.
func (s *APISource) RelatedPosts(ctx context.Context, slug, tag string, limit int) ([]interfaces.PostMeta, error) {
	query := url.Values{}
	query.Set("tag", tag)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	out := []interfaces.PostMeta{}
	if err := s.do(ctx, http.MethodGet, postPath(slug)+"/related?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdjacentPosts calls GET /api/posts/{slug}/adjacent.
func (s *APISource) AdjacentPosts(ctx context.Context, slug string) (interfaces.AdjacentPosts, error) {
	var out interfaces.AdjacentPosts
	err := s.do(ctx, http.MethodGet, postPath(slug)+"/adjacent", nil, &out)
	return out, err
}

// EditablePosts calls GET /api/admin/posts and needs a session.
func (s *APISource) EditablePosts(ctx context.Context) ([]interfaces.Post, error) {
	out := []interfaces.Post{}
	if err := s.do(ctx, http.MethodGet, "/api/admin/posts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertPost calls PUT /api/admin/posts/{slug}.
func (s *APISource) UpsertPost(ctx context.Context, post interfaces.Post) (*interfaces.Post, error) {
	var saved interfaces.Post
	if err := s.do(ctx, http.MethodPut, adminPostPath(post.Slug), post, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeletePost calls DELETE /api/admin/posts/{slug}.
func (s *APISource) DeletePost(ctx context.Context, slug string) error {
	return s.do(ctx, http.MethodDelete, adminPostPath(slug), nil, nil)
}

// DraftStatus is always zero; the API publishes directly.
func (s *APISource) DraftStatus(context.Context) (interfaces.DraftStatus, error) {
	return interfaces.DraftStatus{}, nil
}

// ClearLocalEdits is not supported in API mode.
func (s *APISource) ClearLocalEdits(context.Context) error {
	return ErrClearUnsupported
}

// AdminSession calls GET /api/admin/session.
func (s *APISource) AdminSession(ctx context.Context) (interfaces.AdminSession, error) {
	var out interfaces.AdminSession
	err := s.do(ctx, http.MethodGet, "/api/admin/session", nil, &out)
	return out, err
}

// Login calls POST /api/admin/login; the session cookie lands in the jar.
func (s *APISource) Login(ctx context.Context, username, password string) (interfaces.AdminSession, error) {
	var out interfaces.AdminSession
	body := map[string]string{"username": username, "password": password}
	if err := s.do(ctx, http.MethodPost, "/api/admin/login", body, &out); err != nil {
		return interfaces.AdminSession{}, err
	}
	logging.WithAdminUser(s.logger, out.Username).Info("source.api.login")
	return out, nil
}

// Logout calls POST /api/admin/logout.
func (s *APISource) Logout(ctx context.Context) (interfaces.AdminSession, error) {
	var out interfaces.AdminSession
	err := s.do(ctx, http.MethodPost, "/api/admin/logout", nil, &out)
	return out, err
}

// Operations calls GET /api/admin/operations.
func (s *APISource) Operations(ctx context.Context) ([]interfaces.Operation, error) {
	out := []interfaces.Operation{}
	if err := s.do(ctx, http.MethodGet, "/api/admin/operations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
