package http

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// DefaultRelatedLimit applies when the limit query parameter is missing.
const DefaultRelatedLimit = 3

func (api *API) registerPostRoutes(mux *http.ServeMux, base string) {
	postsPath := joinPath(base, "posts")
	mux.HandleFunc("GET "+postsPath, api.handleListPosts)
	mux.HandleFunc("GET "+joinPath(base, "tags"), api.handleListTags)
	mux.HandleFunc("GET "+joinPath(postsPath, "{slug}"), api.handleGetPost)
	mux.HandleFunc("GET "+joinPath(postsPath, "{slug}/related"), api.handleRelatedPosts)
	mux.HandleFunc("GET "+joinPath(postsPath, "{slug}/adjacent"), api.handleAdjacentPosts)
}

func (api *API) handleListPosts(w http.ResponseWriter, r *http.Request) {
	list, err := api.posts.List(r.Context())
	if err != nil {
		api.fail(w, r, err)
		return
	}
	if list == nil {
		list = []interfaces.PostMeta{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *API) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := api.posts.Tags(r.Context())
	if err != nil {
		api.fail(w, r, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, tags)
}

func (api *API) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := api.posts.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (api *API) handleRelatedPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := posts.ClampRelatedLimit(parseLimit(query.Get("limit"), DefaultRelatedLimit))
	related, err := api.posts.Related(r.Context(), r.PathValue("slug"), strings.TrimSpace(query.Get("tag")), limit)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	if related == nil {
		related = []interfaces.PostMeta{}
	}
	writeJSON(w, http.StatusOK, related)
}

func (api *API) handleAdjacentPosts(w http.ResponseWriter, r *http.Request) {
	adjacent, err := api.posts.Adjacent(r.Context(), r.PathValue("slug"))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adjacent)
}

// fail writes err and logs anything that maps to a server error.
func (api *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(api.logger, r.Context()).Error("http.request.failed", "error", err)
	}
	writeJSON(w, status, payload)
}
