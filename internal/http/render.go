package http

import (
	"net/http"
)

type renderRequest struct {
	Markdown string `json:"markdown"`
}

func (api *API) registerRenderRoutes(mux *http.ServeMux, base string) {
	if api.markdown == nil {
		return
	}
	mux.HandleFunc("GET "+joinPath(base, "posts/{slug}/render"), api.handleRenderPost)
	mux.HandleFunc("POST "+joinPath(base, "render"), api.handleRenderDraft)
}

func (api *API) handleRenderPost(w http.ResponseWriter, r *http.Request) {
	post, err := api.posts.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	api.render(w, r, post.Markdown)
}

func (api *API) handleRenderDraft(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(r, &req); err != nil {
		api.fail(w, r, err)
		return
	}
	api.render(w, r, req.Markdown)
}

func (api *API) render(w http.ResponseWriter, r *http.Request, markdown string) {
	doc, err := api.markdown.Render(r.Context(), markdown)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
