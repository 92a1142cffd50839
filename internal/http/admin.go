package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-notes/internal/admin"
	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

type adminUserKey struct{}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminUser returns the username stored by the session middleware.
func AdminUser(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	username, _ := ctx.Value(adminUserKey{}).(string)
	return username
}

func (api *API) registerAdminRoutes(mux *http.ServeMux, base string) {
	if api.admin == nil {
		return
	}
	adminPath := joinPath(base, "admin")
	mux.HandleFunc("GET "+joinPath(adminPath, "session"), api.handleSession)
	mux.HandleFunc("POST "+joinPath(adminPath, "login"), api.handleLogin)
	mux.HandleFunc("POST "+joinPath(adminPath, "logout"), api.handleLogout)

	mux.Handle("GET "+joinPath(adminPath, "posts"), api.requireSession(http.HandlerFunc(api.handleAdminListPosts)))
	mux.Handle("GET "+joinPath(adminPath, "operations"), api.requireSession(http.HandlerFunc(api.handleOperations)))
	mux.Handle("PUT "+joinPath(adminPath, "posts/{slug}"), api.requireSession(http.HandlerFunc(api.handleSavePost)))
	mux.Handle("DELETE "+joinPath(adminPath, "posts/{slug}"), api.requireSession(http.HandlerFunc(api.handleDeletePost)))
}

// requireSession rejects requests without an active session and slides the
// expiry of the ones it accepts.
func (api *API) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := api.sessionToken(r)
		session, err := api.admin.Authorize(r.Context(), token)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		api.setSessionCookie(w, session.Token, api.admin.SessionTTL())
		ctx := context.WithValue(r.Context(), adminUserKey{}, session.Username)
		ctx = logging.ContextWithFields(ctx, map[string]any{"username": session.Username})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (api *API) handleSession(w http.ResponseWriter, r *http.Request) {
	session, ok := api.admin.Session(api.sessionToken(r))
	if !ok {
		writeJSON(w, http.StatusOK, interfaces.AdminSession{LoggedIn: false})
		return
	}
	writeJSON(w, http.StatusOK, interfaces.AdminSession{LoggedIn: true, Username: session.Username})
}

func (api *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		api.fail(w, r, err)
		return
	}
	session, err := api.admin.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	api.setSessionCookie(w, session.Token, api.admin.SessionTTL())
	writeJSON(w, http.StatusOK, interfaces.AdminSession{LoggedIn: true, Username: session.Username})
}

func (api *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, err := api.admin.Logout(r.Context(), api.sessionToken(r)); err != nil {
		api.fail(w, r, err)
		return
	}
	api.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, interfaces.AdminSession{LoggedIn: false})
}

func (api *API) handleAdminListPosts(w http.ResponseWriter, r *http.Request) {
	list, err := api.posts.ListFull(r.Context())
	if err != nil {
		api.fail(w, r, err)
		return
	}
	if list == nil {
		list = []interfaces.Post{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *API) handleOperations(w http.ResponseWriter, _ *http.Request) {
	ops := api.admin.Operations()
	if ops == nil {
		ops = []interfaces.Operation{}
	}
	writeJSON(w, http.StatusOK, ops)
}

func (api *API) handleSavePost(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		api.fail(w, r, err)
		return
	}
	post := posts.NormalizePost(body)
	pathSlug := strings.TrimSpace(r.PathValue("slug"))
	if post.Slug != pathSlug {
		api.fail(w, r, posts.SlugMismatchError(pathSlug, post.Slug))
		return
	}

	result, err := api.posts.Save(r.Context(), post)
	if err != nil {
		api.fail(w, r, err)
		return
	}

	detail := "updated"
	if result.Created {
		detail = "created"
	}
	username := AdminUser(r.Context())
	if _, err := api.admin.Record(r.Context(), admin.OperationSave, result.Post.Slug, detail, username); err != nil {
		api.fail(w, r, err)
		return
	}
	logging.WithPostContext(logging.FromContext(api.logger, r.Context()), result.Post.Slug, detail).Info("http.admin.post_saved")
	writeJSON(w, http.StatusOK, result.Post)
}

func (api *API) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if err := api.posts.Delete(r.Context(), slug); err != nil {
		api.fail(w, r, err)
		return
	}
	username := AdminUser(r.Context())
	if _, err := api.admin.Record(r.Context(), admin.OperationDelete, slug, "deleted", username); err != nil {
		api.fail(w, r, err)
		return
	}
	logging.WithPostContext(logging.FromContext(api.logger, r.Context()), slug, "deleted").Info("http.admin.post_deleted")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
