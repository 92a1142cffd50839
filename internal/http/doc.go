// Package http exposes the notes JSON API on a net/http ServeMux.
//
// Routes mount under /api:
//   - Public: /health, /posts, /tags, /posts/{slug}, /posts/{slug}/related,
//     /posts/{slug}/adjacent, /posts/{slug}/render, POST /render
//   - Session: /admin/session, POST /admin/login, POST /admin/logout
//   - Admin (session cookie required): /admin/posts, /admin/posts/{slug},
//     /admin/operations
//
// GET /metrics is mounted at the root when a metrics handler is configured.
package http
