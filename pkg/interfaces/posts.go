package interfaces

import "context"

// PostMeta is the listing view of a post as stored in posts.json.
type PostMeta struct {
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Tag         string  `json:"tag"`
	Date        string  `json:"date"`
	Excerpt     string  `json:"excerpt"`
	Description string  `json:"description"`
	ReadingTime float64 `json:"readingTime"`
}

// Post is a PostMeta with its Markdown body.
type Post struct {
	PostMeta
	Markdown string `json:"markdown"`
}

// Meta returns the listing view of the post.
func (p Post) Meta() PostMeta {
	return p.PostMeta
}

// AdjacentPosts holds the chronological neighbours of a post. Previous is the
// older post, Next the newer one.
type AdjacentPosts struct {
	Previous *PostMeta `json:"previous"`
	Next     *PostMeta `json:"next"`
}

// DraftStatus counts local edits that have not been published.
type DraftStatus struct {
	UpsertCount  int `json:"upsertCount"`
	DeletedCount int `json:"deletedCount"`
}

// PostSource is the uniform post-access contract implemented by the local
// (draft overlay) and API (HTTP client) adapters.
type PostSource interface {
	AllPosts(ctx context.Context) ([]PostMeta, error)
	// PostBySlug returns nil without error when the post does not exist.
	PostBySlug(ctx context.Context, slug string) (*Post, error)
	Tags(ctx context.Context) ([]string, error)
	RelatedPosts(ctx context.Context, slug, tag string, limit int) ([]PostMeta, error)
	AdjacentPosts(ctx context.Context, slug string) (AdjacentPosts, error)
	EditablePosts(ctx context.Context) ([]Post, error)
	UpsertPost(ctx context.Context, post Post) (*Post, error)
	DeletePost(ctx context.Context, slug string) error
	DraftStatus(ctx context.Context) (DraftStatus, error)
	ClearLocalEdits(ctx context.Context) error
}

// AdminSession describes the caller's admin login state.
type AdminSession struct {
	LoggedIn bool   `json:"loggedIn"`
	Username string `json:"username,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

// Operation is an entry of the admin audit log.
type Operation struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Slug     string `json:"slug"`
	Detail   string `json:"detail"`
	At       string `json:"at"`
	Username string `json:"username"`
}

// AdminSource is optionally implemented by sources that front an
// authenticated admin backend.
type AdminSource interface {
	AdminSession(ctx context.Context) (AdminSession, error)
	Login(ctx context.Context, username, password string) (AdminSession, error)
	Logout(ctx context.Context) (AdminSession, error)
	Operations(ctx context.Context) ([]Operation, error)
}
