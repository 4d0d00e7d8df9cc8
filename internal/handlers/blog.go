package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/davidbraun/portfolio-api/internal/blog"
	pkghttp "github.com/davidbraun/portfolio-api/pkg/http"
	"github.com/go-chi/chi/v5"
)

// BlogStore is the content source consumed by the blog handler.
type BlogStore interface {
	List() []blog.PostMeta
	Get(slug string) (*blog.Post, error)
}

// BlogHandler serves the blog's read-only HTTP surface.
type BlogHandler struct {
	store BlogStore
}

// NewBlogHandler creates a BlogHandler.
func NewBlogHandler(store BlogStore) *BlogHandler {
	return &BlogHandler{store: store}
}

// ListPostsRequest holds the pagination query parameters for post listing.
type ListPostsRequest struct {
	Limit  int `validate:"omitempty,gte=1,lte=50"`
	Offset int `validate:"omitempty,gte=0"`
}

// ListPostsResponse is the paginated listing payload.
type ListPostsResponse struct {
	Posts []blog.PostMeta `json:"posts"`
	Total int             `json:"total"`
}

const defaultListLimit = 20

// ListPosts returns post metadata, newest first, paginated by limit/offset.
func (h *BlogHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	req := ListPostsRequest{Limit: defaultListLimit}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			pkghttp.WriteError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		req.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			pkghttp.WriteError(w, http.StatusBadRequest, "Invalid offset parameter")
			return
		}
		req.Offset = n
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts := h.store.List()
	total := len(posts)

	if req.Offset >= total {
		posts = nil
	} else {
		posts = posts[req.Offset:]
		if len(posts) > req.Limit {
			posts = posts[:req.Limit]
		}
	}
	if posts == nil {
		posts = []blog.PostMeta{}
	}

	pkghttp.WriteJSON(w, http.StatusOK, ListPostsResponse{Posts: posts, Total: total})
}

// GetPost returns a single post by slug. Invalid and unknown slugs are both 404.
func (h *BlogHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.store.Get(slug)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			pkghttp.WriteError(w, http.StatusNotFound, "Post not found")
			return
		}
		pkghttp.WriteError(w, http.StatusInternalServerError, "Failed to load post")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, post)
}
