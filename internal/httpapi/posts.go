package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/nameless/internal/service/posts"
)

// ListPosts serves GET /posts?query=&offset=&limit=.
func (h *Handler) ListPosts(c *gin.Context) {
	list, err := h.posts.List(c.Request.Context(), c.Query("query"), page(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, postSummaries(list))
}

func (h *Handler) MyPosts(c *gin.Context) {
	list, err := h.posts.Mine(c.Request.Context(), identity(c), page(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, postSummaries(list))
}

func (h *Handler) GetPost(c *gin.Context) {
	id, ok := postID(c, "id")
	if !ok {
		return
	}
	p, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, postView(p))
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req posts.PostRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.posts.Create(c.Request.Context(), identity(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, postView(p))
}

func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := postID(c, "id")
	if !ok {
		return
	}
	var req posts.PostRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.posts.Update(c.Request.Context(), identity(c), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, postView(p))
}

func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := postID(c, "id")
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), identity(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	detail(c, http.StatusOK, "Post has been deleted")
}

// LikeResponse is the post after a like toggle.
type LikeResponse struct {
	PostView
	Liked bool `json:"liked"`
}

func (h *Handler) ToggleLike(c *gin.Context) {
	id, ok := postID(c, "id")
	if !ok {
		return
	}
	p, liked, err := h.posts.ToggleLike(c.Request.Context(), identity(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, LikeResponse{PostView: postView(p), Liked: liked})
}

//
// Authors
//

// ListAuthors serves GET /authors?query=&offset=&limit=.
func (h *Handler) ListAuthors(c *gin.Context) {
	users, err := h.authors.List(c.Request.Context(), c.Query("query"), page(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, authorViews(users))
}

func (h *Handler) AuthorProfile(c *gin.Context) {
	u, err := h.authors.Profile(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, userView(u))
}

func (h *Handler) AuthorPosts(c *gin.Context) {
	list, err := h.authors.Posts(c.Request.Context(), c.Param("username"), page(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, postSummaries(list))
}
