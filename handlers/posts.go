package handlers

import (
	"errors"
	"net/http"

	"keijiban/auth"
	"keijiban/config"
	"keijiban/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler carries the wired services; routes.SetupRouter mounts its
// methods. Users is nil in key mode.
type Handler struct {
	Cfg   *config.Config
	Posts *services.PostService
	Users *services.UserService
	Authz auth.Authorizer
}

type createPostRequest struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type createCommentRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// ListPosts handles GET /posts. ?category= narrows the result to an
// exact, case-sensitive match.
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.Posts.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// CreatePost handles POST /posts. Empty fields are accepted as-is.
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, err := h.Posts.Create(c.Request.Context(), services.CreatePostInput{
		Title:    req.Title,
		Author:   req.Author,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateComment handles POST /posts/:postId/comments.
func (h *Handler) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, err := h.Posts.AddComment(c.Request.Context(), c.Param("postId"), req.Author, req.Content)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func serverError(c *gin.Context, err error) {
	logrus.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
