package handlers

import (
	"errors"
	"net/http"
	"strings"

	"keijiban/auth"
	"keijiban/services"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	AdminID  string `json:"adminId"`
}

type updateRoleRequest struct {
	UserID  string `json:"userId"`
	NewRole string `json:"newRole"`
}

// credential pulls whatever the caller presented: the userId/key query
// params the admin page sends, or a Bearer token from login.
func (h *Handler) credential(c *gin.Context) auth.Credential {
	cred := auth.Credential{
		UserID: c.Query("userId"),
		Key:    c.Query("key"),
	}
	header := c.GetHeader("Authorization")
	if cred.UserID == "" && strings.HasPrefix(header, "Bearer ") {
		if id, err := auth.ParseToken(h.Cfg.JWTSecret, strings.TrimPrefix(header, "Bearer ")); err == nil {
			cred.UserID = id
		}
	}
	return cred
}

// authorize writes the uniform 403 and reports whether the caller may
// proceed.
func (h *Handler) authorize(c *gin.Context, cred auth.Credential) bool {
	err := h.Authz.Authorize(c.Request.Context(), cred)
	if err == nil {
		return true
	}
	if errors.Is(err, services.ErrForbidden) {
		c.String(http.StatusForbidden, "access denied")
	} else {
		serverError(c, err)
	}
	return false
}

// Login handles POST /kanri/login (role mode only).
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.Users.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "login failed"})
		return
	}
	if err != nil {
		serverError(c, err)
		return
	}
	token, err := auth.IssueToken(h.Cfg.JWTSecret, user.ID)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "userId": user.ID, "token": token})
}

// CreateUser handles POST /kanri/create-user. The requesting admin id
// rides in the body, as the admin page sends it.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	requester := req.AdminID
	if requester == "" {
		requester = h.credential(c).UserID
	}
	user, err := h.Users.Create(c.Request.Context(), requester, req.Username, req.Password, req.Role)
	if errors.Is(err, services.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// ListUsers handles GET /kanri/users?userId=.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context(), h.credential(c).UserID)
	if errors.Is(err, services.ErrForbidden) {
		c.String(http.StatusForbidden, "access denied")
		return
	}
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// DeleteUser handles POST /kanri/delete-user/:targetId?userId=. Unknown
// targets still answer "ok".
func (h *Handler) DeleteUser(c *gin.Context) {
	err := h.Users.Delete(c.Request.Context(), h.credential(c).UserID, c.Param("targetId"))
	if errors.Is(err, services.ErrForbidden) {
		c.String(http.StatusForbidden, "access denied")
		return
	}
	if err != nil {
		serverError(c, err)
		return
	}
	c.String(http.StatusOK, "ok")
}

// UpdateRole handles POST /kanri/update-role/:targetId. The user field in
// the response is null when the target does not exist.
func (h *Handler) UpdateRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	requester := req.UserID
	if requester == "" {
		requester = h.credential(c).UserID
	}
	user, err := h.Users.UpdateRole(c.Request.Context(), requester, c.Param("targetId"), req.NewRole)
	if errors.Is(err, services.ErrForbidden) {
		c.String(http.StatusForbidden, "access denied")
		return
	}
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// AdminListPosts handles GET /kanri/data in both modes.
func (h *Handler) AdminListPosts(c *gin.Context) {
	if !h.authorize(c, h.credential(c)) {
		return
	}
	posts, err := h.Posts.List(c.Request.Context(), "")
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// AdminDeletePost handles POST /kanri/delete-post/:postId.
func (h *Handler) AdminDeletePost(c *gin.Context) {
	if !h.authorize(c, h.credential(c)) {
		return
	}
	if err := h.Posts.DeletePost(c.Request.Context(), c.Param("postId")); err != nil {
		serverError(c, err)
		return
	}
	c.String(http.StatusOK, "ok")
}

// AdminDeleteComment handles POST /kanri/delete-comment/:postId/:commentId.
func (h *Handler) AdminDeleteComment(c *gin.Context) {
	if !h.authorize(c, h.credential(c)) {
		return
	}
	if err := h.Posts.DeleteComment(c.Request.Context(), c.Param("postId"), c.Param("commentId")); err != nil {
		serverError(c, err)
		return
	}
	c.String(http.StatusOK, "ok")
}
