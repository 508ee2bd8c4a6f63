package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/nameless/internal/audit"
	"github.com/oggyb/nameless/internal/db"
	"github.com/oggyb/nameless/internal/service/moderation"
	"github.com/oggyb/nameless/internal/service/posts"
)

//
// Moderator
//

type renameRequest struct {
	NewUsername string `json:"new_username"`
}

func (h *Handler) ModeratorRenameUser(c *gin.Context) {
	var req renameRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.moderation.RenameUser(c.Request.Context(), identity(c), c.Param("user_id"), req.NewUsername)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, userView(u))
}

func (h *Handler) ModeratorDeleteUser(c *gin.Context) {
	if err := h.moderation.DeleteUser(c.Request.Context(), identity(c), c.Param("user_id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	detail(c, http.StatusOK, "User has been deleted")
}

func (h *Handler) ModeratorUpdatePost(c *gin.Context) {
	id, ok := postID(c, "post_id")
	if !ok {
		return
	}
	var req posts.PostRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.moderation.UpdatePost(c.Request.Context(), identity(c), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, postView(p))
}

func (h *Handler) ModeratorDeletePost(c *gin.Context) {
	id, ok := postID(c, "post_id")
	if !ok {
		return
	}
	if err := h.moderation.DeletePost(c.Request.Context(), identity(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	detail(c, http.StatusOK, "Post has been deleted")
}

//
// Admin
//

func (h *Handler) listStaff(role db.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := h.moderation.ListStaff(c.Request.Context(), role, page(c))
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, staffViews(users))
	}
}

// auditLog serves ?limit= newest entries of ch (everything when absent).
func (h *Handler) auditLog(ch audit.Channel) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		lines, err := h.moderation.ReadAudit(ch, limit)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}

func (h *Handler) AdminCreateUser(c *gin.Context) {
	var req moderation.CreateUserRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.moderation.CreateUser(c.Request.Context(), identity(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, StaffUserView{UserView: userView(u), Email: u.Email})
}

type roleRequest struct {
	Role db.Role `json:"role"`
}

func (h *Handler) AdminChangeRole(c *gin.Context) {
	var req roleRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.moderation.ChangeRole(c.Request.Context(), identity(c), c.Param("user_id"), req.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, userView(u))
}

func (h *Handler) AdminDeleteUser(c *gin.Context) {
	if err := h.moderation.DeleteAnyUser(c.Request.Context(), identity(c), c.Param("user_id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	detail(c, http.StatusOK, "User has been deleted")
}

// CreateIndexes serves POST /admin/indexes?master_key=.
func (h *Handler) CreateIndexes(c *gin.Context) {
	if err := h.moderation.CreateIndexes(c.Request.Context(), c.Query("master_key")); err != nil {
		respondError(c, h.log, err)
		return
	}
	detail(c, http.StatusOK, "Indexes have been created")
}
