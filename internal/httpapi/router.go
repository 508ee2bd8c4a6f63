package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/nameless/internal/audit"
	"github.com/oggyb/nameless/internal/db"
)

// Prober reports whether the service's dependencies are reachable.
type Prober func(ctx context.Context) error

// NewRouter wires every route of the API.
func NewRouter(h *Handler, probe Prober) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(h.log))

	router.GET("/health", func(c *gin.Context) {
		if err := probe(c.Request.Context()); err != nil {
			h.log.Warn("health probe failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	session := h.RequireSession()
	moderator := h.RequireSession(h.app.Auth.AtLeast(db.RoleModerator))
	admin := h.RequireSession(h.app.Auth.AtLeast(db.RoleAdmin))

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/registration", h.Register)
		authGroup.POST("/verify-registration", h.VerifyRegistration)
		authGroup.POST("/resend-registration", h.ResendRegistration)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
	}

	accountGroup := router.Group("/account")
	{
		accountGroup.GET("/me", session, h.Me)
		accountGroup.POST("/update-about-me", session, h.UpdateAboutMe)
		accountGroup.PUT("/change-username", session, h.ChangeUsername)

		accountGroup.DELETE("/delete-account", session, h.DeleteAccount)
		accountGroup.POST("/verify-delete-account", h.VerifyDeleteAccount)
		accountGroup.POST("/resend-delete-account", h.ResendDeleteAccount)

		accountGroup.PUT("/change-email", session, h.ChangeEmail)
		accountGroup.POST("/verify-change-email", h.VerifyChangeEmail)
		accountGroup.POST("/resend-change-email", h.ResendChangeEmail)

		accountGroup.PUT("/change-password", session, h.ChangePassword)
		accountGroup.POST("/verify-change-password", h.VerifyChangePassword)
		accountGroup.POST("/resend-change-password", h.ResendChangePassword)
	}

	postsGroup := router.Group("/posts")
	{
		postsGroup.GET("", h.ListPosts)
		postsGroup.GET("/my-posts", session, h.MyPosts)
		postsGroup.GET("/:id", h.GetPost)
		postsGroup.POST("", session, h.CreatePost)
		postsGroup.PUT("/:id", session, h.UpdatePost)
		postsGroup.DELETE("/:id", session, h.DeletePost)
		postsGroup.PUT("/:id/like", session, h.ToggleLike)
	}

	authorsGroup := router.Group("/authors")
	{
		authorsGroup.GET("", h.ListAuthors)
		authorsGroup.GET("/:username", h.AuthorProfile)
		authorsGroup.GET("/:username/posts", h.AuthorPosts)
	}

	modGroup := router.Group("/moderator", moderator)
	{
		modGroup.PUT("/users/:user_id/rename", h.ModeratorRenameUser)
		modGroup.DELETE("/users/:user_id", h.ModeratorDeleteUser)
		modGroup.PUT("/posts/:post_id", h.ModeratorUpdatePost)
		modGroup.DELETE("/posts/:post_id", h.ModeratorDeletePost)
	}

	router.POST("/admin/indexes", h.CreateIndexes)
	adminGroup := router.Group("/admin", admin)
	{
		adminGroup.GET("/moderators", h.listStaff(db.RoleModerator))
		adminGroup.GET("/admins", h.listStaff(db.RoleAdmin))
		adminGroup.GET("/moderator-logs", h.auditLog(audit.Moderator))
		adminGroup.GET("/admin-logs", h.auditLog(audit.Admin))
		adminGroup.POST("/create-user", h.AdminCreateUser)
		adminGroup.PUT("/users/:user_id/role", h.AdminChangeRole)
		adminGroup.DELETE("/users/:user_id", h.AdminDeleteUser)
	}

	return router
}
