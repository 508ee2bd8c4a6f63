// Package httpapi is the JSON-over-HTTP transport. Credentials travel in
// HTTP-only cookies: Mail for pending confirmations, Access and Refresh for
// the session.
package httpapi

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/nameless/internal/app"
	"github.com/oggyb/nameless/internal/service/account"
	"github.com/oggyb/nameless/internal/service/authors"
	"github.com/oggyb/nameless/internal/service/moderation"
	"github.com/oggyb/nameless/internal/service/posts"
	"github.com/oggyb/nameless/internal/token"
	"github.com/oggyb/nameless/internal/utils/pagination"
)

// Handler holds every HTTP endpoint.
type Handler struct {
	app     *app.AppContext
	log     *slog.Logger
	cookies *CookieHelper

	accounts   *account.Service
	posts      *posts.Service
	authors    *authors.Service
	moderation *moderation.Service
}

func NewHandler(appCtx *app.AppContext) *Handler {
	return &Handler{
		app:        appCtx,
		log:        appCtx.Logger,
		cookies:    NewCookieHelper(appCtx.Config.HTTP.SecureCookie),
		accounts:   account.NewService(appCtx),
		posts:      posts.NewService(appCtx),
		authors:    authors.NewService(appCtx),
		moderation: moderation.NewService(appCtx),
	}
}

// bind decodes the JSON body into v; a malformed body is answered with 400.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		badRequest(c, "body", "malformed JSON body")
		return false
	}
	return true
}

func page(c *gin.Context) pagination.Page {
	return pagination.Parse(c.Query("offset"), c.Query("limit"))
}

func postID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, name, "must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) setMail(c *gin.Context, mailToken string) {
	h.cookies.SetMail(c, mailToken, h.app.Tokens.TTL(token.Mail))
}
