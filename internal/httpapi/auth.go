package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/nameless/internal/service/account"
	"github.com/oggyb/nameless/internal/token"
)

// Register stages a registration and sets the Mail cookie.
func (h *Handler) Register(c *gin.Context) {
	var req account.RegisterRequest
	if !bind(c, &req) {
		return
	}

	mailToken, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.setMail(c, mailToken)
	detail(c, http.StatusOK, "Verification code has been sent to your email")
}

// VerifyRegistration creates the account from the Mail cookie and the code.
func (h *Handler) VerifyRegistration(c *gin.Context) {
	var req account.ConfirmRequest
	if !bind(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, h.log, err)
		return
	}

	u, err := h.accounts.ConfirmRegistration(c.Request.Context(), h.cookies.MailToken(c), req.Code)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.cookies.ClearMail(c)
	c.JSON(http.StatusCreated, userView(u))
}

func (h *Handler) ResendRegistration(c *gin.Context) {
	mailToken, err := h.accounts.ResendRegistration(c.Request.Context(), h.cookies.MailToken(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.setMail(c, mailToken)
	detail(c, http.StatusOK, "A new verification code has been sent to your email")
}

// Login sets the Access and Refresh cookies.
func (h *Handler) Login(c *gin.Context) {
	var req account.LoginRequest
	if !bind(c, &req) {
		return
	}

	u, tokens, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.cookies.SetSession(c, tokens.Access, tokens.Refresh, h.app.Tokens.TTL(token.Access), h.app.Tokens.TTL(token.Refresh))
	c.JSON(http.StatusOK, userView(u))
}

// Logout drops the session cookies. Tokens are stateless, so nothing else
// needs revoking.
func (h *Handler) Logout(c *gin.Context) {
	h.cookies.ClearSession(c)
	detail(c, http.StatusOK, "Logged out")
}
