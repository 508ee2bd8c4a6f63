package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/nameless/internal/service/account"
)

func (h *Handler) Me(c *gin.Context) {
	u, err := h.accounts.Me(c.Request.Context(), identity(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, userView(u))
}

func (h *Handler) UpdateAboutMe(c *gin.Context) {
	var req account.AboutMeRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.accounts.UpdateAboutMe(c.Request.Context(), identity(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, userView(u))
}

func (h *Handler) ChangeUsername(c *gin.Context) {
	var req account.ChangeUsernameRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.accounts.ChangeUsername(c.Request.Context(), identity(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, userView(u))
}

//
// Initiate: authenticated, answer with a Mail cookie
//

func (h *Handler) DeleteAccount(c *gin.Context) {
	mailToken, err := h.accounts.InitiateDelete(c.Request.Context(), identity(c))
	h.staged(c, mailToken, err)
}

func (h *Handler) ChangeEmail(c *gin.Context) {
	var req account.ChangeEmailRequest
	if !bind(c, &req) {
		return
	}
	mailToken, err := h.accounts.InitiateEmailChange(c.Request.Context(), identity(c), req)
	h.staged(c, mailToken, err)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req account.ChangePasswordRequest
	if !bind(c, &req) {
		return
	}
	mailToken, err := h.accounts.InitiatePasswordChange(c.Request.Context(), identity(c), req)
	h.staged(c, mailToken, err)
}

//
// Resend: Mail cookie only
//

func (h *Handler) ResendDeleteAccount(c *gin.Context) {
	mailToken, err := h.accounts.ResendDelete(c.Request.Context(), h.cookies.MailToken(c))
	h.staged(c, mailToken, err)
}

func (h *Handler) ResendChangeEmail(c *gin.Context) {
	mailToken, err := h.accounts.ResendEmailChange(c.Request.Context(), h.cookies.MailToken(c))
	h.staged(c, mailToken, err)
}

func (h *Handler) ResendChangePassword(c *gin.Context) {
	mailToken, err := h.accounts.ResendPasswordChange(c.Request.Context(), h.cookies.MailToken(c))
	h.staged(c, mailToken, err)
}

func (h *Handler) staged(c *gin.Context, mailToken string, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.setMail(c, mailToken)
	detail(c, http.StatusOK, "Verification code has been sent to your email")
}

//
// Verify: Mail cookie + code
//

func (h *Handler) VerifyDeleteAccount(c *gin.Context) {
	h.verify(c, func(ctx context.Context, mailToken string, code int) (any, error) {
		if err := h.accounts.ConfirmDelete(ctx, mailToken, code); err != nil {
			return nil, err
		}
		h.cookies.ClearSession(c)
		return gin.H{"detail": "Account has been deleted"}, nil
	})
}

func (h *Handler) VerifyChangeEmail(c *gin.Context) {
	h.verify(c, func(ctx context.Context, mailToken string, code int) (any, error) {
		u, err := h.accounts.ConfirmEmailChange(ctx, mailToken, code)
		if err != nil {
			return nil, err
		}
		return userView(u), nil
	})
}

func (h *Handler) VerifyChangePassword(c *gin.Context) {
	h.verify(c, func(ctx context.Context, mailToken string, code int) (any, error) {
		if err := h.accounts.ConfirmPasswordChange(ctx, mailToken, code); err != nil {
			return nil, err
		}
		return gin.H{"detail": "Password has been changed"}, nil
	})
}

func (h *Handler) verify(c *gin.Context, confirm func(ctx context.Context, mailToken string, code int) (any, error)) {
	var req account.ConfirmRequest
	if !bind(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, h.log, err)
		return
	}

	body, err := confirm(c.Request.Context(), h.cookies.MailToken(c), req.Code)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.cookies.ClearMail(c)
	c.JSON(http.StatusOK, body)
}
