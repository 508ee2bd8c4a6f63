package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/oggyb/nameless/internal/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondError maps err to its status code. Internal errors are logged and
// their cause is never exposed.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	err = svcErr.Map(err)
	status := svcErr.HTTPStatus(err)

	body := ErrorResponse{Detail: "internal error"}
	var se *svcErr.Error
	if errors.As(err, &se) && se.Kind != svcErr.KindInternal {
		body.Detail = se.Msg
		body.Fields = se.Fields
	}

	if status >= http.StatusInternalServerError {
		log.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(status, body)
}

// badRequest reports an unreadable body or parameter.
func badRequest(c *gin.Context, field, reason string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Detail: "validation failed",
		Fields: map[string]string{field: reason},
	})
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}
