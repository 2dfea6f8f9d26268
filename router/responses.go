package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-social-link/core"
)

type authURLResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

type callbackResponse struct {
	State      string `json:"state"`
	Detail     string `json:"detail"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// accountResponse is the outward shape of a linked account. Token material
// never leaves the service.
type accountResponse struct {
	ID          string    `json:"id"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newAccountListResponse(accounts []core.SocialAccount) []accountResponse {
	out := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, accountResponse{
			ID:          account.ID,
			Handle:      account.Handle,
			DisplayName: account.DisplayName,
			AvatarURL:   account.AvatarURL,
			Status:      string(account.Status),
			CreatedAt:   account.CreatedAt,
			UpdatedAt:   account.UpdatedAt,
		})
	}
	return out
}

func badRequestError(message string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, message).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ServiceErrorBadInput)
}

func (r *Router) respondError(c *gin.Context, err error) {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		status := rich.Code
		if status == 0 {
			status = http.StatusInternalServerError
		}
		r.logError(c, status, err)
		c.AbortWithStatusJSON(status, errorResponse{
			Error: rich.Message,
			Code:  rich.TextCode,
		})
		return
	}

	r.logError(c, http.StatusInternalServerError, err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
		Error: "An unexpected error occurred",
		Code:  core.ServiceErrorInternal,
	})
}

func (r *Router) logError(c *gin.Context, status int, err error) {
	if r == nil || r.logger == nil {
		return
	}
	r.logger.WithContext(c.Request.Context()).Error("request failed",
		"status", status,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"error", err,
	)
}
