package router

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-social-link/core"
)

// Authenticator resolves the host-application user behind a request. The
// callback route is the only one that skips it: the provider's redirect
// cannot carry host credentials.
type Authenticator interface {
	Authenticate(c *gin.Context) (string, error)
}

type Router struct {
	service core.LinkingService
	auth    Authenticator
	logger  core.Logger
}

type Option func(*Router)

func WithLogger(logger core.Logger) Option {
	return func(r *Router) {
		if r == nil || logger == nil {
			return
		}
		r.logger = logger
	}
}

func New(service core.LinkingService, auth Authenticator, opts ...Option) (*Router, error) {
	if service == nil {
		return nil, fmt.Errorf("router: linking service is required")
	}
	if auth == nil {
		return nil, fmt.Errorf("router: authenticator is required")
	}
	r := &Router{
		service: service,
		auth:    auth,
		logger:  glog.Nop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r, nil
}

// Mount registers the account-linking routes on the group. The callback
// route is deliberately unauthenticated.
func (r *Router) Mount(group *gin.RouterGroup) error {
	if r == nil || r.service == nil {
		return fmt.Errorf("router: router is not configured")
	}
	if group == nil {
		return fmt.Errorf("router: route group is required")
	}

	group.GET("/auth", r.handleAuthURL)
	group.GET("/callback", r.handleCallback)
	group.GET("/accounts", r.handleListAccounts)
	group.DELETE("/accounts/:handle", r.handleUnlink)
	group.POST("/accounts/:handle/tweets", r.handlePostTweet)
	return nil
}

func (r *Router) handleAuthURL(c *gin.Context) {
	ownerUserID, ok := r.authenticate(c)
	if !ok {
		return
	}

	authURL, err := r.service.IssueAuthURL(c.Request.Context(), ownerUserID, c.Query("client"))
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authURLResponse{AuthorizationURL: authURL})
}

func (r *Router) handleCallback(c *gin.Context) {
	req := core.CallbackRequest{
		ClientURL:    c.Query("client"),
		RequestToken: c.Query("oauth_token"),
		Verifier:     c.Query("oauth_verifier"),
		Denied:       c.Query("denied"),
	}

	outcome, err := r.service.HandleCallback(c.Request.Context(), req)
	if err != nil {
		r.respondError(c, err)
		return
	}

	c.JSON(outcome.StatusCode, callbackResponse{
		State:      string(outcome.State),
		Detail:     outcome.Detail,
		RedirectTo: outcome.RedirectTo,
	})
}

func (r *Router) handleListAccounts(c *gin.Context) {
	ownerUserID, ok := r.authenticate(c)
	if !ok {
		return
	}

	accounts, err := r.service.ListAccounts(c.Request.Context(), ownerUserID)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAccountListResponse(accounts))
}

func (r *Router) handleUnlink(c *gin.Context) {
	ownerUserID, ok := r.authenticate(c)
	if !ok {
		return
	}

	if err := r.service.Unlink(c.Request.Context(), ownerUserID, c.Param("handle")); err != nil {
		r.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) handlePostTweet(c *gin.Context) {
	ownerUserID, ok := r.authenticate(c)
	if !ok {
		return
	}

	text := c.PostForm("tweet")
	attachments, err := readAttachments(c)
	if err != nil {
		r.respondError(c, err)
		return
	}

	result, err := r.service.PostTweet(c.Request.Context(), ownerUserID, c.Param("handle"), text, attachments)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (r *Router) authenticate(c *gin.Context) (string, bool) {
	if r.auth == nil {
		r.respondError(c, fmt.Errorf("router: authenticator is required"))
		return "", false
	}
	ownerUserID, err := r.auth.Authenticate(c)
	if err != nil || ownerUserID == "" {
		r.logger.WithContext(c.Request.Context()).Info("request rejected: unauthenticated",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
			Error: "authentication required",
			Code:  "SOCIAL_UNAUTHENTICATED",
		})
		return "", false
	}
	return ownerUserID, true
}

func readAttachments(c *gin.Context) ([]core.Media, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, badRequestError("router: parse multipart form failed", err)
	}

	files := form.File["images"]
	attachments := make([]core.Media, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, badRequestError("router: open attachment failed", err)
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return nil, badRequestError("router: read attachment failed", err)
		}
		attachments = append(attachments, core.Media{
			FileName: header.Filename,
			Data:     data,
		})
	}
	if len(attachments) == 0 {
		return nil, nil
	}
	return attachments, nil
}
