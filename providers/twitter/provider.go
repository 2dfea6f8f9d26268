package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/goliatone/go-social-link/core"
	"github.com/goliatone/go-social-link/identity"
)

const (
	ProviderID = "twitter"

	RequestTokenURL = "https://api.twitter.com/oauth/request_token"
	// AuthenticateURL uses oauth/authenticate: users who already granted
	// access skip the consent page. The force_login parameter appended by
	// the core re-enables the login form regardless.
	AuthenticateURL = "https://api.twitter.com/oauth/authenticate"
	AccessTokenURL  = "https://api.twitter.com/oauth/access_token"

	defaultAPIBaseURL    = "https://api.twitter.com/1.1"
	defaultUploadBaseURL = "https://upload.twitter.com/1.1"

	defaultRequestTimeout = 30 * time.Second
	maxResponseBytes      = 1 << 20 // 1 MiB
)

// AuthenticateEndpoint is the endpoint set for the standard linking flow.
var AuthenticateEndpoint = oauth1.Endpoint{
	RequestTokenURL: RequestTokenURL,
	AuthorizeURL:    AuthenticateURL,
	AccessTokenURL:  AccessTokenURL,
}

type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	// Endpoint overrides the OAuth endpoint set. Zero value selects
	// AuthenticateEndpoint.
	Endpoint oauth1.Endpoint
	// APIBaseURL and UploadBaseURL override the REST hosts, primarily for
	// tests pointed at local servers.
	APIBaseURL     string
	UploadBaseURL  string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// Provider implements core.Provider against the v1.1 REST API with OAuth1.0a
// request signing.
type Provider struct {
	consumerKey    string
	consumerSecret string
	endpoint       oauth1.Endpoint
	apiBaseURL     string
	uploadBaseURL  string
	httpClient     *http.Client
	requestTimeout time.Duration
}

func New(cfg Config) (*Provider, error) {
	consumerKey := strings.TrimSpace(cfg.ConsumerKey)
	if consumerKey == "" {
		return nil, fmt.Errorf("twitter: consumer key is required")
	}
	consumerSecret := strings.TrimSpace(cfg.ConsumerSecret)
	if consumerSecret == "" {
		return nil, fmt.Errorf("twitter: consumer secret is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == (oauth1.Endpoint{}) {
		endpoint = AuthenticateEndpoint
	}
	apiBaseURL := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	uploadBaseURL := strings.TrimRight(strings.TrimSpace(cfg.UploadBaseURL), "/")
	if uploadBaseURL == "" {
		uploadBaseURL = defaultUploadBaseURL
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	return &Provider{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		endpoint:       endpoint,
		apiBaseURL:     apiBaseURL,
		uploadBaseURL:  uploadBaseURL,
		httpClient:     cfg.HTTPClient,
		requestTimeout: requestTimeout,
	}, nil
}

func (p *Provider) ID() string { return ProviderID }

func (p *Provider) oauthConfig(callbackURL string) *oauth1.Config {
	return &oauth1.Config{
		ConsumerKey:    p.consumerKey,
		ConsumerSecret: p.consumerSecret,
		CallbackURL:    callbackURL,
		Endpoint:       p.endpoint,
	}
}

// InitiateHandshake requests a temporary request token registered against
// callbackURL and builds the authorization URL for it. The token dance under
// oauth1 does not thread a context; the surrounding timeout applies once the
// user returns through the callback.
func (p *Provider) InitiateHandshake(_ context.Context, callbackURL string) (core.HandshakeSession, error) {
	if p == nil {
		return core.HandshakeSession{}, fmt.Errorf("twitter: provider is not configured")
	}
	config := p.oauthConfig(callbackURL)
	requestToken, requestSecret, err := config.RequestToken()
	if err != nil {
		return core.HandshakeSession{}, fmt.Errorf("twitter: request token: %w", err)
	}
	authorizationURL, err := config.AuthorizationURL(requestToken)
	if err != nil {
		return core.HandshakeSession{}, fmt.Errorf("twitter: authorization url: %w", err)
	}
	return core.HandshakeSession{
		AuthorizationURL: authorizationURL.String(),
		RequestToken:     requestToken,
		RequestSecret:    requestSecret,
	}, nil
}

// ExchangeVerifier swaps the request token pair plus the user's verifier for
// permanent access credentials.
func (p *Provider) ExchangeVerifier(_ context.Context, requestToken string, requestSecret string, verifier string) (core.AccessCredentials, error) {
	if p == nil {
		return core.AccessCredentials{}, fmt.Errorf("twitter: provider is not configured")
	}
	config := p.oauthConfig("")
	accessToken, accessSecret, err := config.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return core.AccessCredentials{}, fmt.Errorf("twitter: access token: %w", err)
	}
	return core.AccessCredentials{Token: accessToken, Secret: accessSecret}, nil
}

func (p *Provider) FetchProfile(ctx context.Context, creds core.AccessCredentials) (core.Profile, error) {
	endpoint := p.apiBaseURL + "/account/verify_credentials.json"
	payload := map[string]any{}
	if err := p.doJSON(ctx, creds, http.MethodGet, endpoint, nil, "", &payload); err != nil {
		return core.Profile{}, err
	}
	normalized, err := identity.NormalizeProfile(payload)
	if err != nil {
		return core.Profile{}, fmt.Errorf("twitter: verify credentials: %w", err)
	}
	return core.Profile{
		DisplayName: normalized.DisplayName,
		Handle:      normalized.Handle,
		AvatarURL:   normalized.AvatarURL,
	}, nil
}

// UploadMedia pushes one attachment to the dedicated upload host and returns
// its media ID.
func (p *Provider) UploadMedia(ctx context.Context, creds core.AccessCredentials, media core.Media) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("media", media.FileName)
	if err != nil {
		return "", fmt.Errorf("twitter: build upload form: %w", err)
	}
	if _, err := part.Write(media.Data); err != nil {
		return "", fmt.Errorf("twitter: build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("twitter: build upload form: %w", err)
	}

	endpoint := p.uploadBaseURL + "/media/upload.json"
	payload := struct {
		MediaIDString string `json:"media_id_string"`
		MediaID       int64  `json:"media_id"`
	}{}
	if err := p.doJSON(ctx, creds, http.MethodPost, endpoint, &body, writer.FormDataContentType(), &payload); err != nil {
		return "", err
	}
	if payload.MediaIDString != "" {
		return payload.MediaIDString, nil
	}
	if payload.MediaID != 0 {
		return fmt.Sprintf("%d", payload.MediaID), nil
	}
	return "", fmt.Errorf("twitter: upload response carried no media id")
}

func (p *Provider) PostStatus(ctx context.Context, creds core.AccessCredentials, text string, mediaIDs []string) (core.PostResult, error) {
	form := url.Values{}
	form.Set("status", text)
	if len(mediaIDs) > 0 {
		form.Set("media_ids", strings.Join(mediaIDs, ","))
	}

	endpoint := p.apiBaseURL + "/statuses/update.json"
	payload := struct {
		IDString string `json:"id_str"`
		User     struct {
			ScreenName string `json:"screen_name"`
		} `json:"user"`
	}{}
	body := strings.NewReader(form.Encode())
	if err := p.doJSON(ctx, creds, http.MethodPost, endpoint, body, "application/x-www-form-urlencoded", &payload); err != nil {
		return core.PostResult{}, err
	}
	if payload.IDString == "" {
		return core.PostResult{}, fmt.Errorf("twitter: status response carried no id")
	}
	return core.PostResult{StatusID: payload.IDString, Handle: payload.User.ScreenName}, nil
}

func (p *Provider) signingClient(ctx context.Context, creds core.AccessCredentials) *http.Client {
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, p.httpClient)
	}
	config := p.oauthConfig("")
	return config.Client(ctx, oauth1.NewToken(creds.Token, creds.Secret))
}

func (p *Provider) doJSON(
	ctx context.Context,
	creds core.AccessCredentials,
	method string,
	endpoint string,
	body io.Reader,
	contentType string,
	out any,
) error {
	if p == nil {
		return fmt.Errorf("twitter: provider is not configured")
	}
	requestCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("twitter: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := p.signingClient(ctx, creds).Do(req)
	if err != nil {
		return fmt.Errorf("twitter: %s %s: %w", method, endpoint, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("twitter: read response: %w", err)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return decodeProviderError(res.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("twitter: decode response: %w", err)
	}
	return nil
}

// decodeProviderError maps a non-2xx response body to core.ProviderError,
// lifting the structured {"errors":[{"code","message"}]} payload when the
// API supplied one.
func decodeProviderError(statusCode int, raw []byte) error {
	providerErr := &core.ProviderError{
		HTTPStatus: statusCode,
		RawMessage: strings.TrimSpace(string(raw)),
	}

	var payload struct {
		Errors []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		for _, item := range payload.Errors {
			providerErr.Codes = append(providerErr.Codes, core.ProviderErrorCode{
				Code:    item.Code,
				Message: item.Message,
			})
		}
		if len(payload.Errors) == 0 && strings.TrimSpace(payload.Error) != "" {
			providerErr.RawMessage = strings.TrimSpace(payload.Error)
		}
	}
	return providerErr
}

var _ core.Provider = (*Provider)(nil)
