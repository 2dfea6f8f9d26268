package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// forceLoginParam is appended to every authorization URL so the provider
// shows its login form even when a session already exists. Without it a user
// signed into a different external account on the same device could never
// link a second identity.
const forceLoginParam = "force_login=true"

// AuthURLIssuer begins the three-legged handshake: it asks the provider for
// a request token, parks a pending placeholder record keyed by that token,
// and hands back the URL the user's browser must open.
type AuthURLIssuer struct {
	provider      Provider
	store         AccountStore
	hubURL        string
	serverBaseURL string
}

func NewAuthURLIssuer(provider Provider, store AccountStore, hubURL string, serverBaseURL string) (*AuthURLIssuer, error) {
	if provider == nil {
		return nil, fmt.Errorf("core: provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("core: account store is required")
	}
	hubURL = strings.TrimSpace(hubURL)
	if hubURL == "" {
		return nil, fmt.Errorf("core: redirect hub url is required")
	}
	serverBaseURL = strings.TrimSpace(serverBaseURL)
	if serverBaseURL == "" {
		return nil, fmt.Errorf("core: server base url is required")
	}
	return &AuthURLIssuer{
		provider:      provider,
		store:         store,
		hubURL:        hubURL,
		serverBaseURL: serverBaseURL,
	}, nil
}

// IssueAuthURL initiates a handshake for ownerUserID. originURL is the
// initiating client's base URL; the hub forwards it so the callback can
// redirect the browser back to where the flow started. When the handshake
// cannot be initiated nothing is persisted and ErrAuthInitiationFailed is
// returned.
func (i *AuthURLIssuer) IssueAuthURL(ctx context.Context, ownerUserID string, originURL string) (string, error) {
	if i == nil || i.provider == nil || i.store == nil {
		return "", fmt.Errorf("core: auth url issuer is not configured")
	}
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return "", ErrOwnerRequired
	}

	clientURL := normalizeClientURL(originURL)
	if clientURL == "" {
		clientURL = normalizeClientURL(i.serverBaseURL)
	}

	session, err := i.provider.InitiateHandshake(ctx, i.hubCallbackURL(clientURL))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthInitiationFailed, err)
	}

	pending, err := NewPendingAccount(ownerUserID, session.RequestToken, session.RequestSecret)
	if err != nil {
		return "", err
	}
	if _, err := i.store.Create(ctx, pending); err != nil {
		return "", err
	}

	return appendForceLogin(session.AuthorizationURL), nil
}

func (i *AuthURLIssuer) hubCallbackURL(clientURL string) string {
	values := url.Values{}
	values.Set("server", normalizeClientURL(i.serverBaseURL))
	values.Set("client", clientURL)
	separator := "?"
	if strings.Contains(i.hubURL, "?") {
		separator = "&"
	}
	return i.hubURL + separator + values.Encode()
}

func appendForceLogin(authURL string) string {
	if strings.Contains(authURL, "?") {
		return authURL + "&" + forceLoginParam
	}
	return authURL + "?" + forceLoginParam
}

// normalizeClientURL trims and ensures a single trailing slash so redirect
// targets concatenate predictably.
func normalizeClientURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strings.TrimRight(raw, "/") + "/"
}
