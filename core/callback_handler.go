package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-social-link/identity"
)

// CallbackState enumerates the terminal states of the callback state
// machine. Every inbound callback resolves to exactly one of these; none is
// retried automatically — the user restarts the flow by requesting a fresh
// authorization URL.
type CallbackState string

const (
	CallbackStateDenied              CallbackState = "denied"
	CallbackStateMissingParameters   CallbackState = "missing_parameters"
	CallbackStateUnknownRequestToken CallbackState = "unknown_request_token"
	CallbackStateExchangeFailed      CallbackState = "exchange_failed"
	CallbackStateProfileFetchFailed  CallbackState = "profile_fetch_failed"
	CallbackStateVerified            CallbackState = "verified"
)

// CallbackRequest is the provider's redirect, as received by the callback
// endpoint. Denied carries the original request-token value when the user
// refused authorization.
type CallbackRequest struct {
	ClientURL    string
	RequestToken string
	Verifier     string
	Denied       string
}

// CallbackOutcome is the terminal result of one callback. Account is
// populated only in the Verified state, holding the post-reconciliation
// linked record.
type CallbackOutcome struct {
	State      CallbackState
	StatusCode int
	Detail     string
	RedirectTo string
	Account    SocialAccount
}

// CallbackHandler drives the callback state machine: validate the redirect,
// exchange the verifier, fetch the verified profile, and hand off to the
// reconciler. Infrastructure failures (store errors) surface as errors;
// every handshake-level failure is a terminal CallbackOutcome.
type CallbackHandler struct {
	provider     Provider
	store        AccountStore
	reconciler   *AccountReconciler
	settingsPath string
}

func NewCallbackHandler(provider Provider, store AccountStore, reconciler *AccountReconciler, settingsPath string) (*CallbackHandler, error) {
	if provider == nil {
		return nil, fmt.Errorf("core: provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("core: account store is required")
	}
	if reconciler == nil {
		return nil, fmt.Errorf("core: account reconciler is required")
	}
	settingsPath = strings.TrimSpace(settingsPath)
	if settingsPath == "" {
		settingsPath = DefaultConfig().SettingsPath
	}
	return &CallbackHandler{
		provider:     provider,
		store:        store,
		reconciler:   reconciler,
		settingsPath: settingsPath,
	}, nil
}

func (h *CallbackHandler) Handle(ctx context.Context, req CallbackRequest) (CallbackOutcome, error) {
	if h == nil || h.provider == nil || h.store == nil || h.reconciler == nil {
		return CallbackOutcome{}, fmt.Errorf("core: callback handler is not configured")
	}

	redirectTo := h.redirectTarget(req.ClientURL)

	if strings.TrimSpace(req.Denied) != "" {
		// The denied value equals the request token issued at initiation,
		// so the placeholder record can be located and removed.
		pending, found, err := h.store.GetByRequestToken(ctx, strings.TrimSpace(req.Denied))
		if err != nil {
			return CallbackOutcome{}, err
		}
		if found {
			if err := h.store.Delete(ctx, pending.ID); err != nil {
				return CallbackOutcome{}, err
			}
		}
		return CallbackOutcome{
			State:      CallbackStateDenied,
			StatusCode: http.StatusUnauthorized,
			Detail:     "Authorization was denied by user",
			RedirectTo: redirectTo,
		}, nil
	}

	requestToken := strings.TrimSpace(req.RequestToken)
	verifier := strings.TrimSpace(req.Verifier)
	if requestToken == "" || verifier == "" {
		return CallbackOutcome{
			State:      CallbackStateMissingParameters,
			StatusCode: http.StatusUnprocessableEntity,
			Detail:     "oauth_token or oauth_verifier does not exist",
			RedirectTo: redirectTo,
		}, nil
	}

	pending, found, err := h.store.GetByRequestToken(ctx, requestToken)
	if err != nil {
		return CallbackOutcome{}, err
	}
	if !found {
		return CallbackOutcome{
			State:      CallbackStateUnknownRequestToken,
			StatusCode: http.StatusUnprocessableEntity,
			Detail:     "account associated with oauth_token does not exist",
			RedirectTo: redirectTo,
		}, nil
	}

	creds, err := h.provider.ExchangeVerifier(ctx, pending.AccessToken, pending.AccessTokenSecret, verifier)
	if err != nil {
		// The pending record is intentionally left in place here, unlike
		// the denied branch which deletes it. Known asymmetry, kept: the
		// record is still addressable if the provider hiccuped.
		return CallbackOutcome{
			State:      CallbackStateExchangeFailed,
			StatusCode: http.StatusUnprocessableEntity,
			Detail:     "failed to get access token",
			RedirectTo: redirectTo,
		}, nil
	}

	account := pending.WithAccessCredentials(creds)

	profile, err := h.provider.FetchProfile(ctx, creds)
	if err != nil {
		return CallbackOutcome{
			State:      CallbackStateProfileFetchFailed,
			StatusCode: http.StatusUnprocessableEntity,
			Detail:     "failed to get user information",
			RedirectTo: redirectTo,
		}, nil
	}
	profile.AvatarURL = identity.CanonicalAvatarURL(profile.AvatarURL)

	verified := account.WithProfile(profile)
	linked, err := h.reconciler.Reconcile(ctx, verified)
	if err != nil {
		return CallbackOutcome{}, err
	}

	return CallbackOutcome{
		State:      CallbackStateVerified,
		StatusCode: http.StatusOK,
		Detail:     "success",
		RedirectTo: redirectTo,
		Account:    linked,
	}, nil
}

func (h *CallbackHandler) redirectTarget(clientURL string) string {
	base := strings.TrimRight(strings.TrimSpace(clientURL), "/")
	return base + h.settingsPath
}
