package core

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// MetricsRecorder receives operation counters and latency histograms.
type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// HandshakeSession is the provider's answer to a handshake initiation: the
// URL the user's browser must open plus the request-token pair the callback
// leg will exchange.
type HandshakeSession struct {
	AuthorizationURL string
	RequestToken     string
	RequestSecret    string
}

// PostResult identifies a successfully created status.
type PostResult struct {
	StatusID string
	Handle   string
}

// Provider is the capability boundary to the external social network. The
// wire client behind it owns transport, signing and timeouts; this core only
// sees results and ProviderError values.
type Provider interface {
	InitiateHandshake(ctx context.Context, callbackURL string) (HandshakeSession, error)
	ExchangeVerifier(ctx context.Context, requestToken string, requestSecret string, verifier string) (AccessCredentials, error)
	FetchProfile(ctx context.Context, creds AccessCredentials) (Profile, error)
	UploadMedia(ctx context.Context, creds AccessCredentials, media Media) (string, error)
	PostStatus(ctx context.Context, creds AccessCredentials, text string, mediaIDs []string) (PostResult, error)
}

// AccountStore is the repository for SocialAccount records. Find methods
// return (zero, false, nil) when no record matches.
type AccountStore interface {
	Create(ctx context.Context, account SocialAccount) (SocialAccount, error)
	GetByRequestToken(ctx context.Context, requestToken string) (SocialAccount, bool, error)
	FindLinked(ctx context.Context, ownerUserID string, handle string) (SocialAccount, bool, error)
	ListLinkedByOwner(ctx context.Context, ownerUserID string) ([]SocialAccount, error)
	ListLinked(ctx context.Context) ([]SocialAccount, error)
	Save(ctx context.Context, account SocialAccount) (SocialAccount, error)
	Delete(ctx context.Context, id string) error
}

// StoreProvider hands out the stores a fully wired persistence layer
// exposes.
type StoreProvider interface {
	AccountStore() AccountStore
}

// LinkingService is the operation surface of the account-linking core.
// Commands and queries depend on this interface rather than the concrete
// Service so tests can substitute fakes.
type LinkingService interface {
	IssueAuthURL(ctx context.Context, ownerUserID string, originURL string) (string, error)
	HandleCallback(ctx context.Context, req CallbackRequest) (CallbackOutcome, error)
	Unlink(ctx context.Context, ownerUserID string, handle string) error
	PostTweet(ctx context.Context, ownerUserID string, handle string, text string, attachments []Media) (TweetResult, error)
	ListAccounts(ctx context.Context, ownerUserID string) ([]SocialAccount, error)
	RefreshProfiles(ctx context.Context) (ProfileRefreshReport, error)
}

// ProviderErrorCode is one structured (code, message) pair from the
// provider's error payload.
type ProviderErrorCode struct {
	Code    int
	Message string
}

// ProviderError is the single error contract at the Provider boundary. It
// decouples the core from any specific wire client: structured API codes
// when the provider supplied them, the raw message and transport status
// otherwise.
type ProviderError struct {
	HTTPStatus int
	Codes      []ProviderErrorCode
	RawMessage string
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if len(e.Codes) > 0 {
		parts := make([]string, 0, len(e.Codes))
		for _, code := range e.Codes {
			parts = append(parts, fmt.Sprintf("%d: %s", code.Code, code.Message))
		}
		return fmt.Sprintf("provider error (http %d): %s", e.HTTPStatus, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("provider error (http %d): %s", e.HTTPStatus, e.RawMessage)
}
