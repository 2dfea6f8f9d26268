package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrAuthInitiationFailed = errors.New("core: provider handshake could not be initiated")
	ErrAccountNotLinked     = errors.New("core: no linked account for handle")
	ErrTooManyAttachments   = errors.New("core: too many attachments")
	ErrAccountNotFound      = errors.New("core: account not found")
	ErrOwnerRequired        = errors.New("core: owner user id is required")
)

// MaxAttachments is the provider-imposed ceiling on media items per post.
const MaxAttachments = 4

// PendingPlaceholder fills the identity fields of an account whose handshake
// has not completed yet. The real values arrive with the verified profile.
const PendingPlaceholder = "pending"

type AccountStatus string

const (
	// AccountStatusPending marks a record created at handshake initiation.
	// Its AccessToken/AccessTokenSecret hold the provider's request token
	// pair, not an access token, and its identity fields are placeholders.
	AccountStatusPending AccountStatus = "pending"
	// AccountStatusLinked marks a fully verified, usable account.
	AccountStatusLinked AccountStatus = "linked"
)

// SocialAccount binds one external social-network identity to one host
// application user. Treated as an immutable value between handshake steps:
// each transition produces a new value, persistence is explicit.
type SocialAccount struct {
	ID                string
	OwnerUserID       string
	DisplayName       string
	Handle            string
	AvatarURL         string
	AccessToken       string
	AccessTokenSecret string
	Status            AccountStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewPendingAccount builds the placeholder record persisted when a handshake
// starts. The request token doubles as the lookup key for the callback leg,
// which cannot carry authentication of its own.
func NewPendingAccount(ownerUserID string, requestToken string, requestSecret string) (SocialAccount, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return SocialAccount{}, ErrOwnerRequired
	}
	requestToken = strings.TrimSpace(requestToken)
	if requestToken == "" {
		return SocialAccount{}, fmt.Errorf("core: request token is required")
	}

	return SocialAccount{
		OwnerUserID:       ownerUserID,
		DisplayName:       PendingPlaceholder,
		Handle:            PendingPlaceholder,
		AvatarURL:         PendingPlaceholder,
		AccessToken:       requestToken,
		AccessTokenSecret: requestSecret,
		Status:            AccountStatusPending,
	}, nil
}

// WithAccessCredentials returns a copy whose token pair has been replaced by
// the real access credentials obtained from the verifier exchange.
func (a SocialAccount) WithAccessCredentials(creds AccessCredentials) SocialAccount {
	a.AccessToken = creds.Token
	a.AccessTokenSecret = creds.Secret
	return a
}

// WithProfile returns a copy whose identity fields carry the verified profile.
func (a SocialAccount) WithProfile(profile Profile) SocialAccount {
	a.DisplayName = profile.DisplayName
	a.Handle = profile.Handle
	a.AvatarURL = profile.AvatarURL
	return a
}

// MergeVerified copies the refreshable fields of a verified record onto the
// receiver, keeping the receiver's identity (ID, owner, handle) stable across
// re-links of the same external identity.
func (a SocialAccount) MergeVerified(verified SocialAccount) SocialAccount {
	a.DisplayName = verified.DisplayName
	a.AvatarURL = verified.AvatarURL
	a.AccessToken = verified.AccessToken
	a.AccessTokenSecret = verified.AccessTokenSecret
	return a
}

func (a SocialAccount) IsPending() bool {
	return a.Status == AccountStatusPending
}

func (a SocialAccount) IsLinked() bool {
	return a.Status == AccountStatusLinked
}

// Profile is the verified identity returned by the provider after a
// successful handshake. AvatarURL is expected to be canonical (full
// resolution, no size-reduction marker).
type Profile struct {
	DisplayName string
	Handle      string
	AvatarURL   string
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Handle) == "" {
		return fmt.Errorf("core: profile handle is required")
	}
	return nil
}

// AccessCredentials is the provider-issued token pair for acting on the
// account owner's behalf.
type AccessCredentials struct {
	Token  string
	Secret string
}

// Media is one binary attachment for a status post.
type Media struct {
	FileName string
	Data     []byte
}

// TweetResult is the business outcome of a post submission. Provider-side
// failures are reported here, not raised as errors: a rejected tweet is a
// normal outcome for the caller to display.
type TweetResult struct {
	IsSuccess bool   `json:"is_success"`
	TweetURL  string `json:"tweet_url,omitempty"`
	Detail    string `json:"detail"`
}
