package command

import (
	"strings"

	"github.com/goliatone/go-social-link/core"
)

const (
	TypeIssueAuthURL     = "social.command.auth_url.issue"
	TypeCompleteCallback = "social.command.callback.complete"
	TypeUnlink           = "social.command.account.unlink"
	TypePostTweet        = "social.command.tweet.post"
	TypeRefreshProfiles  = "social.command.profiles.refresh"
)

type IssueAuthURLMessage struct {
	OwnerUserID string
	OriginURL   string
}

func (IssueAuthURLMessage) Type() string { return TypeIssueAuthURL }

func (m IssueAuthURLMessage) Validate() error {
	if strings.TrimSpace(m.OwnerUserID) == "" {
		return commandValidationError("owner_user_id", "owner user id is required")
	}
	return nil
}

type CompleteCallbackMessage struct {
	Request core.CallbackRequest
}

func (CompleteCallbackMessage) Type() string { return TypeCompleteCallback }

// Validate is intentionally permissive: the callback leg arrives
// unauthenticated from the provider, and an incomplete redirect must map to
// a terminal outcome rather than a request rejection.
func (m CompleteCallbackMessage) Validate() error {
	return nil
}

type UnlinkMessage struct {
	OwnerUserID string
	Handle      string
}

func (UnlinkMessage) Type() string { return TypeUnlink }

func (m UnlinkMessage) Validate() error {
	if strings.TrimSpace(m.OwnerUserID) == "" {
		return commandValidationError("owner_user_id", "owner user id is required")
	}
	if strings.TrimSpace(m.Handle) == "" {
		return commandValidationError("handle", "handle is required")
	}
	return nil
}

type PostTweetMessage struct {
	OwnerUserID string
	Handle      string
	Text        string
	Attachments []core.Media
}

func (PostTweetMessage) Type() string { return TypePostTweet }

func (m PostTweetMessage) Validate() error {
	if strings.TrimSpace(m.OwnerUserID) == "" {
		return commandValidationError("owner_user_id", "owner user id is required")
	}
	if strings.TrimSpace(m.Handle) == "" {
		return commandValidationError("handle", "handle is required")
	}
	if strings.TrimSpace(m.Text) == "" && len(m.Attachments) == 0 {
		return commandValidationError("tweet", "tweet text or attachments are required")
	}
	return nil
}

type RefreshProfilesMessage struct{}

func (RefreshProfilesMessage) Type() string { return TypeRefreshProfiles }

func (RefreshProfilesMessage) Validate() error { return nil }
