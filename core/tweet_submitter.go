package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// providerErrorMessages maps the provider's structured error codes to the
// stable, user-facing messages shown when a post is rejected. Only codes
// that can actually come back from the posting surface are listed.
var providerErrorMessages = map[int]string{
	32:  "Account authentication failed.",
	63:  "The account is suspended or locked.",
	64:  "The account is suspended or locked.",
	88:  "Rate limit exceeded for the API endpoint.",
	89:  "The access token has expired.",
	99:  "OAuth credential authentication failed.",
	131: "The provider is experiencing an internal server error.",
	135: "Account authentication failed.",
	139: "This post has already been liked.",
	144: "The post has been deleted.",
	179: "Posts from a protected account you do not follow cannot be shown.",
	185: "The posting limit has been reached.",
	186: "The post text is too long.",
	187: "Duplicate post.",
	226: "The post was flagged as automated spam.",
	261: "The API application has been suspended.",
	326: "The account is temporarily locked.",
	327: "This post has already been reposted.",
	416: "The API application has been disabled.",
}

// TweetSubmitter uploads attachments concurrently and posts a status on a
// linked account's behalf. Provider rejections come back as a failed
// TweetResult, not an error: a rejected tweet is a business outcome.
type TweetSubmitter struct {
	provider Provider
	store    AccountStore
	postURL  func(result PostResult) string
}

func NewTweetSubmitter(provider Provider, store AccountStore) (*TweetSubmitter, error) {
	if provider == nil {
		return nil, fmt.Errorf("core: provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("core: account store is required")
	}
	return &TweetSubmitter{
		provider: provider,
		store:    store,
		postURL:  defaultPostURL,
	}, nil
}

// PostTweet validates the attachment count, resolves the caller's linked
// account, fans the uploads out concurrently (order of the resulting media
// IDs follows attachment order, not completion order), then posts. Any
// upload failure aborts the whole submission; partial uploads are not rolled
// back — orphaned media is the provider's to reap.
func (s *TweetSubmitter) PostTweet(
	ctx context.Context,
	ownerUserID string,
	handle string,
	text string,
	attachments []Media,
) (TweetResult, error) {
	if s == nil || s.provider == nil || s.store == nil {
		return TweetResult{}, fmt.Errorf("core: tweet submitter is not configured")
	}
	if len(attachments) > MaxAttachments {
		return TweetResult{}, fmt.Errorf("%w: got %d, max %d", ErrTooManyAttachments, len(attachments), MaxAttachments)
	}

	account, found, err := s.store.FindLinked(ctx, ownerUserID, handle)
	if err != nil {
		return TweetResult{}, err
	}
	if !found {
		return TweetResult{}, fmt.Errorf("%w: %q", ErrAccountNotLinked, handle)
	}

	creds := AccessCredentials{Token: account.AccessToken, Secret: account.AccessTokenSecret}

	mediaIDs, err := s.uploadAll(ctx, creds, attachments)
	if err != nil {
		if result, ok := asFailedResult(err); ok {
			return result, nil
		}
		return TweetResult{}, err
	}

	posted, err := s.provider.PostStatus(ctx, creds, text, mediaIDs)
	if err != nil {
		if result, ok := asFailedResult(err); ok {
			return result, nil
		}
		return TweetResult{}, err
	}

	return TweetResult{
		IsSuccess: true,
		TweetURL:  s.postURL(posted),
		Detail:    "Tweet sent successfully.",
	}, nil
}

// uploadAll dispatches every upload at once and blocks until all branches
// finish. Completion order is irrelevant: each branch writes its media ID
// into its own slot. Branches that outlive the first failure are not
// cancelled here; whatever deadline the provider transport carries applies.
func (s *TweetSubmitter) uploadAll(ctx context.Context, creds AccessCredentials, attachments []Media) ([]string, error) {
	mediaIDs := make([]string, len(attachments))
	if len(attachments) == 0 {
		return mediaIDs, nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var uploadErrs []error

	for i, media := range attachments {
		wg.Add(1)
		go func(idx int, item Media) {
			defer wg.Done()
			id, err := s.provider.UploadMedia(ctx, creds, item)
			if err != nil {
				mu.Lock()
				uploadErrs = append(uploadErrs, err)
				mu.Unlock()
				return
			}
			mediaIDs[idx] = id
		}(i, media)
	}
	wg.Wait()

	if len(uploadErrs) > 0 {
		return nil, uploadErrs[0]
	}
	return mediaIDs, nil
}

// asFailedResult translates a ProviderError into the non-throwing failure
// result. Codes known to the message table get their stable message, an
// unrecognized code falls back to a templated line carrying the raw code,
// and a code-less error carries the raw message and transport status.
func asFailedResult(err error) (TweetResult, bool) {
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		return TweetResult{}, false
	}
	if len(providerErr.Codes) == 0 {
		return TweetResult{
			IsSuccess: false,
			Detail:    fmt.Sprintf("Message: %s (HTTP Error %d)", providerErr.RawMessage, providerErr.HTTPStatus),
		}, true
	}

	first := providerErr.Codes[0]
	if message, ok := providerErrorMessages[first.Code]; ok {
		return TweetResult{IsSuccess: false, Detail: message}, true
	}
	return TweetResult{
		IsSuccess: false,
		Detail:    fmt.Sprintf("Code: %d, Message: %s", first.Code, first.Message),
	}, true
}

func defaultPostURL(result PostResult) string {
	return fmt.Sprintf("https://twitter.com/%s/status/%s", result.Handle, result.StatusID)
}
