package core

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-social-link/identity"
)

const (
	defaultRefreshMaxAttempts    = 3
	defaultRefreshInitialBackoff = 500 * time.Millisecond
	defaultRefreshMaxBackoff     = 10 * time.Second
)

type RefreshBackoffScheduler interface {
	NextDelay(attempt int) time.Duration
}

type ExponentialBackoffScheduler struct {
	Initial time.Duration
	Max     time.Duration
}

func (s ExponentialBackoffScheduler) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	initial := s.Initial
	if initial <= 0 {
		initial = defaultRefreshInitialBackoff
	}
	max := s.Max
	if max <= 0 {
		max = defaultRefreshMaxBackoff
	}

	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

// ProfileRefreshReport summarizes one refresh sweep.
type ProfileRefreshReport struct {
	Refreshed int
	Unchanged int
	Skipped   int
	Failed    int
}

type ProfileRefresherOption func(*ProfileRefresher)

func WithRefreshMaxAttempts(attempts int) ProfileRefresherOption {
	return func(r *ProfileRefresher) {
		if r == nil || attempts < 1 {
			return
		}
		r.maxAttempts = attempts
	}
}

func WithRefreshBackoff(scheduler RefreshBackoffScheduler) ProfileRefresherOption {
	return func(r *ProfileRefresher) {
		if r == nil || scheduler == nil {
			return
		}
		r.backoff = scheduler
	}
}

// ProfileRefresher re-fetches profile fields for linked accounts so display
// names and avatars do not go stale between re-links. Tokens are never
// touched; an account whose fetch keeps failing is counted and left alone.
// An account whose upstream handle changed is skipped — that identity drift
// needs a fresh handshake, not a silent rename.
type ProfileRefresher struct {
	provider    Provider
	store       AccountStore
	backoff     RefreshBackoffScheduler
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewProfileRefresher(provider Provider, store AccountStore, opts ...ProfileRefresherOption) (*ProfileRefresher, error) {
	if provider == nil {
		return nil, fmt.Errorf("core: provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("core: account store is required")
	}
	r := &ProfileRefresher{
		provider:    provider,
		store:       store,
		backoff:     ExponentialBackoffScheduler{},
		maxAttempts: defaultRefreshMaxAttempts,
		sleep:       sleepWithContext,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// RefreshAll sweeps every linked account. A store failure aborts the sweep;
// per-account provider failures only mark that account as failed.
func (r *ProfileRefresher) RefreshAll(ctx context.Context) (ProfileRefreshReport, error) {
	if r == nil || r.provider == nil || r.store == nil {
		return ProfileRefreshReport{}, fmt.Errorf("core: profile refresher is not configured")
	}

	accounts, err := r.store.ListLinked(ctx)
	if err != nil {
		return ProfileRefreshReport{}, err
	}

	report := ProfileRefreshReport{}
	for _, account := range accounts {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		outcome, err := r.refreshOne(ctx, account)
		if err != nil {
			return report, err
		}
		switch outcome {
		case refreshOutcomeRefreshed:
			report.Refreshed++
		case refreshOutcomeUnchanged:
			report.Unchanged++
		case refreshOutcomeSkipped:
			report.Skipped++
		case refreshOutcomeFailed:
			report.Failed++
		}
	}
	return report, nil
}

type refreshOutcome int

const (
	refreshOutcomeRefreshed refreshOutcome = iota
	refreshOutcomeUnchanged
	refreshOutcomeSkipped
	refreshOutcomeFailed
)

func (r *ProfileRefresher) refreshOne(ctx context.Context, account SocialAccount) (refreshOutcome, error) {
	creds := AccessCredentials{Token: account.AccessToken, Secret: account.AccessTokenSecret}

	var profile Profile
	var fetchErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		profile, fetchErr = r.provider.FetchProfile(ctx, creds)
		if fetchErr == nil {
			break
		}
		if attempt == r.maxAttempts {
			return refreshOutcomeFailed, nil
		}
		if err := r.sleep(ctx, r.backoff.NextDelay(attempt)); err != nil {
			return refreshOutcomeFailed, err
		}
	}

	if profile.Handle != account.Handle {
		return refreshOutcomeSkipped, nil
	}

	profile.AvatarURL = identity.CanonicalAvatarURL(profile.AvatarURL)
	if profile.DisplayName == account.DisplayName && profile.AvatarURL == account.AvatarURL {
		return refreshOutcomeUnchanged, nil
	}

	account.DisplayName = profile.DisplayName
	account.AvatarURL = profile.AvatarURL
	if _, err := r.store.Save(ctx, account); err != nil {
		return refreshOutcomeFailed, err
	}
	return refreshOutcomeRefreshed, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
