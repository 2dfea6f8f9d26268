package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func noSleep(context.Context, time.Duration) error { return nil }

func TestRefreshAllUpdatesStaleProfiles(t *testing.T) {
	provider := newFakeProvider()
	store := newMemoryAccountStore()
	seeded := store.mustSeedLinked("user-1", "handle")
	provider.profile = Profile{
		DisplayName: "Fresh Name",
		Handle:      "handle",
		AvatarURL:   "https://pbs.twimg.com/profile_images/2/fresh_normal.jpg",
	}

	refresher, err := NewProfileRefresher(provider, store)
	if err != nil {
		t.Fatalf("new refresher: %v", err)
	}
	refresher.sleep = noSleep

	report, err := refresher.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("refresh all: %v", err)
	}
	if report.Refreshed != 1 || report.Failed != 0 || report.Skipped != 0 {
		t.Fatalf("report = %+v", report)
	}

	updated := store.byID[seeded.ID]
	if updated.DisplayName != "Fresh Name" {
		t.Fatalf("display name = %q", updated.DisplayName)
	}
	if updated.AvatarURL != "https://pbs.twimg.com/profile_images/2/fresh.jpg" {
		t.Fatalf("avatar not canonicalized: %q", updated.AvatarURL)
	}
	if updated.AccessToken != seeded.AccessToken || updated.AccessTokenSecret != seeded.AccessTokenSecret {
		t.Fatalf("tokens must not change on refresh: %+v", updated)
	}
}

func TestRefreshAllCountsUnchanged(t *testing.T) {
	provider := newFakeProvider()
	store := newMemoryAccountStore()
	seeded := store.mustSeedLinked("user-1", "handle")
	provider.profile = Profile{
		DisplayName: seeded.DisplayName,
		Handle:      seeded.Handle,
		AvatarURL:   seeded.AvatarURL,
	}

	refresher, err := NewProfileRefresher(provider, store)
	if err != nil {
		t.Fatalf("new refresher: %v", err)
	}
	refresher.sleep = noSleep

	report, err := refresher.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("refresh all: %v", err)
	}
	if report.Unchanged != 1 || report.Refreshed != 0 {
		t.Fatalf("report = %+v", report)
	}
}

func TestRefreshAllSkipsHandleDrift(t *testing.T) {
	provider := newFakeProvider()
	store := newMemoryAccountStore()
	seeded := store.mustSeedLinked("user-1", "handle")
	provider.profile = Profile{DisplayName: "X", Handle: "renamed", AvatarURL: "https://a/b.jpg"}

	refresher, err := NewProfileRefresher(provider, store)
	if err != nil {
		t.Fatalf("new refresher: %v", err)
	}
	refresher.sleep = noSleep

	report, err := refresher.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("refresh all: %v", err)
	}
	if report.Skipped != 1 {
		t.Fatalf("report = %+v", report)
	}
	if got := store.byID[seeded.ID]; got.Handle != "handle" || got.DisplayName != seeded.DisplayName {
		t.Fatalf("drifted account must not be touched: %+v", got)
	}
}

func TestRefreshAllRetriesThenMarksFailed(t *testing.T) {
	provider := newFakeProvider()
	store := newMemoryAccountStore()
	store.mustSeedLinked("user-1", "handle")
	provider.profileErr = errors.New("temporarily unavailable")

	refresher, err := NewProfileRefresher(provider, store, WithRefreshMaxAttempts(3))
	if err != nil {
		t.Fatalf("new refresher: %v", err)
	}
	refresher.sleep = noSleep

	report, err := refresher.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("refresh all: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if provider.fetches != 3 {
		t.Fatalf("expected 3 fetch attempts, got %d", provider.fetches)
	}
}

func TestExponentialBackoffScheduler(t *testing.T) {
	scheduler := ExponentialBackoffScheduler{Initial: time.Second, Max: 5 * time.Second}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: time.Second},
		{attempt: 1, want: time.Second},
		{attempt: 2, want: 2 * time.Second},
		{attempt: 3, want: 4 * time.Second},
		{attempt: 4, want: 5 * time.Second},
		{attempt: 10, want: 5 * time.Second},
	}
	for _, tc := range cases {
		if got := scheduler.NextDelay(tc.attempt); got != tc.want {
			t.Fatalf("NextDelay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestRefreshAllStopsOnCancelledContext(t *testing.T) {
	provider := newFakeProvider()
	store := newMemoryAccountStore()
	store.mustSeedLinked("user-1", "handle")

	refresher, err := NewProfileRefresher(provider, store)
	if err != nil {
		t.Fatalf("new refresher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := refresher.RefreshAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
