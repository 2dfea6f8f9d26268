package core

import (
	"context"
	"testing"
)

func TestReconcilePromotesVerifiedRecord(t *testing.T) {
	store := newMemoryAccountStore()
	reconciler, err := NewAccountReconciler(store)
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}

	verified := SocialAccount{
		ID:                "acct_pending",
		OwnerUserID:       "user-1",
		DisplayName:       "Display",
		Handle:            "handle",
		AccessToken:       "token",
		AccessTokenSecret: "secret",
		Status:            AccountStatusPending,
	}
	store.byID[verified.ID] = verified

	linked, err := reconciler.Reconcile(context.Background(), verified)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if linked.ID != "acct_pending" {
		t.Fatalf("expected same record promoted, got %q", linked.ID)
	}
	if linked.Status != AccountStatusLinked {
		t.Fatalf("status = %q", linked.Status)
	}
	if store.count() != 1 {
		t.Fatalf("record count = %d", store.count())
	}
}

func TestReconcileMergesAndDeletesDuplicate(t *testing.T) {
	store := newMemoryAccountStore()
	reconciler, err := NewAccountReconciler(store)
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}
	existing := store.mustSeedLinked("user-1", "handle")

	verified := SocialAccount{
		ID:                "acct_fresh",
		OwnerUserID:       "user-1",
		DisplayName:       "New Display",
		Handle:            "handle",
		AvatarURL:         "https://pbs.twimg.com/new.jpg",
		AccessToken:       "new-token",
		AccessTokenSecret: "new-secret",
		Status:            AccountStatusPending,
	}
	store.byID[verified.ID] = verified

	merged, err := reconciler.Reconcile(context.Background(), verified)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if merged.ID != existing.ID {
		t.Fatalf("expected existing id %q, got %q", existing.ID, merged.ID)
	}
	if merged.DisplayName != "New Display" || merged.AvatarURL != "https://pbs.twimg.com/new.jpg" {
		t.Fatalf("profile fields not refreshed: %+v", merged)
	}
	if merged.AccessToken != "new-token" || merged.AccessTokenSecret != "new-secret" {
		t.Fatalf("tokens not refreshed: %+v", merged)
	}
	if store.count() != 1 {
		t.Fatalf("duplicate not removed, count = %d", store.count())
	}
	if _, ok := store.byID["acct_fresh"]; ok {
		t.Fatal("fresh record should have been deleted")
	}
}

func TestReconcileIsIdempotentForSameRecord(t *testing.T) {
	store := newMemoryAccountStore()
	reconciler, err := NewAccountReconciler(store)
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}
	existing := store.mustSeedLinked("user-1", "handle")

	relinked, err := reconciler.Reconcile(context.Background(), existing)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if relinked.ID != existing.ID {
		t.Fatalf("id changed: %q", relinked.ID)
	}
	if store.count() != 1 {
		t.Fatalf("record count = %d", store.count())
	}
}

func TestReconcileKeepsOtherOwnersApart(t *testing.T) {
	store := newMemoryAccountStore()
	reconciler, err := NewAccountReconciler(store)
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}
	store.mustSeedLinked("user-other", "handle")

	verified := SocialAccount{
		ID:          "acct_fresh",
		OwnerUserID: "user-1",
		Handle:      "handle",
		Status:      AccountStatusPending,
	}
	store.byID[verified.ID] = verified

	linked, err := reconciler.Reconcile(context.Background(), verified)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if linked.ID != "acct_fresh" {
		t.Fatalf("expected promotion of fresh record, got %q", linked.ID)
	}
	if store.count() != 2 {
		t.Fatalf("expected both owners' records, count = %d", store.count())
	}
}
