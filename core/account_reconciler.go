package core

import (
	"context"
	"fmt"
)

// AccountReconciler folds a freshly verified record into any pre-existing
// linked record for the same (owner, handle) pair, preserving the invariant
// of at most one linked record per external identity per user.
type AccountReconciler struct {
	store AccountStore
}

func NewAccountReconciler(store AccountStore) (*AccountReconciler, error) {
	if store == nil {
		return nil, fmt.Errorf("core: account store is required")
	}
	return &AccountReconciler{store: store}, nil
}

// Reconcile either merges the verified record into an existing linked record
// (refreshing tokens and profile fields, then deleting the verified one) or
// promotes the verified record itself to linked. Idempotent across repeated
// re-links of the same identity: the linked-record set never grows for an
// identity that is already linked.
func (r *AccountReconciler) Reconcile(ctx context.Context, verified SocialAccount) (SocialAccount, error) {
	if r == nil || r.store == nil {
		return SocialAccount{}, fmt.Errorf("core: account reconciler is not configured")
	}

	existing, found, err := r.store.FindLinked(ctx, verified.OwnerUserID, verified.Handle)
	if err != nil {
		return SocialAccount{}, err
	}
	if found && existing.ID != verified.ID {
		merged, err := r.store.Save(ctx, existing.MergeVerified(verified))
		if err != nil {
			return SocialAccount{}, err
		}
		if err := r.store.Delete(ctx, verified.ID); err != nil {
			return SocialAccount{}, err
		}
		return merged, nil
	}

	verified.Status = AccountStatusLinked
	return r.store.Save(ctx, verified)
}
