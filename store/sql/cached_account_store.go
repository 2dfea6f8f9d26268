package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-social-link/core"
)

const linkedAccountCacheKeyPrefix = "go-social-link::linked_account::v1"

// cachedLinkedLookup carries the found flag through the cache so that
// misses are cached alongside hits.
type cachedLinkedLookup struct {
	Account core.SocialAccount
	Found   bool
}

type CachedAccountStore struct {
	base  core.AccountStore
	cache repositorycache.CacheService
}

func NewCachedAccountStore(
	base core.AccountStore,
	cacheService repositorycache.CacheService,
) (*CachedAccountStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base account store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: account cache service is required")
	}
	return &CachedAccountStore{base: base, cache: cacheService}, nil
}

// LinkedAccountCacheKey returns the deterministic cache key contract for
// linked-account reads: go-social-link::linked_account::v1::<owner_user_id>::<handle>
// with each segment URL-path escaped after trimming.
func LinkedAccountCacheKey(ownerUserID string, handle string) (string, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	handle = strings.TrimSpace(handle)
	if ownerUserID == "" {
		return "", fmt.Errorf("sqlstore: owner user id is required")
	}
	if handle == "" {
		return "", fmt.Errorf("sqlstore: handle is required")
	}
	segments := []string{url.PathEscape(ownerUserID), url.PathEscape(handle)}
	return strings.Join(append([]string{linkedAccountCacheKeyPrefix}, segments...), "::"), nil
}

func (s *CachedAccountStore) Create(ctx context.Context, account core.SocialAccount) (core.SocialAccount, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.SocialAccount{}, fmt.Errorf("sqlstore: cached account store is not configured")
	}
	return s.base.Create(ctx, account)
}

func (s *CachedAccountStore) GetByRequestToken(ctx context.Context, requestToken string) (core.SocialAccount, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.SocialAccount{}, false, fmt.Errorf("sqlstore: cached account store is not configured")
	}
	return s.base.GetByRequestToken(ctx, requestToken)
}

func (s *CachedAccountStore) FindLinked(ctx context.Context, ownerUserID string, handle string) (core.SocialAccount, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.SocialAccount{}, false, fmt.Errorf("sqlstore: cached account store is not configured")
	}
	cacheKey, err := LinkedAccountCacheKey(ownerUserID, handle)
	if err != nil {
		return core.SocialAccount{}, false, err
	}

	lookup, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedLinkedLookup, error) {
		account, found, fetchErr := s.base.FindLinked(ctx, ownerUserID, handle)
		if fetchErr != nil {
			return cachedLinkedLookup{}, fetchErr
		}
		return cachedLinkedLookup{Account: account, Found: found}, nil
	})
	if err != nil {
		return core.SocialAccount{}, false, err
	}
	return lookup.Account, lookup.Found, nil
}

func (s *CachedAccountStore) ListLinkedByOwner(ctx context.Context, ownerUserID string) ([]core.SocialAccount, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached account store is not configured")
	}
	return s.base.ListLinkedByOwner(ctx, ownerUserID)
}

func (s *CachedAccountStore) ListLinked(ctx context.Context) ([]core.SocialAccount, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached account store is not configured")
	}
	return s.base.ListLinked(ctx)
}

func (s *CachedAccountStore) Save(ctx context.Context, account core.SocialAccount) (core.SocialAccount, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.SocialAccount{}, fmt.Errorf("sqlstore: cached account store is not configured")
	}
	saved, err := s.base.Save(ctx, account)
	if err != nil {
		return core.SocialAccount{}, err
	}
	if invalidateErr := s.invalidate(ctx, saved.OwnerUserID, saved.Handle); invalidateErr != nil {
		return core.SocialAccount{}, invalidateErr
	}
	return saved, nil
}

func (s *CachedAccountStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached account store is not configured")
	}
	// The delete contract is keyed by id; resolve the account first so the
	// owner/handle cache entry can be invalidated.
	linked, err := s.base.ListLinked(ctx)
	if err != nil {
		return err
	}
	var owner, handle string
	for _, account := range linked {
		if account.ID == strings.TrimSpace(id) {
			owner = account.OwnerUserID
			handle = account.Handle
			break
		}
	}

	if err := s.base.Delete(ctx, id); err != nil {
		return err
	}
	if owner == "" && handle == "" {
		return nil
	}
	return s.invalidate(ctx, owner, handle)
}

func (s *CachedAccountStore) invalidate(ctx context.Context, ownerUserID string, handle string) error {
	cacheKey, err := LinkedAccountCacheKey(ownerUserID, handle)
	if err != nil {
		// Accounts without owner or handle never populate the cache.
		return nil
	}
	return s.cache.Delete(ctx, cacheKey)
}

var _ core.AccountStore = (*CachedAccountStore)(nil)
