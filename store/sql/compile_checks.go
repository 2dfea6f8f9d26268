package sqlstore

import "github.com/goliatone/go-social-link/core"

var (
	_ core.AccountStore  = (*AccountStore)(nil)
	_ core.AccountStore  = (*CachedAccountStore)(nil)
	_ core.StoreProvider = (*RepositoryFactory)(nil)
)
