package sociallink

import (
	"github.com/goliatone/go-social-link/core"
	"github.com/goliatone/go-social-link/providers/twitter"
	sqlstore "github.com/goliatone/go-social-link/store/sql"
)

// TwitterProvider builds the OAuth1.0a Twitter provider.
func TwitterProvider(cfg twitter.Config) (core.Provider, error) {
	return twitter.New(cfg)
}

// SQLStores builds the SQL-backed stores from a persistence client or a
// *bun.DB handle.
func SQLStores(conn any) (core.StoreProvider, error) {
	return sqlstore.NewRepositoryFactory().BuildStores(conn)
}
