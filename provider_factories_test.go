package sociallink_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	sociallink "github.com/goliatone/go-social-link"
	"github.com/goliatone/go-social-link/providers/twitter"
)

func TestTwitterProviderFactory(t *testing.T) {
	if _, err := sociallink.TwitterProvider(twitter.Config{}); err == nil {
		t.Fatalf("expected missing consumer credentials to fail")
	}

	provider, err := sociallink.TwitterProvider(twitter.Config{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
	})
	if err != nil {
		t.Fatalf("build twitter provider: %v", err)
	}
	if provider == nil {
		t.Fatalf("expected provider instance")
	}
}

func TestSQLStoresFactory(t *testing.T) {
	if _, err := sociallink.SQLStores(nil); err == nil {
		t.Fatalf("expected nil connection to fail")
	}

	sqlDB, err := sql.Open("sqlite3", "file:factory-test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	db := bun.NewDB(sqlDB, sqlitedialect.New())

	stores, err := sociallink.SQLStores(db)
	if err != nil {
		t.Fatalf("build sql stores: %v", err)
	}
	if stores.AccountStore() == nil {
		t.Fatalf("expected account store from factory")
	}
}
