package query

import (
	"context"

	"github.com/goliatone/go-social-link/core"
)

// AccountReader is the read slice of the account store the query layer
// depends on. core.AccountStore satisfies it.
type AccountReader interface {
	FindLinked(ctx context.Context, ownerUserID string, handle string) (core.SocialAccount, bool, error)
	ListLinkedByOwner(ctx context.Context, ownerUserID string) ([]core.SocialAccount, error)
}

type GetAccountQuery struct {
	reader AccountReader
}

func NewGetAccountQuery(reader AccountReader) *GetAccountQuery {
	return &GetAccountQuery{reader: reader}
}

func (q *GetAccountQuery) Query(ctx context.Context, msg GetAccountMessage) (core.SocialAccount, error) {
	if q == nil || q.reader == nil {
		return core.SocialAccount{}, queryDependencyError("query: account reader is required")
	}
	account, found, err := q.reader.FindLinked(ctx, msg.OwnerUserID, msg.Handle)
	if err != nil {
		return core.SocialAccount{}, err
	}
	if !found {
		return core.SocialAccount{}, queryNotFoundError(msg.Handle)
	}
	return account, nil
}

type ListAccountsQuery struct {
	reader AccountReader
}

func NewListAccountsQuery(reader AccountReader) *ListAccountsQuery {
	return &ListAccountsQuery{reader: reader}
}

func (q *ListAccountsQuery) Query(ctx context.Context, msg ListAccountsMessage) ([]core.SocialAccount, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: account reader is required")
	}
	return q.reader.ListLinkedByOwner(ctx, msg.OwnerUserID)
}
