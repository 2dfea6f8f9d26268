package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-social-link/core"
)

var (
	_ gocmd.Querier[GetAccountMessage, core.SocialAccount]     = (*GetAccountQuery)(nil)
	_ gocmd.Querier[ListAccountsMessage, []core.SocialAccount] = (*ListAccountsQuery)(nil)
	_ AccountReader                                            = (core.AccountStore)(nil)
)
