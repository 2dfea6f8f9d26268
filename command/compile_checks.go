package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[IssueAuthURLMessage]     = (*IssueAuthURLCommand)(nil)
	_ gocmd.Commander[CompleteCallbackMessage] = (*CompleteCallbackCommand)(nil)
	_ gocmd.Commander[UnlinkMessage]           = (*UnlinkCommand)(nil)
	_ gocmd.Commander[PostTweetMessage]        = (*PostTweetCommand)(nil)
	_ gocmd.Commander[RefreshProfilesMessage]  = (*RefreshProfilesCommand)(nil)
)
