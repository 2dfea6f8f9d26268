package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-social-link/core"
)

type IssueAuthURLCommand struct {
	service core.LinkingService
}

func NewIssueAuthURLCommand(service core.LinkingService) *IssueAuthURLCommand {
	return &IssueAuthURLCommand{service: service}
}

func (c *IssueAuthURLCommand) Execute(ctx context.Context, msg IssueAuthURLMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: auth url service is required")
	}
	authURL, err := c.service.IssueAuthURL(ctx, msg.OwnerUserID, msg.OriginURL)
	if err != nil {
		return err
	}
	storeResult(ctx, authURL)
	return nil
}

type CompleteCallbackCommand struct {
	service core.LinkingService
}

func NewCompleteCallbackCommand(service core.LinkingService) *CompleteCallbackCommand {
	return &CompleteCallbackCommand{service: service}
}

func (c *CompleteCallbackCommand) Execute(ctx context.Context, msg CompleteCallbackMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: callback service is required")
	}
	outcome, err := c.service.HandleCallback(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, outcome)
	return nil
}

type UnlinkCommand struct {
	service core.LinkingService
}

func NewUnlinkCommand(service core.LinkingService) *UnlinkCommand {
	return &UnlinkCommand{service: service}
}

func (c *UnlinkCommand) Execute(ctx context.Context, msg UnlinkMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: unlink service is required")
	}
	return c.service.Unlink(ctx, msg.OwnerUserID, msg.Handle)
}

type PostTweetCommand struct {
	service core.LinkingService
}

func NewPostTweetCommand(service core.LinkingService) *PostTweetCommand {
	return &PostTweetCommand{service: service}
}

func (c *PostTweetCommand) Execute(ctx context.Context, msg PostTweetMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: tweet service is required")
	}
	result, err := c.service.PostTweet(ctx, msg.OwnerUserID, msg.Handle, msg.Text, msg.Attachments)
	if err != nil {
		return err
	}
	storeResult(ctx, result)
	return nil
}

type RefreshProfilesCommand struct {
	service core.LinkingService
}

func NewRefreshProfilesCommand(service core.LinkingService) *RefreshProfilesCommand {
	return &RefreshProfilesCommand{service: service}
}

func (c *RefreshProfilesCommand) Execute(ctx context.Context, msg RefreshProfilesMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: profile refresh service is required")
	}
	report, err := c.service.RefreshProfiles(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, report)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
