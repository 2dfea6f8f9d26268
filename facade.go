package sociallink

import (
	"fmt"

	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-social-link/adapters/gocommand"
	linkcommand "github.com/goliatone/go-social-link/command"
	"github.com/goliatone/go-social-link/core"
	linkquery "github.com/goliatone/go-social-link/query"
)

// Commands groups the message handlers that mutate linking state.
type Commands struct {
	IssueAuthURL     *linkcommand.IssueAuthURLCommand
	CompleteCallback *linkcommand.CompleteCallbackCommand
	Unlink           *linkcommand.UnlinkCommand
	PostTweet        *linkcommand.PostTweetCommand
	RefreshProfiles  *linkcommand.RefreshProfilesCommand
}

// Queries groups the read-side handlers over linked accounts.
type Queries struct {
	GetAccount   *linkquery.GetAccountQuery
	ListAccounts *linkquery.ListAccountsQuery
}

// Facade bundles the command and query handlers for one linking service so
// hosts wire a single object into their message bus.
type Facade struct {
	service  core.LinkingService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	accountReader linkquery.AccountReader
}

// WithAccountReader overrides the read-side store for the account queries.
// Without it the facade lifts the store out of the service dependencies.
func WithAccountReader(reader linkquery.AccountReader) FacadeOption {
	return func(options *facadeOptions) {
		options.accountReader = reader
	}
}

func NewFacade(service core.LinkingService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("sociallink: linking service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.accountReader
	if reader == nil {
		reader = resolveAccountReader(service)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		IssueAuthURL:     linkcommand.NewIssueAuthURLCommand(service),
		CompleteCallback: linkcommand.NewCompleteCallbackCommand(service),
		Unlink:           linkcommand.NewUnlinkCommand(service),
		PostTweet:        linkcommand.NewPostTweetCommand(service),
		RefreshProfiles:  linkcommand.NewRefreshProfilesCommand(service),
	}
	facade.queries = Queries{
		GetAccount:   linkquery.NewGetAccountQuery(reader),
		ListAccounts: linkquery.NewListAccountsQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() core.LinkingService {
	if f == nil {
		return nil
	}
	return f.service
}

// Register subscribes every facade handler on the dispatcher and records it
// in the registry adapter. On partial failure the already-created
// subscriptions are torn down before the error is returned.
func (f *Facade) Register(
	adapter *gocommand.RegistryAdapter,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	if f == nil {
		return nil, fmt.Errorf("sociallink: facade is required")
	}
	if adapter == nil {
		return nil, fmt.Errorf("sociallink: registry adapter is required")
	}

	var subscriptions []commanddispatcher.Subscription
	teardown := func() {
		for _, subscription := range subscriptions {
			if subscription != nil {
				subscription.Unsubscribe()
			}
		}
	}

	commandRegistrations := []func() (commanddispatcher.Subscription, error){
		func() (commanddispatcher.Subscription, error) {
			return gocommand.RegisterAndSubscribe(adapter, f.commands.IssueAuthURL, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return gocommand.RegisterAndSubscribe(adapter, f.commands.CompleteCallback, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return gocommand.RegisterAndSubscribe(adapter, f.commands.Unlink, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return gocommand.RegisterAndSubscribe(adapter, f.commands.PostTweet, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return gocommand.RegisterAndSubscribe(adapter, f.commands.RefreshProfiles, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return gocommand.RegisterAndSubscribeQuery(adapter, f.queries.GetAccount, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return gocommand.RegisterAndSubscribeQuery(adapter, f.queries.ListAccounts, runnerOpts...)
		},
	}
	for _, register := range commandRegistrations {
		subscription, err := register()
		if err != nil {
			teardown()
			return nil, err
		}
		subscriptions = append(subscriptions, subscription)
	}
	return subscriptions, nil
}

// resolveAccountReader lifts the account store out of a fully wired Service.
// Fakes that only implement the operation surface yield a nil reader; the
// queries then fail with their dependency error until WithAccountReader is
// supplied.
func resolveAccountReader(service core.LinkingService) linkquery.AccountReader {
	if service == nil {
		return nil
	}
	if reader, ok := service.(linkquery.AccountReader); ok {
		return reader
	}
	provider, ok := service.(interface {
		Dependencies() core.ServiceDependencies
	})
	if !ok {
		return nil
	}
	deps := provider.Dependencies()
	if deps.AccountStore == nil {
		return nil
	}
	return deps.AccountStore
}
