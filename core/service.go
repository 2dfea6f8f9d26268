package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Service is the composition root for the account-linking flows. It wires
// the handshake, callback, reconcile, unlink and post operations around one
// Provider and one AccountStore, and owns the observability envelope for
// each operation.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	provider        Provider
	accountStore    AccountStore
	issuer          *AuthURLIssuer
	callbackHandler *CallbackHandler
	reconciler      *AccountReconciler
	submitter       *TweetSubmitter
	refresher       *ProfileRefresher
	now             func() time.Time
}

type ServiceDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	Provider        Provider
	AccountStore    AccountStore
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	loggerProvider, logger := glog.Resolve("social-link", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if loggerProvider != nil {
		if named := loggerProvider.GetLogger("social-link"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.refreshBackoff == nil {
		builder.refreshBackoff = ExponentialBackoffScheduler{
			Initial: defaultRefreshInitialBackoff,
			Max:     defaultRefreshMaxBackoff,
		}
	}
	if builder.now == nil {
		builder.now = func() time.Time { return time.Now().UTC() }
	}
	if builder.provider == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: provider is required"))
	}
	if builder.accountStore == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: account store is required"))
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	issuer, err := NewAuthURLIssuer(
		builder.provider,
		builder.accountStore,
		finalConfig.RedirectHubURL,
		finalConfig.ServerBaseURL,
	)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	reconciler, err := NewAccountReconciler(builder.accountStore)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	callbackHandler, err := NewCallbackHandler(
		builder.provider,
		builder.accountStore,
		reconciler,
		finalConfig.SettingsPath,
	)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	submitter, err := NewTweetSubmitter(builder.provider, builder.accountStore)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	refresher, err := NewProfileRefresher(
		builder.provider,
		builder.accountStore,
		WithRefreshBackoff(builder.refreshBackoff),
	)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  loggerProvider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		provider:        builder.provider,
		accountStore:    builder.accountStore,
		issuer:          issuer,
		callbackHandler: callbackHandler,
		reconciler:      reconciler,
		submitter:       submitter,
		refresher:       refresher,
		now:             builder.now,
	}, nil
}

func Setup(cfg Config, options ...Option) (*Service, error) {
	return NewService(cfg, options...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:          s.logger,
		LoggerProvider:  s.loggerProvider,
		MetricsRecorder: s.metricsRecorder,
		ErrorMapper:     s.errorMapper,
		ConfigProvider:  s.configProvider,
		OptionsResolver: s.optionsResolver,
		Provider:        s.provider,
		AccountStore:    s.accountStore,
	}
}

// IssueAuthURL starts the linking handshake for one user and returns the
// authorization URL their browser must open.
func (s *Service) IssueAuthURL(ctx context.Context, ownerUserID string, originURL string) (authURL string, err error) {
	if s == nil || s.issuer == nil {
		return "", fmt.Errorf("core: service is not configured")
	}
	startedAt := s.now()
	fields := map[string]any{
		"owner_user_id": ownerUserID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "issue_auth_url", err, fields)
	}()

	authURL, err = s.issuer.IssueAuthURL(ctx, ownerUserID, originURL)
	if err != nil {
		err = s.mapError(err)
		return "", err
	}
	return authURL, nil
}

// HandleCallback processes the provider's redirect back from the
// authorization page. Flow-level failures (denial, bad parameters, exchange
// failure) are reported in the outcome, not as errors; the returned error is
// reserved for infrastructure faults.
func (s *Service) HandleCallback(ctx context.Context, req CallbackRequest) (outcome CallbackOutcome, err error) {
	if s == nil || s.callbackHandler == nil {
		return CallbackOutcome{}, fmt.Errorf("core: service is not configured")
	}
	startedAt := s.now()
	fields := map[string]any{}
	defer func() {
		fields["state"] = string(outcome.State)
		if outcome.State == CallbackStateVerified {
			fields["owner_user_id"] = outcome.Account.OwnerUserID
			fields["handle"] = outcome.Account.Handle
		}
		s.observeOperation(ctx, startedAt, "handle_callback", err, fields)
	}()

	outcome, err = s.callbackHandler.Handle(ctx, req)
	if err != nil {
		err = s.mapError(err)
		return CallbackOutcome{}, err
	}
	return outcome, nil
}

// Unlink removes the linked account matching owner and handle. A missing
// account is reported as ErrAccountNotLinked.
func (s *Service) Unlink(ctx context.Context, ownerUserID string, handle string) (err error) {
	if s == nil || s.accountStore == nil {
		return fmt.Errorf("core: service is not configured")
	}
	startedAt := s.now()
	fields := map[string]any{
		"owner_user_id": ownerUserID,
		"handle":        handle,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "unlink", err, fields)
	}()

	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		err = s.mapError(ErrOwnerRequired)
		return err
	}
	handle = strings.TrimSpace(handle)
	if handle == "" {
		err = s.mapError(fmt.Errorf("core: handle is required"))
		return err
	}

	account, found, findErr := s.accountStore.FindLinked(ctx, ownerUserID, handle)
	if findErr != nil {
		err = s.mapError(findErr)
		return err
	}
	if !found {
		err = s.mapError(fmt.Errorf("%w: %s", ErrAccountNotLinked, handle))
		return err
	}
	if deleteErr := s.accountStore.Delete(ctx, account.ID); deleteErr != nil {
		err = s.mapError(deleteErr)
		return err
	}
	return nil
}

// PostTweet submits a status with optional media on behalf of the linked
// account. Provider-side rejections come back inside TweetResult.
func (s *Service) PostTweet(
	ctx context.Context,
	ownerUserID string,
	handle string,
	text string,
	attachments []Media,
) (result TweetResult, err error) {
	if s == nil || s.submitter == nil {
		return TweetResult{}, fmt.Errorf("core: service is not configured")
	}
	startedAt := s.now()
	fields := map[string]any{
		"owner_user_id": ownerUserID,
		"handle":        handle,
		"attachments":   len(attachments),
	}
	defer func() {
		fields["is_success"] = result.IsSuccess
		s.observeOperation(ctx, startedAt, "post_tweet", err, fields)
	}()

	result, err = s.submitter.PostTweet(ctx, ownerUserID, handle, text, attachments)
	if err != nil {
		err = s.mapError(err)
		return TweetResult{}, err
	}
	return result, nil
}

// ListAccounts returns the linked accounts belonging to one user. Pending
// handshake leftovers are not included.
func (s *Service) ListAccounts(ctx context.Context, ownerUserID string) (accounts []SocialAccount, err error) {
	if s == nil || s.accountStore == nil {
		return nil, fmt.Errorf("core: service is not configured")
	}
	startedAt := s.now()
	fields := map[string]any{
		"owner_user_id": ownerUserID,
	}
	defer func() {
		fields["count"] = len(accounts)
		s.observeOperation(ctx, startedAt, "list_accounts", err, fields)
	}()

	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		err = s.mapError(ErrOwnerRequired)
		return nil, err
	}
	accounts, err = s.accountStore.ListLinkedByOwner(ctx, ownerUserID)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	return accounts, nil
}

// RefreshProfiles sweeps all linked accounts and re-fetches their profile
// fields from the provider.
func (s *Service) RefreshProfiles(ctx context.Context) (report ProfileRefreshReport, err error) {
	if s == nil || s.refresher == nil {
		return ProfileRefreshReport{}, fmt.Errorf("core: service is not configured")
	}
	startedAt := s.now()
	fields := map[string]any{}
	defer func() {
		fields["refreshed"] = report.Refreshed
		fields["unchanged"] = report.Unchanged
		fields["skipped"] = report.Skipped
		fields["failed"] = report.Failed
		s.observeOperation(ctx, startedAt, "refresh_profiles", err, fields)
	}()

	report, err = s.refresher.RefreshAll(ctx)
	if err != nil {
		err = s.mapError(err)
		return report, err
	}
	return report, nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
