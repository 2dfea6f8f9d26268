package sociallink

import "github.com/goliatone/go-social-link/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type LinkingService = core.LinkingService
type Provider = core.Provider
type AccountStore = core.AccountStore
type StoreProvider = core.StoreProvider
type MetricsRecorder = core.MetricsRecorder
type ErrorMapper = core.ErrorMapper
type ConfigProvider = core.ConfigProvider
type OptionsResolver = core.OptionsResolver
type RefreshBackoffScheduler = core.RefreshBackoffScheduler

type SocialAccount = core.SocialAccount
type AccountStatus = core.AccountStatus
type Profile = core.Profile
type Media = core.Media
type AccessCredentials = core.AccessCredentials
type TweetResult = core.TweetResult
type ProfileRefreshReport = core.ProfileRefreshReport

type CallbackRequest = core.CallbackRequest
type CallbackOutcome = core.CallbackOutcome
type CallbackState = core.CallbackState

type HandshakeSession = core.HandshakeSession
type PostResult = core.PostResult
type ProviderError = core.ProviderError

var (
	WithLogger                  = core.WithLogger
	WithLoggerProvider          = core.WithLoggerProvider
	WithMetricsRecorder         = core.WithMetricsRecorder
	WithErrorMapper             = core.WithErrorMapper
	WithConfigProvider          = core.WithConfigProvider
	WithOptionsResolver         = core.WithOptionsResolver
	WithProvider                = core.WithProvider
	WithAccountStore            = core.WithAccountStore
	WithRefreshBackoffScheduler = core.WithRefreshBackoffScheduler
	WithClock                   = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
