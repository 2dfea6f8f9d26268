package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ LinkingService          = (*Service)(nil)
	_ RefreshBackoffScheduler = ExponentialBackoffScheduler{}
	_ MetricsRecorder         = NopMetricsRecorder{}
	_ OptionsResolver         = GoOptionsResolver{}
	_ ConfigProvider          = (*CfgxConfigProvider)(nil)
	_ RawConfigLoader         = staticRawConfigLoader{}
	_ error                   = (*ProviderError)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
