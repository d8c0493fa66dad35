package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Evaluator         = (*FixtureLifecycleGuard)(nil)
	_ ComponentRegistry = (*StaticFixtureRegistry)(nil)
	_ MarkerLookup      = (*StaticFixtureRegistry)(nil)
	_ RawConfigLoader   = StaticRawConfigLoader{}
	_ ConfigProvider    = (*CfgxConfigProvider)(nil)
	_ OptionsResolver   = GoOptionsResolver{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
