package gologger

import (
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

const rootLoggerName = "contracts"

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ComponentLogger returns the named logger for a component, e.g.
// "contracts.fixture_guard". Blank components get the root logger.
func ComponentLogger(provider glog.LoggerProvider, logger glog.Logger, component string) glog.Logger {
	name := rootLoggerName
	if component = strings.Trim(strings.TrimSpace(component), "."); component != "" {
		name = rootLoggerName + "." + component
	}
	_, resolved := Resolve(name, provider, logger)
	return glog.Ensure(resolved)
}
