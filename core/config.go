package core

import (
	"fmt"
	"strings"
)

type GuardConfig struct {
	ComponentKind            string `koanf:"component_kind" mapstructure:"component_kind"`
	MarkerKind               string `koanf:"marker_kind" mapstructure:"marker_kind"`
	SuppressFixedPortWarning bool   `koanf:"suppress_fixed_port_warning" mapstructure:"suppress_fixed_port_warning"`
}

type EnvelopeConfig struct {
	DefaultSink string `koanf:"default_sink" mapstructure:"default_sink"`
}

type Config struct {
	ServiceName string         `koanf:"service_name" mapstructure:"service_name"`
	Guard       GuardConfig    `koanf:"guard" mapstructure:"guard"`
	Envelope    EnvelopeConfig `koanf:"envelope" mapstructure:"envelope"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "contracts",
		Guard: GuardConfig{
			ComponentKind: ComponentMockServerConfig,
			MarkerKind:    MarkerAutoConfigureMockServer,
		},
		Envelope: EnvelopeConfig{},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Guard.ComponentKind) == "" {
		return fmt.Errorf("core: guard.component_kind is required")
	}
	if strings.TrimSpace(c.Guard.MarkerKind) == "" {
		return fmt.Errorf("core: guard.marker_kind is required")
	}
	return nil
}
