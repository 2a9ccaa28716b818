package config

import (
	"time"

	"github.com/muurk/wifid/internal/services"
	"github.com/muurk/wifid/internal/settings"
)

// CurrentVersion is the only supported configuration version.
const CurrentVersion = 1

// Config represents the entire daemon configuration file.
type Config struct {
	Version int `yaml:"version"`

	// DataDir holds the settings database, the served file store and staged updates
	DataDir   string `yaml:"data_dir"`
	Namespace string `yaml:"namespace"`
	LogLevel  string `yaml:"log_level,omitempty"`

	// ListenHost is the address the HTTP front end and update receiver bind to
	ListenHost          string        `yaml:"listen_host"`
	UpdatePort          int           `yaml:"update_port"`
	HTTPShutdownTimeout time.Duration `yaml:"http_shutdown_timeout"`

	// LoopInterval is the period of the device event loop
	LoopInterval time.Duration `yaml:"loop_interval"`

	// Services lists the compiled-in sub-services
	Services []string `yaml:"services"`

	Defaults settings.Defaults `yaml:"defaults"`

	// Networks are the networks visible to the simulated radio
	Networks []Network `yaml:"networks,omitempty"`
}

// Network is one joinable network for the simulated radio.
type Network struct {
	SSID       string `yaml:"ssid"`
	Passphrase string `yaml:"passphrase,omitempty"`
	RSSI       int    `yaml:"rssi"`
}

// KnownServices lists every sub-service name accepted in Services, in start order.
var KnownServices = []string{
	services.NameFilesystem,
	services.NameMDNS,
	services.NameHTTP,
	services.NameUpdate,
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version:             CurrentVersion,
		Namespace:           settings.DefaultNamespace,
		ListenHost:          "",
		UpdatePort:          services.DefaultUpdatePort,
		HTTPShutdownTimeout: services.DefaultShutdownTimeout,
		LoopInterval:        10 * time.Millisecond,
		Services:            append([]string(nil), KnownServices...),
		Defaults:            settings.FactoryDefaults(),
	}
}

// ServiceEnabled reports whether the named sub-service is compiled in.
func (c *Config) ServiceEnabled(name string) bool {
	for _, s := range c.Services {
		if s == name {
			return true
		}
	}
	return false
}
