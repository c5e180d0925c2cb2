// Package config holds the configuration of the storefront service.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	API        config.APIConfig        `koanf:"api"`
	Resilience struct {
		CircuitBreaker config.CircuitBreakerConfig `koanf:"circuitbreaker"`
	} `koanf:"resilience"`
	Storage config.StorageConfig `koanf:"storage"`
	Nats    config.NATSConfig    `koanf:"nats"`
	Store   StoreConfig          `koanf:"store"`
}

// StoreConfig controls how the state store starts.
type StoreConfig struct {
	// InitialNav overrides the default navigation tag.
	InitialNav string `koanf:"initialnav"`
	// Preload fetches products and orders before the servers start.
	Preload bool `koanf:"preload"`
	// RestoreOnStart reads the persisted cart before the servers start.
	RestoreOnStart bool `koanf:"restoreonstart"`
}

func (c *StoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  initialnav: %s\n", c.InitialNav))
	b.WriteString(fmt.Sprintf("  preload: %t\n", c.Preload))
	b.WriteString(fmt.Sprintf("  restoreonstart: %t\n", c.RestoreOnStart))
	return b.String()
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.HTTPServer.Port))
	b.WriteString(fmt.Sprintf("  server.maxHeaderBytes: %d\n", c.HTTPServer.MaxHeaderBytes))
	b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.HTTPServer.Timeout.Read))
	b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.HTTPServer.Timeout.Write))
	b.WriteString(fmt.Sprintf("  server.timeout.idle: %v\n", c.HTTPServer.Timeout.Idle))
	b.WriteString(fmt.Sprintf("  server.timeout.readHeader: %v\n", c.HTTPServer.Timeout.ReadHeader))
	b.WriteString(c.GRPC.String())

	b.WriteString(c.API.String())
	b.WriteString(c.Resilience.CircuitBreaker.String())
	b.WriteString(c.Storage.String())
	b.WriteString(c.Nats.String())
	b.WriteString(c.Store.String())

	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Shutdown.String())

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.GRPC.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.Resilience.CircuitBreaker.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Nats.Validate(); err != nil {
		return err
	}
	return nil
}
