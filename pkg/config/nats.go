package config

import (
	"fmt"
	"strings"
	"time"
)

// NATSConfig configures event publishing. An empty URL disables it.
type NATSConfig struct {
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// Enabled reports whether a NATS server is configured.
func (c *NATSConfig) Enabled() bool {
	return c.Url != ""
}

// String returns a string representation of the NATS configuration.
func (c *NATSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", c.Url))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("nats dial timeout is not configured")
	}
	return nil
}
