package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// APIConfig describes the remote product and order API.
type APIConfig struct {
	BaseURL string        `koanf:"baseurl"`
	Timeout time.Duration `koanf:"timeout"`
	Paths   APIPaths      `koanf:"paths"`
}

type APIPaths struct {
	Products string `koanf:"products"`
	Orders   string `koanf:"orders"`
	AddOrder string `koanf:"addorder"`
}

const (
	defaultProductsPath = "/getProductApi.php"
	defaultOrdersPath   = "/getOrdersApi.php"
)

// String returns a string representation of the API configuration.
func (c *APIConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Remote API ---\n")
	b.WriteString(fmt.Sprintf("  baseurl: %s\n", c.BaseURL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  paths.products: %s\n", c.Paths.Products))
	b.WriteString(fmt.Sprintf("  paths.orders: %s\n", c.Paths.Orders))
	b.WriteString(fmt.Sprintf("  paths.addorder: %s\n", c.Paths.AddOrder))
	return b.String()
}

// Validate checks the base URL and fills in the default paths.
func (c *APIConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("api base URL is not configured")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base URL must use http or https: %q", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("api timeout must not be negative")
	}
	if c.Paths.Products == "" {
		c.Paths.Products = defaultProductsPath
	}
	if c.Paths.Orders == "" {
		c.Paths.Orders = defaultOrdersPath
	}
	if c.Paths.AddOrder == "" {
		c.Paths.AddOrder = c.Paths.Orders
	}
	return nil
}
