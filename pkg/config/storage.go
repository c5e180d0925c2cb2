package config

import (
	"fmt"
	"strings"
)

const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// StorageConfig selects the key-value backend used to persist the cart.
type StorageConfig struct {
	Backend  string         `koanf:"backend"`
	File     FileConfig     `koanf:"file"`
	Database DatabaseConfig `koanf:"database"`
}

type FileConfig struct {
	Dir string `koanf:"dir"`
}

// String returns a string representation of the storage configuration.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  backend: %s\n", c.Backend))
	switch c.Backend {
	case StorageFile:
		b.WriteString(fmt.Sprintf("  file.dir: %s\n", c.File.Dir))
	case StoragePostgres:
		b.WriteString(c.Database.String())
	}
	return b.String()
}

func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case "":
		c.Backend = StorageMemory
		return nil
	case StorageMemory:
		return nil
	case StorageFile:
		if c.File.Dir == "" {
			return fmt.Errorf("storage.file.dir is not configured")
		}
		return nil
	case StoragePostgres:
		return c.Database.Validate()
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Backend)
	}
}
