package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/milcalc/internal/config"
	"github.com/iwvelando/milcalc/internal/snapshot"
	"github.com/iwvelando/milcalc/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the calculator API server.
type Config struct {
	Address string `yaml:"address"`
	// MaxUploadSize caps uploaded scenario files and JSON request bodies.
	MaxUploadSize ByteSize             `yaml:"maxUploadSize"`
	Timeouts      Timeouts             `yaml:"timeouts"`
	Logging       config.LoggingConfig `yaml:"logging"`
	// ReferenceData overrides the bundled rate tables.
	ReferenceData string          `yaml:"referenceData"`
	Snapshots     SnapshotsConfig `yaml:"snapshots"`
}

// Timeouts bounds request handling and shutdown.
type Timeouts struct {
	Read     time.Duration `yaml:"read"`
	Write    time.Duration `yaml:"write"`
	Shutdown time.Duration `yaml:"shutdown"`
}

// SnapshotsConfig selects where saved scenarios live.
type SnapshotsConfig struct {
	Backend string                `yaml:"backend"`
	Redis   snapshot.RedisOptions `yaml:"redis"`
}

// UsesRedis reports whether snapshots should be stored in Redis.
func (c *Config) UsesRedis() bool {
	return c.Snapshots.Backend == constants.SnapshotBackendRedis
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Address:       constants.DefaultServerAddress,
		MaxUploadSize: ByteSize(constants.DefaultMaxUploadSizeBytes),
		Timeouts: Timeouts{
			Read:     constants.DefaultReadTimeout,
			Write:    constants.DefaultWriteTimeout,
			Shutdown: constants.DefaultShutdownTimeout,
		},
		Snapshots: SnapshotsConfig{Backend: constants.SnapshotBackendMemory},
	}
}

// LoadConfig loads the server configuration from YAML. A missing file yields
// the defaults; settings left out of the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate fills zeroed settings with defaults and rejects inconsistent ones.
func (c *Config) Validate() error {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.Address) == "" {
		c.Address = defaults.Address
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = defaults.MaxUploadSize
	}
	if c.Timeouts.Read <= 0 {
		c.Timeouts.Read = defaults.Timeouts.Read
	}
	if c.Timeouts.Write <= 0 {
		c.Timeouts.Write = defaults.Timeouts.Write
	}
	if c.Timeouts.Shutdown <= 0 {
		c.Timeouts.Shutdown = defaults.Timeouts.Shutdown
	}

	backend := strings.ToLower(strings.TrimSpace(c.Snapshots.Backend))
	switch backend {
	case "":
		backend = constants.SnapshotBackendMemory
	case constants.SnapshotBackendMemory:
	case constants.SnapshotBackendRedis:
		if strings.TrimSpace(c.Snapshots.Redis.Address) == "" {
			return errors.New("snapshots.redis.address is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown snapshot backend %q (expected %s or %s)",
			c.Snapshots.Backend, constants.SnapshotBackendMemory, constants.SnapshotBackendRedis)
	}
	c.Snapshots.Backend = backend
	return nil
}

// ByteSize is a size in bytes that reads from YAML as "256K", "10MB" or a
// plain number.
type ByteSize int64

// Bytes returns the size as an int64.
func (b ByteSize) Bytes() int64 {
	return int64(b)
}

// UnmarshalYAML parses the scalar with ParseSize.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*b = 0
		return nil
	}
	size, err := ParseSize(raw)
	if err != nil {
		return err
	}
	*b = ByteSize(size)
	return nil
}

var sizeUnits = []struct {
	suffix     string
	multiplier int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"G", 1 << 30},
	{"M", 1 << 20},
	{"K", 1 << 10},
	{"B", 1},
}

// ParseSize converts a byte count with an optional K, M or G suffix (binary
// multiples, case-insensitive) into bytes.
func ParseSize(value string) (int64, error) {
	number := strings.ToUpper(strings.TrimSpace(value))
	multiplier := int64(1)
	for _, unit := range sizeUnits {
		if trimmed, ok := strings.CutSuffix(number, unit.suffix); ok {
			number, multiplier = strings.TrimSpace(trimmed), unit.multiplier
			break
		}
	}

	n, err := strconv.ParseInt(number, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", value)
	}
	if n < 0 {
		return 0, fmt.Errorf("size %q must not be negative", value)
	}
	if n > (1<<63-1)/multiplier {
		return 0, fmt.Errorf("size %q overflows", value)
	}
	return n * multiplier, nil
}
