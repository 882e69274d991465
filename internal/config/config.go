// Package config loads the YAML process configuration of sdc-provider.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sdc-protocol/sdc-go/pkg/persistence"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
	"github.com/sdc-protocol/sdc-go/pkg/service"
)

// Defaults applied after decoding.
const (
	DefaultLogLevel     = "info"
	DefaultSnapshotName = "default"
)

// ErrInvalid is returned for configurations that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the process configuration.
type Config struct {
	// Description is the path of the YAML device description.
	Description string `yaml:"description"`

	// SequenceID overrides the MDIB sequence id of a fresh description.
	SequenceID string `yaml:"sequence_id"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// EventLog is the path of the CBOR event log (.sdclog). Optional.
	EventLog string `yaml:"event_log"`

	// Journal is the path of the SQLite invocation journal. Optional.
	Journal string `yaml:"journal"`

	// ReportStream is a file receiving the CBOR encoded reports. Optional.
	ReportStream string `yaml:"report_stream"`

	Snapshot SnapshotConfig `yaml:"snapshot"`
	API      APIConfig      `yaml:"api"`
	Sco      ScoConfig      `yaml:"sco"`

	// Roles lists the role providers in the order they are asked.
	Roles []string `yaml:"roles"`
}

// SnapshotConfig selects the snapshot store. File and Redis are exclusive.
type SnapshotConfig struct {
	File  string       `yaml:"file"`
	Redis *RedisConfig `yaml:"redis"`

	// OnStop saves a snapshot when the provider stops. Defaults to true
	// when a store is configured.
	OnStop *bool `yaml:"on_stop"`
}

// RedisConfig configures the Redis snapshot store.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Name     string        `yaml:"name"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// APIConfig configures the local HTTP surface.
type APIConfig struct {
	// Listen is the listen address. Empty disables the API.
	Listen string `yaml:"listen"`
}

// ScoConfig mirrors the tunable parts of sco.Config.
type ScoConfig struct {
	QueueSize        int           `yaml:"queue_size"`
	AdmissionTimeout time.Duration `yaml:"admission_timeout"`
	StopTimeout      time.Duration `yaml:"stop_timeout"`
	ScoHandle        string        `yaml:"sco_handle"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if len(c.Roles) == 0 {
		c.Roles = service.DefaultRoles()
	}
	if c.Sco.QueueSize == 0 {
		c.Sco.QueueSize = sco.DefaultQueueSize
	}
	if c.Sco.AdmissionTimeout == 0 {
		c.Sco.AdmissionTimeout = sco.DefaultAdmissionTimeout
	}
	if c.Sco.StopTimeout == 0 {
		c.Sco.StopTimeout = sco.DefaultStopTimeout
	}
	if c.Sco.ScoHandle == "" {
		c.Sco.ScoHandle = sco.DefaultScoHandle
	}
	if r := c.Snapshot.Redis; r != nil && r.Name == "" {
		r.Name = DefaultSnapshotName
	}
	if c.Snapshot.OnStop == nil {
		on := c.Snapshot.File != "" || c.Snapshot.Redis != nil
		c.Snapshot.OnStop = &on
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Snapshot.File != "" && c.Snapshot.Redis != nil {
		return fmt.Errorf("%w: snapshot.file and snapshot.redis are exclusive", ErrInvalid)
	}
	if c.Snapshot.Redis != nil && c.Snapshot.Redis.Addr == "" {
		return fmt.Errorf("%w: snapshot.redis.addr is required", ErrInvalid)
	}
	if c.Description == "" && c.Snapshot.File == "" && c.Snapshot.Redis == nil {
		return fmt.Errorf("%w: description is required without a snapshot store", ErrInvalid)
	}
	if c.Sco.QueueSize < 0 || c.Sco.AdmissionTimeout < 0 || c.Sco.StopTimeout < 0 {
		return fmt.Errorf("%w: sco settings must not be negative", ErrInvalid)
	}
	return nil
}

// SnapshotStore builds the configured snapshot store, or nil when none is
// configured.
func (c *Config) SnapshotStore() persistence.Store {
	switch {
	case c.Snapshot.File != "":
		return persistence.NewFileStore(c.Snapshot.File)
	case c.Snapshot.Redis != nil:
		r := c.Snapshot.Redis
		var opts []persistence.RedisOption
		if r.Prefix != "" {
			opts = append(opts, persistence.WithPrefix(r.Prefix))
		}
		if r.TTL > 0 {
			opts = append(opts, persistence.WithTTL(r.TTL))
		}
		return persistence.NewRedisStore(r.Addr, r.Password, r.DB, r.Name, opts...)
	default:
		return nil
	}
}

// ProviderConfig returns the service configuration. Sinks, loggers and
// metrics are left to the caller.
func (c *Config) ProviderConfig() service.ProviderConfig {
	pc := service.DefaultProviderConfig()
	pc.DescriptionPath = c.Description
	pc.SequenceID = c.SequenceID
	pc.Store = c.SnapshotStore()
	pc.SnapshotOnStop = c.Snapshot.OnStop != nil && *c.Snapshot.OnStop
	pc.Roles = append([]string(nil), c.Roles...)
	pc.Sco.QueueSize = c.Sco.QueueSize
	pc.Sco.AdmissionTimeout = c.Sco.AdmissionTimeout
	pc.Sco.StopTimeout = c.Sco.StopTimeout
	pc.Sco.ScoHandle = c.Sco.ScoHandle
	return pc
}
