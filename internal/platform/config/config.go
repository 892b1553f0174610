// Package config loads service configuration from an optional YAML file with
// environment overrides. Anything the oracle cannot run without fails
// validation at startup instead of surfacing mid-job.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Chain     ChainConfig     `yaml:"chain"`
	AI        AIConfig        `yaml:"ai"`
	IPFS      IPFSConfig      `yaml:"ipfs"`
	Evidence  EvidenceConfig  `yaml:"evidence"`
	Scanner   ScannerConfig   `yaml:"scanner"`
	Queue     QueueConfig     `yaml:"queue"`
	Workers   WorkersConfig   `yaml:"workers"`
	Submitter SubmitterConfig `yaml:"submitter"`
	Audit     AuditConfig     `yaml:"audit"`
}

type ServerConfig struct {
	Addr          string `yaml:"addr"`
	JWTSigningKey string `yaml:"jwt_signing_key"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

type ChainConfig struct {
	RPCEndpoint     string        `yaml:"rpc_endpoint"`
	WSEndpoint      string        `yaml:"ws_endpoint"`
	ContractAddress string        `yaml:"contract_address"`
	OracleAccount   string        `yaml:"oracle_account"`
	CallTimeout     time.Duration `yaml:"call_timeout"`
	ConfirmTimeout  time.Duration `yaml:"confirm_timeout"`
	PollInterval    time.Duration `yaml:"poll_interval"`
}

type AIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	VisionModel string        `yaml:"vision_model"`
	Timeout     time.Duration `yaml:"timeout"`
}

type IPFSConfig struct {
	Gateway      string        `yaml:"gateway"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

type EvidenceConfig struct {
	Backend     string `yaml:"backend"` // memory, postgres or redis
	PostgresDSN string `yaml:"postgres_dsn"`
	RedisURL    string `yaml:"redis_url"`
}

type ScannerConfig struct {
	Pace     time.Duration `yaml:"pace"`
	Interval time.Duration `yaml:"interval"`
}

type QueueConfig struct {
	Capacity int `yaml:"capacity"`
}

type WorkersConfig struct {
	Count int `yaml:"count"`
}

type SubmitterConfig struct {
	Strategy    string        `yaml:"strategy"` // explicit or auto
	MaxAttempts uint64        `yaml:"max_attempts"`
	MaxInterval time.Duration `yaml:"max_interval"`
	Budget      time.Duration `yaml:"budget"`
}

type AuditConfig struct {
	Backend      string   `yaml:"backend"` // memory or postgres
	PostgresDSN  string   `yaml:"postgres_dsn"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
	Buffer       int      `yaml:"buffer"`
}

// Load reads path (when non-empty), applies environment overrides and
// defaults, and validates the result.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Addr, "ORACLE_ADDR")
	setString(&c.Server.JWTSigningKey, "JWT_SIGNING_KEY")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	setString(&c.Chain.RPCEndpoint, "CHAIN_RPC_ENDPOINT")
	setString(&c.Chain.WSEndpoint, "CHAIN_WS_ENDPOINT")
	setString(&c.Chain.ContractAddress, "CHAIN_CONTRACT_ADDRESS")
	setString(&c.Chain.OracleAccount, "CHAIN_ORACLE_ACCOUNT")

	setString(&c.AI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.AI.APIKey, "OPENAI_API_KEY")
	setString(&c.AI.Model, "OPENAI_MODEL")
	setString(&c.AI.VisionModel, "OPENAI_VISION_MODEL")

	setString(&c.IPFS.Gateway, "IPFS_GATEWAY")

	setString(&c.Evidence.Backend, "EVIDENCE_BACKEND")
	setString(&c.Evidence.PostgresDSN, "EVIDENCE_POSTGRES_DSN")
	setString(&c.Evidence.RedisURL, "EVIDENCE_REDIS_URL")

	setString(&c.Submitter.Strategy, "SUBMITTER_STRATEGY")

	setString(&c.Audit.Backend, "AUDIT_BACKEND")
	setString(&c.Audit.PostgresDSN, "AUDIT_POSTGRES_DSN")
	setString(&c.Audit.KafkaTopic, "AUDIT_KAFKA_TOPIC")
	if v := os.Getenv("AUDIT_KAFKA_BROKERS"); v != "" {
		c.Audit.KafkaBrokers = strings.Split(v, ",")
	}

	setInt(&c.Workers.Count, "WORKER_COUNT")
	setInt(&c.Queue.Capacity, "QUEUE_CAPACITY")
	setDuration(&c.Scanner.Pace, "SCANNER_PACE")
	setDuration(&c.Scanner.Interval, "SCANNER_INTERVAL")
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8090"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Chain.CallTimeout <= 0 {
		c.Chain.CallTimeout = 15 * time.Second
	}
	if c.Chain.ConfirmTimeout <= 0 {
		c.Chain.ConfirmTimeout = 2 * time.Minute
	}
	if c.Chain.PollInterval <= 0 {
		c.Chain.PollInterval = 2 * time.Second
	}
	if c.AI.Model == "" {
		c.AI.Model = "gpt-4o-mini"
	}
	if c.AI.VisionModel == "" {
		c.AI.VisionModel = "gpt-4o"
	}
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = 60 * time.Second
	}
	if c.IPFS.ProbeTimeout <= 0 {
		c.IPFS.ProbeTimeout = 10 * time.Second
	}
	if c.Evidence.Backend == "" {
		c.Evidence.Backend = "memory"
	}
	if c.Scanner.Pace == 0 {
		c.Scanner.Pace = 2 * time.Second
	}
	if c.Queue.Capacity <= 0 {
		c.Queue.Capacity = 256
	}
	if c.Workers.Count <= 0 {
		c.Workers.Count = 2
	}
	if c.Submitter.Strategy == "" {
		c.Submitter.Strategy = "explicit"
	}
	if c.Audit.Backend == "" {
		c.Audit.Backend = "memory"
	}
	if c.Audit.KafkaTopic == "" {
		c.Audit.KafkaTopic = "oracle.audit"
	}
}

// Validate enforces the configuration the oracle cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.Chain.RPCEndpoint == "" {
		missing = append(missing, "chain.rpc_endpoint")
	}
	if c.Chain.ContractAddress == "" {
		missing = append(missing, "chain.contract_address")
	}
	if c.Chain.OracleAccount == "" {
		missing = append(missing, "chain.oracle_account")
	}
	if c.AI.APIKey == "" {
		missing = append(missing, "ai.api_key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	switch c.Evidence.Backend {
	case "memory":
	case "postgres":
		if c.Evidence.PostgresDSN == "" {
			return fmt.Errorf("evidence.postgres_dsn required for postgres backend")
		}
	case "redis":
		if c.Evidence.RedisURL == "" {
			return fmt.Errorf("evidence.redis_url required for redis backend")
		}
	default:
		return fmt.Errorf("unknown evidence backend %q", c.Evidence.Backend)
	}

	switch c.Audit.Backend {
	case "memory":
	case "postgres":
		if c.Audit.PostgresDSN == "" {
			return fmt.Errorf("audit.postgres_dsn required for postgres backend")
		}
	default:
		return fmt.Errorf("unknown audit backend %q", c.Audit.Backend)
	}

	switch c.Submitter.Strategy {
	case "explicit", "auto":
	default:
		return fmt.Errorf("unknown submitter strategy %q", c.Submitter.Strategy)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
