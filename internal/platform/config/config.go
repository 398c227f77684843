// Package config loads process configuration: defaults, then an optional
// TOML file named by ANCHOR_CONFIG, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	credentialModels "didanchor/internal/credential/models"
	"didanchor/pkg/domain"
	pstrings "didanchor/pkg/platform/strings"
)

// Ledger backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendBolt     = "bolt"
)

// Config is the full process configuration.
type Config struct {
	Server   Server         `toml:"server"`
	Ledger   Ledger         `toml:"ledger"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	Bolt     BoltConfig     `toml:"bolt"`
	Kafka    KafkaConfig    `toml:"kafka"`
	Policy   PolicyConfig   `toml:"policy"`
	Verifier VerifierConfig `toml:"verifier"`
	Log      LogConfig      `toml:"log"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `toml:"addr"`
	JWTSigningKey   string        `toml:"jwt_signing_key"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Ledger selects the state store and names the directory admin.
type Ledger struct {
	Backend string `toml:"backend"`
	// Admin is the base58 Ed25519 key that may manage issuers and revoke DIDs.
	Admin string `toml:"admin"`
	// IndexerInterval is how often the in-process indexer tails the event log.
	IndexerInterval time.Duration `toml:"indexer_interval"`
}

// PostgresConfig configures the Postgres ledger store.
type PostgresConfig struct {
	URL          string        `toml:"url"`
	MaxOpenConns int           `toml:"max_open_conns"`
	TxTimeout    time.Duration `toml:"tx_timeout"`
}

// RedisConfig configures the Redis ledger store.
type RedisConfig struct {
	URL          string        `toml:"url"`
	KeyPrefix    string        `toml:"key_prefix"`
	PoolSize     int           `toml:"pool_size"`
	MinIdleConns int           `toml:"min_idle_conns"`
	DialTimeout  time.Duration `toml:"dial_timeout"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// BoltConfig configures the embedded bbolt ledger store.
type BoltConfig struct {
	Path    string        `toml:"path"`
	Timeout time.Duration `toml:"timeout"`
}

// KafkaConfig configures the event relay. No brokers disables it.
type KafkaConfig struct {
	Brokers           []string      `toml:"brokers"`
	Topic             string        `toml:"topic"`
	Partitions        int32         `toml:"partitions"`
	ReplicationFactor int16         `toml:"replication_factor"`
	BatchSize         int           `toml:"batch_size"`
	PollInterval      time.Duration `toml:"poll_interval"`
}

// Enabled reports whether the relay should run.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// PolicyConfig mirrors credential/models.Policy.
type PolicyConfig struct {
	MinimumAge                        uint32        `toml:"minimum_age"`
	MinimumKYCLevel                   uint32        `toml:"minimum_kyc_level"`
	RejectSelfAttestationZK           bool          `toml:"reject_self_attestation_zk"`
	RejectSelfAttestationCommitment   bool          `toml:"reject_self_attestation_commitment"`
	RequireTrustedIssuerForCommitment bool          `toml:"require_trusted_issuer_for_commitment"`
	MaxProofAge                       time.Duration `toml:"max_proof_age"`
	MaxClockSkew                      time.Duration `toml:"max_clock_skew"`
}

// Policy converts the config into the verifier policy.
func (p PolicyConfig) Policy() credentialModels.Policy {
	return credentialModels.Policy{
		MinimumAge:                        p.MinimumAge,
		MinimumKYCLevel:                   p.MinimumKYCLevel,
		RejectSelfAttestationZK:           p.RejectSelfAttestationZK,
		RejectSelfAttestationCommitment:   p.RejectSelfAttestationCommitment,
		RequireTrustedIssuerForCommitment: p.RequireTrustedIssuerForCommitment,
		MaxProofAge:                       p.MaxProofAge,
		MaxClockSkew:                      p.MaxClockSkew,
	}
}

// VerifierConfig lists the proving-service keys (base58) whose signatures
// are accepted as proofs. Empty disables the proof path.
type VerifierConfig struct {
	Keys []string `toml:"keys"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the development configuration.
func Default() Config {
	policy := credentialModels.DefaultPolicy()
	return Config{
		Server: Server{
			Addr:            ":8080",
			JWTSigningKey:   "dev-secret-key-change-in-production",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Ledger: Ledger{
			Backend:         BackendMemory,
			IndexerInterval: time.Second,
		},
		Postgres: PostgresConfig{
			MaxOpenConns: 10,
			TxTimeout:    5 * time.Second,
		},
		Redis: RedisConfig{
			KeyPrefix:    "didanchor",
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Bolt: BoltConfig{
			Path:    "didanchor.db",
			Timeout: time.Second,
		},
		Kafka: KafkaConfig{
			Topic:             "didanchor.events",
			Partitions:        1,
			ReplicationFactor: 1,
			BatchSize:         100,
			PollInterval:      time.Second,
		},
		Policy: PolicyConfig{
			MinimumAge:                        policy.MinimumAge,
			MinimumKYCLevel:                   policy.MinimumKYCLevel,
			RejectSelfAttestationZK:           policy.RejectSelfAttestationZK,
			RejectSelfAttestationCommitment:   policy.RejectSelfAttestationCommitment,
			RequireTrustedIssuerForCommitment: policy.RequireTrustedIssuerForCommitment,
			MaxClockSkew:                      policy.MaxClockSkew,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration from defaults, the TOML file at path (if
// any) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv loads the configuration using ANCHOR_CONFIG as the file path.
func FromEnv() (Config, error) {
	return Load(os.Getenv("ANCHOR_CONFIG"))
}

// AdminKey parses the configured admin key.
func (c Config) AdminKey() (domain.PublicKey, error) {
	return domain.ParsePublicKey(c.Ledger.Admin)
}

// VerifierKeys parses the configured proving-service keys.
func (c Config) VerifierKeys() ([]domain.PublicKey, error) {
	keys := make([]domain.PublicKey, 0, len(c.Verifier.Keys))
	for _, raw := range c.Verifier.Keys {
		k, err := domain.ParsePublicKey(raw)
		if err != nil {
			return nil, fmt.Errorf("verifier key %q: %w", raw, err)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Ledger.Admin == "" {
		errs = append(errs, errors.New("ledger admin key is required (ANCHOR_ADMIN_KEY)"))
	} else if _, err := c.AdminKey(); err != nil {
		errs = append(errs, fmt.Errorf("ledger admin key: %w", err))
	}
	switch c.Ledger.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Postgres.URL == "" {
			errs = append(errs, errors.New("postgres backend requires DATABASE_URL"))
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("redis backend requires REDIS_URL"))
		}
	case BackendBolt:
		if c.Bolt.Path == "" {
			errs = append(errs, errors.New("bolt backend requires BOLT_PATH"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend))
	}
	if _, err := c.VerifierKeys(); err != nil {
		errs = append(errs, err)
	}
	if c.Ledger.IndexerInterval <= 0 {
		errs = append(errs, errors.New("indexer interval must be positive"))
	}
	if c.Kafka.Enabled() && c.Kafka.PollInterval <= 0 {
		errs = append(errs, errors.New("kafka poll interval must be positive"))
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka topic is required when brokers are set"))
	}
	return errors.Join(errs...)
}

type lookupFunc func(string) (string, bool)

// applyEnv overlays environment variables. Unset variables keep the file or
// default value.
func (c *Config) applyEnv(lookup lookupFunc) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	list := func(name string, dst *[]string) {
		if v, ok := lookup(name); ok {
			*dst = pstrings.SplitList(v)
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = b
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = d
		}
	}
	integer := func(name string, bits int, set func(int64)) {
		if v, ok := lookup(name); ok && v != "" {
			n, err := strconv.ParseInt(v, 10, bits)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			set(n)
		}
	}

	str("ANCHOR_ADDR", &c.Server.Addr)
	str("JWT_SIGNING_KEY", &c.Server.JWTSigningKey)
	duration("ANCHOR_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)

	str("ANCHOR_LEDGER_BACKEND", &c.Ledger.Backend)
	str("ANCHOR_ADMIN_KEY", &c.Ledger.Admin)
	duration("ANCHOR_INDEXER_INTERVAL", &c.Ledger.IndexerInterval)

	str("DATABASE_URL", &c.Postgres.URL)
	integer("DATABASE_MAX_OPEN_CONNS", 32, func(n int64) { c.Postgres.MaxOpenConns = int(n) })
	duration("DATABASE_TX_TIMEOUT", &c.Postgres.TxTimeout)

	str("REDIS_URL", &c.Redis.URL)
	str("REDIS_KEY_PREFIX", &c.Redis.KeyPrefix)
	integer("REDIS_POOL_SIZE", 32, func(n int64) { c.Redis.PoolSize = int(n) })

	str("BOLT_PATH", &c.Bolt.Path)

	list("KAFKA_BROKERS", &c.Kafka.Brokers)
	str("KAFKA_TOPIC", &c.Kafka.Topic)
	integer("KAFKA_PARTITIONS", 32, func(n int64) { c.Kafka.Partitions = int32(n) })
	integer("KAFKA_REPLICATION_FACTOR", 16, func(n int64) { c.Kafka.ReplicationFactor = int16(n) })

	integer("POLICY_MINIMUM_AGE", 32, func(n int64) { c.Policy.MinimumAge = uint32(n) })
	integer("POLICY_MINIMUM_KYC_LEVEL", 32, func(n int64) { c.Policy.MinimumKYCLevel = uint32(n) })
	boolean("POLICY_REJECT_SELF_ATTESTATION_ZK", &c.Policy.RejectSelfAttestationZK)
	boolean("POLICY_REJECT_SELF_ATTESTATION_COMMITMENT", &c.Policy.RejectSelfAttestationCommitment)
	boolean("POLICY_REQUIRE_TRUSTED_ISSUER_FOR_COMMITMENT", &c.Policy.RequireTrustedIssuerForCommitment)
	duration("POLICY_MAX_PROOF_AGE", &c.Policy.MaxProofAge)
	duration("POLICY_MAX_CLOCK_SKEW", &c.Policy.MaxClockSkew)

	list("VERIFIER_KEYS", &c.Verifier.Keys)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}
