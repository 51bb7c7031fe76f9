package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration for CaseStrainer.
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Queue       QueueConfig   `toml:"queue"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Pipeline    PipelineConfig `toml:"pipeline"`
	Verify      VerifyConfig  `toml:"verify"`
	Cluster     ClusterConfig `toml:"cluster"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type QueueConfig struct {
	PollInterval      string `toml:"poll_interval"`      // e.g. "1s" - how often workers poll for messages
	VisibilityTimeout string `toml:"visibility_timeout"` // e.g. "5m" - message visibility timeout for redelivery
	MaxReceive        int    `toml:"max_receive"`        // max times a message can be received before dead-letter
	QueueName         string `toml:"queue_name"`         // goqite queue name
	DBPath            string `toml:"db_path"`            // sqlite file backing the goqite queue
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration.
type BadgerConfig struct {
	Path           string `toml:"path"`             // database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // delete database on startup, for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // time format for logs (default: "15:04:05.000")
}

// PipelineConfig holds the sync/async dispatch and worker pool knobs
// (spec.md §6.5).
type PipelineConfig struct {
	SyncThresholdBytes  int    `toml:"sync_threshold_bytes"`   // default 5120
	ForceMode           string `toml:"force_mode"`             // "sync", "async", or unset
	WorkerCount         int    `toml:"worker_count"`            // default 3
	PerCallTimeoutMs    int    `toml:"per_call_timeout_ms"`     // default 5000
	PerCitationBudgetMs int    `toml:"per_citation_budget_ms"`  // default 30000
	HeartbeatIntervalMs int    `toml:"heartbeat_interval_ms"`   // default 5000
	StuckThresholdMs    int    `toml:"stuck_threshold_ms"`      // default 300000
	ResultTTLSeconds    int    `toml:"result_ttl_s"`            // default 86400
	ConvertFootnotes    bool   `toml:"convert_footnotes"`       // default true
	MaxUploadBytes      int64  `toml:"max_upload_bytes"`        // default 26214400 (25 MiB)
}

// VerifyConfig holds the citation-verification knobs (spec.md §6.5).
type VerifyConfig struct {
	Enabled             bool                `toml:"verification_enabled"`  // default true
	ReporterAliases     map[string]string   `toml:"reporter_aliases"`      // reporter label -> canonical label
	FallbackSourceOrder []string            `toml:"fallback_source_order"` // ordered list of HTML source names
	JurisdictionMap     map[string][]string `toml:"jurisdiction_map"`      // reporter family -> jurisdiction codes
	YearToleranceVerify int                 `toml:"year_tolerance_verify"` // default 5

	// StructuredAPI configures the Strategy 1/2 structured citation
	// lookup collaborator (spec §4.6). BaseURL/Token default to the
	// public CourtListener citation-lookup API; Token may be blank for
	// anonymous, rate-limited access.
	StructuredAPIBaseURL   string  `toml:"structured_api_base_url"`
	StructuredAPIToken     string  `toml:"structured_api_token"`
	StructuredAPIRateLimit float64 `toml:"structured_api_rate_limit"` // requests/sec, default 5
}

// ClusterConfig holds the citation-clustering knobs (spec.md §6.5).
type ClusterConfig struct {
	NameSimilarityThreshold float64 `toml:"name_similarity_threshold"` // default 0.6
	YearToleranceCluster    int     `toml:"year_tolerance_cluster"`    // default 2
	MaxSpanChars            int     `toml:"cluster_max_span_chars"`    // default 2000
	ProximityChars          int     `toml:"cluster_proximity_chars"`   // default 200
}

// NewDefaultConfig creates a configuration with the default values from
// spec.md §6.5.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Queue: QueueConfig{
			PollInterval:      "1s",
			VisibilityTimeout: "5m",
			MaxReceive:        3,
			QueueName:         "casestrainer",
			DBPath:            "./data/queue.db",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05.000",
		},
		Pipeline: PipelineConfig{
			SyncThresholdBytes:  5120,
			ForceMode:           "",
			WorkerCount:         3,
			PerCallTimeoutMs:    5000,
			PerCitationBudgetMs: 30000,
			HeartbeatIntervalMs: 5000,
			StuckThresholdMs:    300000,
			ResultTTLSeconds:    86400,
			ConvertFootnotes:    true,
			MaxUploadBytes:      26214400,
		},
		Verify: VerifyConfig{
			Enabled: true,
			ReporterAliases: map[string]string{},
			FallbackSourceOrder: []string{
				"justia", "leagle", "casetext", "cornell_lii",
				"findlaw", "casemine", "vlex", "openjurist",
				"google_scholar",
			},
			JurisdictionMap:        defaultJurisdictionMap(),
			YearToleranceVerify:    5,
			StructuredAPIBaseURL:   "https://www.courtlistener.com/api/rest/v4",
			StructuredAPIToken:     "",
			StructuredAPIRateLimit: 5,
		},
		Cluster: ClusterConfig{
			NameSimilarityThreshold: 0.6,
			YearToleranceCluster:    2,
			MaxSpanChars:            2000,
			ProximityChars:          200,
		},
	}
}

// defaultJurisdictionMap gives each reporter family its allowed set of
// jurisdiction codes (spec.md §4.6). Keys are citation.ReporterFamily
// string values.
func defaultJurisdictionMap() map[string][]string {
	return map[string][]string{
		"pacific":    {"WA", "OR", "CA", "MT", "ID", "NV", "AZ", "HI", "AK", "KS", "CO", "WY", "NM", "UT"},
		"northwest":  {"IA", "MI", "MN", "NE", "ND", "SD", "WI"},
		"northeast":  {"IL", "IN", "MA", "NY", "OH"},
		"atlantic":   {"CT", "DE", "ME", "MD", "NH", "NJ", "PA", "RI", "VT", "DC"},
		"south":      {"AL", "FL", "LA", "MS"},
		"southeast":  {"GA", "NC", "SC", "VA", "WV"},
		"southwest":  {"AR", "KY", "MO", "TN", "TX"},
		"washington": {"WA"},
		"us":         {"US"},
		"sct":        {"US"},
		"led":        {"US"},
		"fed":        {"US"},
		"fsupp":      {"US"},
		"frd":        {"US"},
		"br":         {"US"},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files, merged in order.
// Later files override earlier files. Priority: CLI flags > env vars >
// last config file > ... > first config file > defaults.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies CASESTRAINER_* environment variable overrides.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CASESTRAINER_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("CASESTRAINER_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CASESTRAINER_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if pollInterval := os.Getenv("CASESTRAINER_QUEUE_POLL_INTERVAL"); pollInterval != "" {
		config.Queue.PollInterval = pollInterval
	}
	if maxReceive := os.Getenv("CASESTRAINER_QUEUE_MAX_RECEIVE"); maxReceive != "" {
		if mr, err := strconv.Atoi(maxReceive); err == nil {
			config.Queue.MaxReceive = mr
		}
	}

	if badgerPath := os.Getenv("CASESTRAINER_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("CASESTRAINER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("CASESTRAINER_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("CASESTRAINER_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			trimmed := strings.TrimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if workerCount := os.Getenv("CASESTRAINER_WORKER_COUNT"); workerCount != "" {
		if wc, err := strconv.Atoi(workerCount); err == nil {
			config.Pipeline.WorkerCount = wc
		}
	}
	if forceMode := os.Getenv("CASESTRAINER_FORCE_MODE"); forceMode != "" {
		config.Pipeline.ForceMode = forceMode
	}
	if syncThreshold := os.Getenv("CASESTRAINER_SYNC_THRESHOLD_BYTES"); syncThreshold != "" {
		if st, err := strconv.Atoi(syncThreshold); err == nil {
			config.Pipeline.SyncThresholdBytes = st
		}
	}

	if verifyEnabled := os.Getenv("CASESTRAINER_VERIFICATION_ENABLED"); verifyEnabled != "" {
		if ve, err := strconv.ParseBool(verifyEnabled); err == nil {
			config.Verify.Enabled = ve
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// PerCallTimeout returns the configured per-external-call timeout as a
// time.Duration.
func (c *Config) PerCallTimeout() time.Duration {
	return time.Duration(c.Pipeline.PerCallTimeoutMs) * time.Millisecond
}

// PerCitationBudget returns the configured per-citation verification
// budget as a time.Duration.
func (c *Config) PerCitationBudget() time.Duration {
	return time.Duration(c.Pipeline.PerCitationBudgetMs) * time.Millisecond
}

// HeartbeatInterval returns the configured job heartbeat interval.
func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.Pipeline.HeartbeatIntervalMs) * time.Millisecond
}

// StuckThreshold returns the configured stuck-job detection threshold.
func (c *Config) StuckThreshold() time.Duration {
	return time.Duration(c.Pipeline.StuckThresholdMs) * time.Millisecond
}

// ResultTTL returns the configured result retention duration.
func (c *Config) ResultTTL() time.Duration {
	return time.Duration(c.Pipeline.ResultTTLSeconds) * time.Second
}

// IsProduction returns true if the environment is set to production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// DeepCloneConfig creates a deep copy of the Config struct.
func DeepCloneConfig(c *Config) *Config {
	if c == nil {
		return nil
	}

	clone := *c

	if len(c.Logging.Output) > 0 {
		clone.Logging.Output = make([]string, len(c.Logging.Output))
		copy(clone.Logging.Output, c.Logging.Output)
	}

	if len(c.Verify.ReporterAliases) > 0 {
		clone.Verify.ReporterAliases = make(map[string]string, len(c.Verify.ReporterAliases))
		for k, v := range c.Verify.ReporterAliases {
			clone.Verify.ReporterAliases[k] = v
		}
	}

	if len(c.Verify.FallbackSourceOrder) > 0 {
		clone.Verify.FallbackSourceOrder = make([]string, len(c.Verify.FallbackSourceOrder))
		copy(clone.Verify.FallbackSourceOrder, c.Verify.FallbackSourceOrder)
	}

	if len(c.Verify.JurisdictionMap) > 0 {
		clone.Verify.JurisdictionMap = make(map[string][]string, len(c.Verify.JurisdictionMap))
		for k, v := range c.Verify.JurisdictionMap {
			cp := make([]string, len(v))
			copy(cp, v)
			clone.Verify.JurisdictionMap[k] = cp
		}
	}

	return &clone
}
