// Package config builds the immutable run configuration from CLI flags,
// .env values, and an optional YAML file, replacing the source's global
// mutable state with a single Config value that cmd/proxyscan resolves
// once and reads when wiring the prober and batching driver (spec.md §9).
// Layering follows
// felipecampolina-FCReverseProxy/internal/config (env-backed Load()) and
// its internal/log/log.go convention of an optional configs/config.yaml
// overlay parsed with gopkg.in/yaml.v3.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects the proxy family and validation depth.
type Mode string

const (
	ModeHTTPEcho   Mode = "http-echo"
	ModeHTTPLoose  Mode = "http-loose"
	ModeSocks5Fast Mode = "socks5-fast"
	ModeSocks5Deep Mode = "socks5-deep"
)

const (
	defaultTargetURL       = "http://httpbin.org/ip"
	defaultTimeoutSeconds  = 10
	defaultWorkers         = 100
	defaultOutput          = "valid_proxies.txt"
	defaultMode            = ModeHTTPEcho
	defaultReferenceTarget = "example.com:80"
	maxSensibleWorkers     = 1000
)

// fileOverlay mirrors the optional YAML config file shape; it only fills
// fields that no flag or env var set, and any field left unset in the file
// falls back to the built-in default applied afterwards.
type fileOverlay struct {
	ProxiesFile   *string `yaml:"proxies_file"`
	CredsFile     *string `yaml:"creds_file"`
	TargetURL     *string `yaml:"target_url"`
	Timeout       *int    `yaml:"timeout"`
	Workers       *int    `yaml:"workers"`
	Output        *string `yaml:"output"`
	ChunkSize     *int    `yaml:"chunk_size"`
	Mode          *string `yaml:"mode"`
	MetricsAddr   *string `yaml:"metrics_addr"`
	StatsAddr     *string `yaml:"stats_addr"`
	ReferenceHost *string `yaml:"reference_target"`
}

// Config is the fully resolved, immutable run configuration.
type Config struct {
	ProxiesFile     string
	CredsFile       string
	TargetURL       string
	Timeout         time.Duration
	Workers         int
	Output          string
	ChunkSize       int
	Mode            Mode
	MetricsAddr     string
	StatsAddr       string
	ReferenceTarget string
}

// Load parses CLI flags (from args, typically os.Args[1:]) layered over
// any values already present in the process environment (populated by
// godotenv.Load in cmd/proxyscan before Load is called) and an optional
// --config YAML file. Precedence: flag > env > YAML file > built-in
// default.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("proxyscan", flag.ContinueOnError)

	proxiesFile := fs.String("proxies-file", envOr("PROXYSCAN_PROXIES_FILE", ""), "path to endpoint source (omit to read stdin)")
	credsFile := fs.String("creds-file", envOr("PROXYSCAN_CREDS_FILE", ""), "path to credential source (omit for unauthenticated only)")
	targetURL := fs.String("target-url", envOr("PROXYSCAN_TARGET_URL", ""), "HTTP validation URL")
	timeoutSeconds := fs.Int("timeout", envOrInt("PROXYSCAN_TIMEOUT", 0), "per-I/O timeout in whole seconds")
	workers := fs.Int("workers", envOrInt("PROXYSCAN_WORKERS", 0), "concurrent worker count")
	output := fs.String("output", envOr("PROXYSCAN_OUTPUT", ""), "output file path")
	chunkSize := fs.Int("chunk-size", envOrInt("PROXYSCAN_CHUNK_SIZE", 0), "lines per batch window (0 = no chunking)")
	mode := fs.String("mode", envOr("PROXYSCAN_MODE", ""), "http-echo, http-loose, socks5-fast, or socks5-deep")
	metricsAddr := fs.String("metrics-addr", envOr("PROXYSCAN_METRICS_ADDR", ""), "optional address to serve Prometheus /metrics on")
	statsAddr := fs.String("stats-addr", envOr("PROXYSCAN_STATS_ADDR", ""), "optional address to serve the live stats websocket on")
	referenceTarget := fs.String("reference-target", envOr("PROXYSCAN_REFERENCE_TARGET", ""), "domain:port used by the SOCKS5 deep CONNECT check")
	configPath := fs.String("config", envOr("PROXYSCAN_CONFIG", ""), "optional YAML config file overlay")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		ProxiesFile:     *proxiesFile,
		CredsFile:       *credsFile,
		TargetURL:       *targetURL,
		Timeout:         durationOrZero(*timeoutSeconds),
		Workers:         *workers,
		Output:          *output,
		ChunkSize:       *chunkSize,
		Mode:            Mode(*mode),
		MetricsAddr:     *metricsAddr,
		StatsAddr:       *statsAddr,
		ReferenceTarget: *referenceTarget,
	}

	if *configPath != "" {
		if err := applyOverlay(cfg, *configPath); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: cannot read %q: %w", path, err)
	}
	var ov fileOverlay
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return fmt.Errorf("config: cannot parse %q: %w", path, err)
	}

	if cfg.ProxiesFile == "" && ov.ProxiesFile != nil {
		cfg.ProxiesFile = *ov.ProxiesFile
	}
	if cfg.CredsFile == "" && ov.CredsFile != nil {
		cfg.CredsFile = *ov.CredsFile
	}
	if cfg.TargetURL == "" && ov.TargetURL != nil {
		cfg.TargetURL = *ov.TargetURL
	}
	if cfg.Timeout == 0 && ov.Timeout != nil {
		cfg.Timeout = time.Duration(*ov.Timeout) * time.Second
	}
	if cfg.Workers == 0 && ov.Workers != nil {
		cfg.Workers = *ov.Workers
	}
	if cfg.Output == "" && ov.Output != nil {
		cfg.Output = *ov.Output
	}
	if cfg.ChunkSize == 0 && ov.ChunkSize != nil {
		cfg.ChunkSize = *ov.ChunkSize
	}
	if cfg.Mode == "" && ov.Mode != nil {
		cfg.Mode = Mode(*ov.Mode)
	}
	if cfg.MetricsAddr == "" && ov.MetricsAddr != nil {
		cfg.MetricsAddr = *ov.MetricsAddr
	}
	if cfg.StatsAddr == "" && ov.StatsAddr != nil {
		cfg.StatsAddr = *ov.StatsAddr
	}
	if cfg.ReferenceTarget == "" && ov.ReferenceHost != nil {
		cfg.ReferenceTarget = *ov.ReferenceHost
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.TargetURL == "" {
		cfg.TargetURL = defaultTargetURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeoutSeconds * time.Second
	}
	if cfg.Workers == 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Output == "" {
		cfg.Output = defaultOutput
	}
	if cfg.Mode == "" {
		cfg.Mode = defaultMode
	}
	if cfg.ReferenceTarget == "" {
		cfg.ReferenceTarget = defaultReferenceTarget
	}
}

// Validate checks input-fatal conditions (spec.md §7): bad CLI option,
// nonsensical worker/timeout/chunk values.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeHTTPEcho, ModeHTTPLoose, ModeSocks5Fast, ModeSocks5Deep:
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be greater than 0")
	}
	if c.Workers < 1 {
		return errors.New("config: workers must be at least 1")
	}
	if c.Workers > maxSensibleWorkers {
		return fmt.Errorf("config: workers %d exceeds the sensible upper bound %d (raise the host fd limit first)", c.Workers, maxSensibleWorkers)
	}
	if c.ChunkSize < 0 {
		return errors.New("config: chunk-size must not be negative")
	}
	if c.Output == "" {
		return errors.New("config: output path must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return fallback
	}
	return n
}

func durationOrZero(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
