package model

import "time"

// Config is the full runtime configuration tree.
// Hierarchy: CLI flags > CROSSCHECK_* env vars > config file > defaults.
type Config struct {
	HTTP         HTTPConfig       `yaml:"http" json:"http"`
	Cache        CacheConfig      `yaml:"cache" json:"cache"`
	Archive      ArchiveConfig    `yaml:"archive" json:"archive"`
	Concurrency  Concurrency      `yaml:"concurrency" json:"concurrency"`
	RateLimiting RateLimiting     `yaml:"rate_limiting" json:"rate_limiting"`
	Verify       VerifyConfig     `yaml:"verify" json:"verify"`
	Judge        JudgeConfig      `yaml:"judge" json:"judge"`
	Output       OutputConfig     `yaml:"output" json:"output"`
	Checkpoint   CheckpointConfig `yaml:"checkpoint" json:"checkpoint"`
}

// HTTPConfig controls the retrieval HTTP client.
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	RespectRobots bool          `yaml:"respect_robots" json:"respect_robots"`
}

// CacheConfig controls the layered lookup cache (wayback index, robots).
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`
}

// ArchiveConfig controls the on-disk source archive.
type ArchiveConfig struct {
	Dir        string `yaml:"dir" json:"dir"`
	ForceFetch bool   `yaml:"force_fetch" json:"force_fetch"`
	MinTextLen int    `yaml:"min_text_len" json:"min_text_len"`
}

// Concurrency bounds the worker pool.
type Concurrency struct {
	Workers int `yaml:"workers" json:"workers"`
}

// RateLimiting is the per-origin serialization policy: requests to one host
// are spaced by MinDelay; distinct hosts proceed concurrently.
type RateLimiting struct {
	MinDelay time.Duration `yaml:"min_delay" json:"min_delay"`
	Burst    int           `yaml:"burst" json:"burst"`
}

// VerifyConfig exposes the verdict thresholds as policy knobs.
type VerifyConfig struct {
	VerifiedMin    int `yaml:"verified_min" json:"verified_min"`
	LikelyValidMin int `yaml:"likely_valid_min" json:"likely_valid_min"`
	WeakMatchMin   int `yaml:"weak_match_min" json:"weak_match_min"`
}

// Verdict maps a 0-100 score onto the configured verdict bands.
func (v VerifyConfig) VerdictFor(score int) Verdict {
	switch {
	case score >= v.VerifiedMin:
		return VerdictVerified
	case score >= v.LikelyValidMin:
		return VerdictLikelyValid
	case score >= v.WeakMatchMin:
		return VerdictWeakMatch
	default:
		return VerdictNoMatch
	}
}

// JudgeConfig configures the external judge capability. Empty Model or
// APIKey leaves the judge disabled; verification then runs mechanical-only.
type JudgeConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"-" json:"-"`
	BaseURL   string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Dir     string `yaml:"dir" json:"dir"`
	Verbose bool   `yaml:"verbose" json:"verbose"`
	Reset   bool   `yaml:"reset" json:"reset"`
}

// CheckpointConfig controls resumable runs.
type CheckpointConfig struct {
	Path   string `yaml:"path" json:"path"`
	Resume bool   `yaml:"resume" json:"resume"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".crosscheck-cache",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Archive: ArchiveConfig{
			Dir:        "sources",
			MinTextLen: 500,
		},
		Concurrency: Concurrency{
			Workers: 8,
		},
		RateLimiting: RateLimiting{
			MinDelay: time.Second,
			Burst:    1,
		},
		Verify: VerifyConfig{
			VerifiedMin:    70,
			LikelyValidMin: 50,
			WeakMatchMin:   30,
		},
		Judge: JudgeConfig{
			Enabled:   false,
			Model:     "gpt-4o-mini",
			Timeout:   60,
			MaxTokens: 2000,
		},
		Output: OutputConfig{
			Dir: "reports",
		},
		Checkpoint: CheckpointConfig{
			Path: ".crosscheck-checkpoint.json",
		},
	}
}
