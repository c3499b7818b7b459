package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// BlockSeconds is the length of one recording block before rotation
	BlockSeconds int `json:"block_seconds"`

	// ThumbnailIntervalSeconds is the spacing between preview-frame samples
	// within a block. The first sample is always taken at block start.
	ThumbnailIntervalSeconds int `json:"thumbnail_interval_seconds"`

	// RetentionBudgetSeconds is the cumulative duration of unsaved sessions to
	// keep. Sessions past the budget (newest-first) are pruned after each
	// block is persisted. Saved sessions never count against the budget.
	RetentionBudgetSeconds int `json:"retention_budget_seconds"`

	// CaptureInput is the ffmpeg input arguments for the recording source,
	// e.g. ["-f", "v4l2", "-i", "/dev/video0"].
	CaptureInput []string `json:"capture_input,omitempty"`

	// CaptureFormat is the container format for recorded blocks (ffmpeg -f).
	CaptureFormat string `json:"capture_format,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are ignored.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BlockSeconds:             300,
		ThumbnailIntervalSeconds: 3,
		RetentionBudgetSeconds:   3600,
		CaptureFormat:            "mp4",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.reel.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated,
// except CaptureInput which is replaced wholesale (merging two input argument
// lists would produce a broken command line).
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.BlockSeconds = overlay.BlockSeconds
	if result.BlockSeconds == 0 {
		result.BlockSeconds = base.BlockSeconds
	}

	result.ThumbnailIntervalSeconds = overlay.ThumbnailIntervalSeconds
	if result.ThumbnailIntervalSeconds == 0 {
		result.ThumbnailIntervalSeconds = base.ThumbnailIntervalSeconds
	}

	result.RetentionBudgetSeconds = overlay.RetentionBudgetSeconds
	if result.RetentionBudgetSeconds == 0 {
		result.RetentionBudgetSeconds = base.RetentionBudgetSeconds
	}

	result.CaptureFormat = overlay.CaptureFormat
	if result.CaptureFormat == "" {
		result.CaptureFormat = base.CaptureFormat
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.CaptureInput = overlay.CaptureInput
	if len(result.CaptureInput) == 0 {
		result.CaptureInput = base.CaptureInput
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
