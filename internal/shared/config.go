package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Render  RenderConfig  `toml:"render"`
	Upload  UploadConfig  `toml:"upload"`
	Storage StorageConfig `toml:"storage"`
	Preview PreviewConfig `toml:"preview"`
}

// BackendConfig contains Vibello backend connection settings.
type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	HeadersPath    string `toml:"headers_path"`
}

// Timeout returns the per-request timeout, defaulting to 30s.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// RenderConfig contains slideshow defaults sent with render requests and the
// status polling cadence.
type RenderConfig struct {
	SlideSeconds   float64 `toml:"slide_seconds"`
	XfadeSeconds   float64 `toml:"xfade_seconds"`
	FPS            int     `toml:"fps"`
	PollIntervalMS int     `toml:"poll_interval_ms"`
}

// PollInterval returns the render status polling cadence, defaulting to 500ms.
func (r RenderConfig) PollInterval() time.Duration {
	if r.PollIntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(r.PollIntervalMS) * time.Millisecond
}

// UploadConfig contains staging limits.
type UploadConfig struct {
	MaxFiles int `toml:"max_files"`
}

// Limit returns the staging cap, defaulting to 25 to match the backend.
func (u UploadConfig) Limit() int {
	if u.MaxFiles <= 0 {
		return 25
	}
	return u.MaxFiles
}

// StorageConfig contains local persistence settings.
type StorageConfig struct {
	DatabasePath string `toml:"database_path"`
	DownloadDir  string `toml:"download_dir"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PreviewConfig contains local preview gallery settings.
type PreviewConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
