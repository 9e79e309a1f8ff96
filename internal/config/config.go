package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Rorical/RoriVoice/internal/detection"
)

const (
	homeEnv     = "RORIVOICE_HOME"
	endpointEnv = "RORIVOICE_ENDPOINT"
	apiKeyEnv   = "RORIVOICE_API_KEY"

	DefaultProfileName = "default"
)

type Profile struct {
	Endpoint    string   `yaml:"endpoint"`
	APIKey      string   `yaml:"api_key,omitempty"`
	Language    string   `yaml:"language"`
	AudioFormat string   `yaml:"audio_format"`
	Timeout     Duration `yaml:"timeout"`
}

type PolicyConfig struct {
	MinBase64Length      int  `yaml:"min_base64_length"`
	MaxBase64Length      int  `yaml:"max_base64_length"`
	RequireAPIKey        bool `yaml:"require_api_key"`
	RequireSuccessStatus bool `yaml:"require_success_status"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

type Config struct {
	ActiveProfile string             `yaml:"active_profile"`
	Profiles      map[string]Profile `yaml:"profiles"`
	Policy        PolicyConfig       `yaml:"policy"`
	Log           LogConfig          `yaml:"log"`

	path           string
	currentProfile *Profile
}

func DefaultProfile() Profile {
	return Profile{
		Endpoint:    detection.DefaultEndpoint,
		Language:    detection.DefaultLanguage,
		AudioFormat: detection.DefaultAudioFormat,
		Timeout:     Duration(detection.DefaultTimeout),
	}
}

func Default() Config {
	p := detection.DefaultPolicy()
	return Config{
		ActiveProfile: DefaultProfileName,
		Profiles: map[string]Profile{
			DefaultProfileName: DefaultProfile(),
		},
		Policy: PolicyConfig{
			MinBase64Length:      p.MinBase64Length,
			MaxBase64Length:      p.MaxBase64Length,
			RequireAPIKey:        p.RequireAPIKey,
			RequireSuccessStatus: p.RequireSuccessStatus,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads the user's config file, creating it with defaults on
// first use.
func LoadConfig() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return LoadFile(configPath)
}

// LoadFile reads the config at path, creating it when missing.
func LoadFile(configPath string) (*Config, error) {
	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.path = configPath
	cfg.sanitize()

	if err := cfg.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("set current profile: %w", err)
	}
	return cfg, nil
}

// ConfigPath is $RORIVOICE_HOME/.rorivoice/config.yaml, or the same
// under the user's home directory.
func ConfigPath() (string, error) {
	var configDir string

	if home := os.Getenv(homeEnv); home != "" {
		configDir = home
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".rorivoice", "config.yaml"), nil
}

func ensureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0o755)
}

func loadConfigFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return createDefaultConfig(configPath)
	}
	if err != nil {
		return nil, err
	}

	// Profiles start empty so a deleted default profile stays deleted.
	cfg := Default()
	cfg.Profiles = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	cfg := Default()
	if err := saveConfig(&cfg, configPath); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func saveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	// 0600: the file holds API keys.
	return os.WriteFile(configPath, data, 0o600)
}

// Save writes the config back to where it was loaded from.
func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		p, err := ConfigPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		configPath = p
	}
	if err := saveConfig(c, configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return c.setCurrentProfile()
}

func (c *Config) sanitize() {
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	if len(c.Profiles) == 0 {
		c.Profiles[DefaultProfileName] = DefaultProfile()
	}
	for name, p := range c.Profiles {
		c.Profiles[name] = NormalizeProfile(p)
	}

	def := detection.DefaultPolicy()
	if c.Policy.MinBase64Length <= 0 {
		c.Policy.MinBase64Length = def.MinBase64Length
	}
	if c.Policy.MaxBase64Length <= 0 {
		c.Policy.MaxBase64Length = def.MaxBase64Length
	}
	if c.Policy.MaxBase64Length < c.Policy.MinBase64Length {
		c.Policy.MaxBase64Length = c.Policy.MinBase64Length
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = "info"
	}
}

// NormalizeProfile trims p and fills blank fields with defaults. The API
// key is never defaulted.
func NormalizeProfile(p Profile) Profile {
	def := DefaultProfile()
	p.Endpoint = strings.TrimSpace(p.Endpoint)
	p.APIKey = strings.TrimSpace(p.APIKey)
	p.Language = strings.TrimSpace(p.Language)
	p.AudioFormat = strings.TrimSpace(p.AudioFormat)
	if p.Endpoint == "" {
		p.Endpoint = def.Endpoint
	}
	if p.Language == "" {
		p.Language = def.Language
	}
	if p.AudioFormat == "" {
		p.AudioFormat = def.AudioFormat
	}
	if p.Timeout.ToDuration() <= 0 {
		p.Timeout = def.Timeout
	}
	return p
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// Fall back to the first profile in name order.
		names := c.ProfileNames()
		c.ActiveProfile = names[0]
		profile = c.Profiles[names[0]]
	}

	c.currentProfile = &profile
	return nil
}

// UseProfile makes name the active profile for this process. Call Save
// to persist the choice.
func (c *Config) UseProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	c.ActiveProfile = name
	return c.setCurrentProfile()
}

// ProfileNames lists profiles in a stable order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Current returns the active profile with environment overrides applied.
func (c *Config) Current() Profile {
	var p Profile
	if c.currentProfile != nil {
		p = *c.currentProfile
	} else {
		p = DefaultProfile()
	}
	if v := strings.TrimSpace(os.Getenv(endpointEnv)); v != "" {
		p.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(apiKeyEnv)); v != "" {
		p.APIKey = v
	}
	return p
}

// IsValid reports whether the active profile can be used to send a
// request under the configured policy.
func (c *Config) IsValid() bool {
	p := c.Current()
	if p.Endpoint == "" {
		return false
	}
	return !c.Policy.RequireAPIKey || p.APIKey != ""
}

func (c *Config) GetEndpoint() string {
	return c.Current().Endpoint
}

func (c *Config) GetAPIKey() string {
	return c.Current().APIKey
}

// DetectionPolicy converts the policy section for the detection package.
func (c *Config) DetectionPolicy() detection.Policy {
	return detection.Policy{
		MinBase64Length:      c.Policy.MinBase64Length,
		MaxBase64Length:      c.Policy.MaxBase64Length,
		RequireAPIKey:        c.Policy.RequireAPIKey,
		RequireSuccessStatus: c.Policy.RequireSuccessStatus,
	}
}

// LogPath is where the log file goes when none is configured.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	if c.path != "" {
		return filepath.Join(filepath.Dir(c.path), "rorivoice.log")
	}
	p, err := ConfigPath()
	if err != nil {
		return filepath.Join(os.TempDir(), "rorivoice.log")
	}
	return filepath.Join(filepath.Dir(p), "rorivoice.log")
}
