package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultProfileName    = "default"
	DefaultBackendURL     = "ws://127.0.0.1:12346"
	DefaultMetricsURL     = "http://127.0.0.1:12345"
	DefaultLogBufferSize  = 1000
	DefaultReconnectDelay = 3 * time.Second
	DefaultLogLevel       = "info"
)

// Profile points the client at one backend
type Profile struct {
	BackendURL     string        `yaml:"backend_url"`
	MetricsURL     string        `yaml:"metrics_url,omitempty"`
	LogBufferSize  int           `yaml:"log_buffer_size,omitempty"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay,omitempty"`
	MaxRetries     int           `yaml:"max_retries,omitempty"` // 0 retries forever
}

type Config struct {
	Profiles       map[string]Profile `yaml:"profiles"`
	ActiveProfile  string             `yaml:"active_profile"`
	LogLevel       string             `yaml:"log_level,omitempty"`
	currentProfile *Profile
	path           string
}

func DefaultProfile() Profile {
	return Profile{
		BackendURL:     DefaultBackendURL,
		MetricsURL:     DefaultMetricsURL,
		LogBufferSize:  DefaultLogBufferSize,
		ReconnectDelay: DefaultReconnectDelay,
	}
}

func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads (or creates) the config file at configPath
func LoadConfigFrom(configPath string) (*Config, error) {
	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.path = configPath

	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	return config, nil
}

// Dir is the directory holding config.yaml and the log file
func Dir() (string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(configPath), nil
}

func (c *Config) Current() Profile {
	if c.currentProfile == nil {
		return DefaultProfile()
	}
	return withDefaults(*c.currentProfile)
}

// WebSocketURL is the backend socket endpoint of the active profile
func (c *Config) WebSocketURL() (string, error) {
	return SocketURL(c.Current().BackendURL)
}

func (c *Config) MetricsURL() string {
	return strings.TrimRight(c.Current().MetricsURL, "/")
}

// ProfileNames returns the profile names in stable order
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SocketURL turns a backend base URL into its /ws endpoint. http(s) schemes
// are mapped to ws(s).
func SocketURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("invalid backend url %q: %w", base, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid backend url %q: unsupported scheme %q", base, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid backend url %q: missing host", base)
	}
	if !strings.HasSuffix(u.Path, "/ws") {
		u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	}
	return u.String(), nil
}

func withDefaults(p Profile) Profile {
	def := DefaultProfile()
	if p.BackendURL == "" {
		p.BackendURL = def.BackendURL
	}
	if p.MetricsURL == "" {
		p.MetricsURL = def.MetricsURL
	}
	if p.LogBufferSize <= 0 {
		p.LogBufferSize = def.LogBufferSize
	}
	if p.ReconnectDelay <= 0 {
		p.ReconnectDelay = def.ReconnectDelay
	}
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	return p
}

func getConfigPath() (string, error) {
	var configDir string

	// Use TUNNELDESK_HOME if set, otherwise use user's home directory
	if home := os.Getenv("TUNNELDESK_HOME"); home != "" {
		configDir = home
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".tunneldesk", "config.yaml"), nil
}

func ensureConfigDir(configPath string) error {
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0755)
}

func loadConfigFile(configPath string) (*Config, error) {
	// If config file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}

	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			DefaultProfileName: DefaultProfile(),
		},
		ActiveProfile: DefaultProfileName,
		LogLevel:      DefaultLogLevel,
	}

	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}

	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		var err error
		configPath, err = getConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	return saveConfig(c, configPath)
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// Fall back to the first profile in name order
		name := c.ProfileNames()[0]
		c.ActiveProfile = name
		profile = c.Profiles[name]
	}

	c.currentProfile = &profile
	return nil
}

// Use switches the active profile
func (c *Config) Use(name string) error {
	profile, exists := c.Profiles[name]
	if !exists {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	c.ActiveProfile = name
	c.currentProfile = &profile
	return nil
}
