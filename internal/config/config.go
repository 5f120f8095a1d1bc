package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default dashboard port when none is configured.
const DefaultPort = "8081"

// StartupServerURLFormat is the format for the "server listening" log line (one %s for port).
const StartupServerURLFormat = "Starting CloudPlatform dashboard server on http://localhost:%s"

// DefaultHostedDomain is appended to a site name to build its hosted URL.
const DefaultHostedDomain = "example.vercel.app"

const appDataDirName = "cloudplatform"

// Storage drivers for the client store.
const (
	StorageINI    = "ini"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds application configuration
type Config struct {
	Port       string           `mapstructure:"port"`
	StaticDir  string           `mapstructure:"static_dir"`
	DataDir    string           `mapstructure:"data_dir"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Sites      SitesConfig      `mapstructure:"sites"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// StorageConfig selects where the session token is persisted.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // "ini", "sqlite", "memory"
	Path   string `mapstructure:"path"`   // defaults to a file under DataDir
}

// SitesConfig controls the initial registry contents and hosted URLs.
type SitesConfig struct {
	Seed         bool   `mapstructure:"seed"`
	HostedDomain string `mapstructure:"hosted_domain"`
}

// SimulationConfig holds the simulated transition delays.
type SimulationConfig struct {
	DeployDelay   time.Duration `mapstructure:"deploy_delay"`
	RedeployDelay time.Duration `mapstructure:"redeploy_delay"`
	StopDelay     time.Duration `mapstructure:"stop_delay"`
	CreateDelay   time.Duration `mapstructure:"create_delay"`
}

// appDataDir returns the platform-specific application data path.
func appDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appDataDirName), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, appDataDirName), nil
	default:
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			dataHome = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(dataHome, appDataDirName), nil
	}
}

// New returns a viper instance with defaults, config file lookup and
// CLOUDPLATFORM_ env overrides applied. Callers may bind flags before Load.
func New() *viper.Viper {
	v := viper.New()

	dataDir, err := appDataDir()
	if err != nil {
		dataDir = "."
	}

	staticDir := "static"
	if _, err := os.Stat(staticDir); err != nil {
		staticDir = ""
	}

	v.SetDefault("port", DefaultPort)
	v.SetDefault("static_dir", staticDir)
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("storage.driver", StorageINI)
	v.SetDefault("storage.path", "")
	v.SetDefault("sites.seed", true)
	v.SetDefault("sites.hosted_domain", DefaultHostedDomain)
	v.SetDefault("simulation.deploy_delay", 1400*time.Millisecond)
	v.SetDefault("simulation.redeploy_delay", 1600*time.Millisecond)
	v.SetDefault("simulation.stop_delay", 800*time.Millisecond)
	v.SetDefault("simulation.create_delay", 1800*time.Millisecond)

	v.SetConfigType("yaml")
	if cfgPath := os.Getenv("CLOUDPLATFORM_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appDataDirName))
		}
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CLOUDPLATFORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file and decodes v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// StorePath returns the file used by the configured storage driver.
func (c *Config) StorePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Driver {
	case StorageSQLite:
		return filepath.Join(c.DataDir, "client.db")
	case StorageINI:
		return filepath.Join(c.DataDir, "client.ini")
	}
	return ""
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageINI, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.Sites.HostedDomain == "" {
		c.Sites.HostedDomain = DefaultHostedDomain
	}
	for name, d := range map[string]time.Duration{
		"deploy_delay":   c.Simulation.DeployDelay,
		"redeploy_delay": c.Simulation.RedeployDelay,
		"stop_delay":     c.Simulation.StopDelay,
		"create_delay":   c.Simulation.CreateDelay,
	} {
		if d < 0 {
			return fmt.Errorf("simulation.%s must not be negative", name)
		}
	}
	return nil
}
