package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "rdf-tabular.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/rdf-tabular"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Environment variables consulted after all files.
const (
	EnvStoreDriver = "RDFTAB_STORE_DRIVER"
	EnvNATSURL     = "RDFTAB_NATS_URL"
	EnvSQLitePath  = "RDFTAB_SQLITE_PATH"
	EnvListen      = "RDFTAB_LISTEN"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger  *slog.Logger
	homeDir func() (string, error)
	workDir func() (string, error)
	lookup  func(string) (string, bool)
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:  logger,
		homeDir: os.UserHomeDir,
		workDir: os.Getwd,
		lookup:  os.LookupEnv,
	}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/rdf-tabular/config.yaml)
// 3. Project config (rdf-tabular.yaml in current or parent directories)
// 4. Environment variables
func (l *Loader) Load() (*Config, error) {
	return l.LoadWithFile("")
}

// LoadWithFile is Load with an explicit file in place of the project
// config search. Unlike the discovered files, an explicit file must exist.
func (l *Loader) LoadWithFile(path string) (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if layer, err := readLayer(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(layer)
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	if path != "" {
		layer, err := readLayer(path)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config file", slog.String("path", path))
		config.Merge(layer)
	} else if projectConfigPath := l.findProjectConfig(); projectConfigPath != "" {
		if layer, err := readLayer(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(layer)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	l.applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (l *Loader) applyEnv(config *Config) {
	overrides := []struct {
		name   string
		target *string
	}{
		{EnvStoreDriver, &config.Store.Driver},
		{EnvNATSURL, &config.Store.NATS.URL},
		{EnvSQLitePath, &config.Store.SQLite.Path},
		{EnvListen, &config.Server.Listen},
	}
	for _, o := range overrides {
		if v, ok := l.lookup(o.name); ok && v != "" {
			l.logger.Debug("Config override from environment", slog.String("var", o.name))
			*o.target = v
		}
	}
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() (string, error) {
	userConfigPath := l.userConfigPath()
	if userConfigPath == "" {
		return "", errors.New("cannot determine home directory")
	}
	if _, err := os.Stat(userConfigPath); err == nil {
		return userConfigPath, nil
	}

	if err := DefaultConfig().SaveToFile(userConfigPath); err != nil {
		return "", err
	}
	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return userConfigPath, nil
}

func (l *Loader) userConfigPath() string {
	home, err := l.homeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for rdf-tabular.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := l.workDir()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
