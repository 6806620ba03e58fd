// Package config loads labconsole settings from defaults, a YAML file and the
// environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables
const (
	EnvBackendURL     = "LABCONSOLE_BACKEND_URL"
	EnvPollInterval   = "LABCONSOLE_POLL_INTERVAL"
	EnvPollTimeout    = "LABCONSOLE_POLL_TIMEOUT"
	EnvRequestTimeout = "LABCONSOLE_REQUEST_TIMEOUT"
	EnvLogFile        = "LABCONSOLE_LOG_FILE"
	EnvLogLevel       = "LABCONSOLE_LOG_LEVEL"
	EnvJournal        = "LABCONSOLE_JOURNAL"
	EnvReportDir      = "LABCONSOLE_REPORT_DIR"
	EnvDockerHost     = "DOCKER_HOST"
)

// Command is one entry of the command vocabulary
type Command struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

// Commands is the ordered command vocabulary
type Commands []Command

// Label returns the display label for key, or key itself
func (cs Commands) Label(key string) string {
	for _, cmd := range cs {
		if cmd.Key == key && cmd.Label != "" {
			return cmd.Label
		}
	}
	return key
}

// Config holds every labconsole setting
type Config struct {
	BackendURL     string        `yaml:"backend_url"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	PollTimeout    time.Duration `yaml:"poll_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Commands       Commands      `yaml:"commands"`

	LogFile     string `yaml:"log_file"`
	LogLevel    string `yaml:"log_level"`
	JournalPath string `yaml:"journal"`
	ReportDir   string `yaml:"report_dir"`
	DockerHost  string `yaml:"docker_host"`
}

// Default returns the built-in settings
func Default() Config {
	journal := "labconsole.db"
	if home, err := os.UserHomeDir(); err == nil {
		journal = filepath.Join(home, ".labconsole", "journal.db")
	}

	return Config{
		BackendURL:     "http://localhost:8000",
		PollInterval:   3 * time.Second,
		PollTimeout:    3 * time.Second,
		RequestTimeout: 5 * time.Second,
		Commands: Commands{
			{Key: "bridge_up", Label: "Activate Bridge"},
			{Key: "terraform", Label: "Provision Kali"},
		},
		LogFile:     "labconsole.log",
		LogLevel:    "info",
		JournalPath: journal,
		ReportDir:   ".",
	}
}

// Load reads path over the defaults and then applies the environment.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str(EnvBackendURL, &c.BackendURL)
	str(EnvLogFile, &c.LogFile)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvJournal, &c.JournalPath)
	str(EnvReportDir, &c.ReportDir)
	str(EnvDockerHost, &c.DockerHost)

	if err := dur(EnvPollInterval, &c.PollInterval); err != nil {
		return err
	}
	if err := dur(EnvPollTimeout, &c.PollTimeout); err != nil {
		return err
	}
	return dur(EnvRequestTimeout, &c.RequestTimeout)
}

// Validate checks that the settings are usable
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.BackendURL) == "" {
		errs = append(errs, errors.New("backend_url is empty"))
	} else if !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		errs = append(errs, fmt.Errorf("backend_url %q must start with http:// or https://", c.BackendURL))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("poll_interval must be positive"))
	}
	if c.PollTimeout <= 0 {
		errs = append(errs, errors.New("poll_timeout must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if len(c.Commands) == 0 {
		errs = append(errs, errors.New("no commands configured"))
	}

	seen := make(map[string]bool, len(c.Commands))
	for i, cmd := range c.Commands {
		switch {
		case strings.TrimSpace(cmd.Key) == "":
			errs = append(errs, fmt.Errorf("commands[%d]: empty key", i))
		case seen[cmd.Key]:
			errs = append(errs, fmt.Errorf("commands[%d]: duplicate key %q", i, cmd.Key))
		}
		seen[cmd.Key] = true
	}

	return errors.Join(errs...)
}
