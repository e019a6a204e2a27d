// Package config centralizes configuration: YAML file, environment
// variables, and command-line flags, with flags > env > file > defaults
// precedence.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Effective is the resolved configuration plus where it came from, for the
// startup banner.
type Effective struct {
	Config *Config
	Addr   string
	Source string
}

// ParseCommandFlags registers and parses the process flags. It returns the
// raw values plus a set of which flags were explicitly provided, so callers
// can apply flag-wins precedence.
func ParseCommandFlags() (addr, cfgPath string, set map[string]bool) {
	addrFlag := flag.String("addr", "", "listen address (host:port), overrides config")
	cfgFlag := flag.String("config", "", "path to YAML config file")
	flag.Parse()
	set = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return *addrFlag, *cfgFlag, set
}

// ResolveConfigPath picks the config file path: explicit flag wins, then the
// ETS_CONFIG environment variable.
func ResolveConfigPath(flagVal string, flagSet bool) string {
	if flagSet && flagVal != "" {
		return flagVal
	}
	return os.Getenv("ETS_CONFIG")
}

// LoadEffective loads the config file (when given) and applies environment
// overrides.
func LoadEffective(path string) (Effective, error) {
	cfg := Default()
	source := "defaults"
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Effective{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return Effective{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		source = "config"
	}
	if applyEnv(cfg) {
		source = "env"
	}
	return Effective{Config: cfg, Addr: cfg.Addr(), Source: source}, nil
}

// applyEnv overlays ETS_* environment variables and reports whether any were
// used.
func applyEnv(cfg *Config) bool {
	used := false
	if v := os.Getenv("ETS_ADDRESS"); v != "" {
		cfg.Server.Address = v
		used = true
	}
	if v := os.Getenv("ETS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
			used = true
		}
	}
	if v := os.Getenv("ETS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
		used = true
	}
	if v := os.Getenv("ETS_MAX_INSTANCES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Limits.MaxInstances = n
			used = true
		}
	}
	if v := os.Getenv("ETS_MAX_MESSAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Limits.MaxMessages = n
			used = true
		}
	}
	if v := os.Getenv("ETS_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
		used = true
	}
	return used
}
