package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Hard-coded defaults, the bottom of the resolution order.
const (
	defaultHost     = "localhost"
	defaultPort     = 25575
	defaultPassword = "test"
	defaultTimeout  = 10.0
)

// Environment variables consulted when the matching flag is not given.
const (
	envHost     = "RCON_HOST"
	envPort     = "RCON_PORT"
	envPassword = "RCON_PASSWORD"
)

// fileConfig mirrors the optional YAML config file. Zero-valued fields are
// treated as absent.
type fileConfig struct {
	Host     string  `yaml:"host"`
	Port     int     `yaml:"port"`
	Password string  `yaml:"password"`
	Timeout  float64 `yaml:"timeout"`
}

// config is the fully resolved CLI configuration.
type config struct {
	Host     string
	Port     int
	Password string
	Timeout  time.Duration
	Verbose  bool

	// Args holds the positional command words left after flag parsing.
	Args []string
}

// parseArgs resolves the CLI configuration from args. Each connection
// parameter is layered explicitly: flag over environment over config file
// over hard-coded default. getenv is injected so tests can supply their
// own environment.
func parseArgs(args []string, getenv func(string) string) (*config, error) {
	fs := flag.NewFlagSet("rconctl", flag.ContinueOnError)
	host := fs.StringP("host", "H", defaultHost, "server host (env "+envHost+")")
	port := fs.IntP("port", "P", defaultPort, "server port (env "+envPort+")")
	password := fs.StringP("password", "p", defaultPassword, "server password (env "+envPassword+")")
	timeout := fs.Float64P("timeout", "t", defaultTimeout, "connect/read timeout in seconds")
	configPath := fs.StringP("config", "c", "", "path to a YAML config file")
	verbose := fs.BoolP("verbose", "v", false, "log protocol packets to stderr")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &config{
		Host:     defaultHost,
		Port:     defaultPort,
		Password: defaultPassword,
		Verbose:  *verbose,
		Args:     fs.Args(),
	}
	timeoutSecs := defaultTimeout

	// Config file layer.
	fc, err := loadFileConfig(*configPath)
	if err != nil {
		return nil, err
	}
	if fc != nil {
		if fc.Host != "" {
			cfg.Host = fc.Host
		}
		if fc.Port != 0 {
			cfg.Port = fc.Port
		}
		if fc.Password != "" {
			cfg.Password = fc.Password
		}
		if fc.Timeout != 0 {
			timeoutSecs = fc.Timeout
		}
	}

	// Environment layer.
	if v := getenv(envHost); v != "" {
		cfg.Host = v
	}
	if v := getenv(envPort); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", envPort, v, err)
		}
		cfg.Port = p
	}
	if v := getenv(envPassword); v != "" {
		cfg.Password = v
	}

	// Explicit flags win over everything.
	if fs.Changed("host") {
		cfg.Host = *host
	}
	if fs.Changed("port") {
		cfg.Port = *port
	}
	if fs.Changed("password") {
		cfg.Password = *password
	}
	if fs.Changed("timeout") {
		timeoutSecs = *timeout
	}

	cfg.Timeout = time.Duration(timeoutSecs * float64(time.Second))
	return cfg, nil
}

// loadFileConfig reads the YAML config file. An explicit path must parse;
// the default location is probed and silently skipped when absent or
// unreadable.
func loadFileConfig(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil
		}
		path = filepath.Join(home, ".rconctl.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return nil, nil
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &fc, nil
}
