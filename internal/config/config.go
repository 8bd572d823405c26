// Package config provides functionality for managing configuration options
// for the client and the login stub server using command-line flags,
// environment variables, a JSON config file and an optional .env file.
//
// Precedence, lowest first: built-in defaults, config file, flags given on
// the command line, environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultConfigFile = "config.json"

// ClientOptions holds the configuration of the dispatch client.
type ClientOptions struct {
	// Endpoint is the login endpoint URL.
	Endpoint string
	// CAFile, when set, is the only CA trusted for the endpoint's TLS.
	CAFile string
	// Timeout bounds a login request; zero keeps the transport default.
	Timeout time.Duration
	// LogLevel is the zap level name.
	LogLevel string
	// RequireAdmin restricts the driver panel to admin accounts.
	RequireAdmin bool
	// Config is the path to the config file.
	Config string
	// ShowVersion prints build info and exits.
	ShowVersion bool
}

// ServerOptions holds the configuration of the login stub server.
type ServerOptions struct {
	// Addr defines the server's listening address (ip:port).
	Addr string
	// DatabaseDSN holds the PostgreSQL connection string; empty selects the
	// in-memory account store.
	DatabaseDSN string
	// RedisURL enables login rate limiting when set.
	RedisURL string
	// RateLimit is the number of attempts allowed per identifier per minute.
	RateLimit int
	// CertFile and KeyFile enable TLS when both are set.
	CertFile string
	KeyFile  string
	// AttemptRetention is how long login attempts are kept.
	AttemptRetention time.Duration
	// LogLevel is the zap level name.
	LogLevel string
	// Config is the path to the config file.
	Config string
}

// clientFile is the JSON shape of the client config file. Absent keys keep
// the lower-precedence value.
type clientFile struct {
	Endpoint     *string `json:"endpoint"`
	CAFile       *string `json:"ca_file"`
	Timeout      *string `json:"timeout"`
	LogLevel     *string `json:"log_level"`
	RequireAdmin *bool   `json:"require_admin"`
}

type serverFile struct {
	Addr             *string `json:"addr"`
	DatabaseDSN      *string `json:"database_dsn"`
	RedisURL         *string `json:"redis_url"`
	RateLimit        *int    `json:"rate_limit"`
	CertFile         *string `json:"cert_file"`
	KeyFile          *string `json:"key_file"`
	AttemptRetention *string `json:"attempt_retention"`
	LogLevel         *string `json:"log_level"`
}

// ParseClient builds ClientOptions from args (without the program name).
func ParseClient(args []string, defaultEndpoint string) (*ClientOptions, error) {
	loadDotEnv()

	o := &ClientOptions{}
	fset := flag.NewFlagSet("client", flag.ContinueOnError)
	fset.StringVar(&o.Endpoint, "endpoint", defaultEndpoint, "login endpoint URL")
	fset.StringVar(&o.CAFile, "ca", "", "path to a CA cert to trust instead of the system roots")
	fset.DurationVar(&o.Timeout, "timeout", 0, "login request timeout (0 = transport default)")
	fset.StringVar(&o.LogLevel, "log-level", "info", "log level")
	fset.BoolVar(&o.RequireAdmin, "require-admin", false, "restrict the driver panel to admin accounts")
	fset.StringVar(&o.Config, "config", defaultConfigFile, "path to config file")
	fset.StringVar(&o.Config, "c", defaultConfigFile, "path to config file (shorthand)")
	fset.BoolVar(&o.ShowVersion, "version", false, "show build version and date")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	set := explicitFlags(fset)

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		o.Config = configPath
	}
	var file clientFile
	found, err := readConfigFile(o.Config, &file)
	if err != nil {
		return nil, err
	}
	if found {
		applyString(&o.Endpoint, file.Endpoint, set["endpoint"])
		applyString(&o.CAFile, file.CAFile, set["ca"])
		applyString(&o.LogLevel, file.LogLevel, set["log-level"])
		if file.RequireAdmin != nil && !set["require-admin"] {
			o.RequireAdmin = *file.RequireAdmin
		}
		if file.Timeout != nil && !set["timeout"] {
			if o.Timeout, err = time.ParseDuration(*file.Timeout); err != nil {
				return nil, fmt.Errorf("invalid timeout in config file: %w", err)
			}
		}
	}

	if v := os.Getenv("LOGIN_ENDPOINT"); v != "" {
		o.Endpoint = v
	}
	if v := os.Getenv("CA_FILE"); v != "" {
		o.CAFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		o.LogLevel = v
	}
	return o, nil
}

// ParseServer builds ServerOptions from args (without the program name).
func ParseServer(args []string) (*ServerOptions, error) {
	loadDotEnv()

	o := &ServerOptions{}
	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	fset.StringVar(&o.Addr, "a", "localhost:8443", "run on ip:port server")
	fset.StringVar(&o.DatabaseDSN, "d", "", "db address")
	fset.StringVar(&o.RedisURL, "redis", "", "redis URL for login rate limiting")
	fset.IntVar(&o.RateLimit, "rate", 5, "login attempts per identifier per minute")
	fset.StringVar(&o.CertFile, "cert", "", "path to server TLS cert")
	fset.StringVar(&o.KeyFile, "key", "", "path to server TLS key")
	fset.DurationVar(&o.AttemptRetention, "retention", 30*24*time.Hour, "how long login attempts are kept")
	fset.StringVar(&o.LogLevel, "log-level", "info", "log level")
	fset.StringVar(&o.Config, "config", defaultConfigFile, "path to config file")
	fset.StringVar(&o.Config, "c", defaultConfigFile, "path to config file (shorthand)")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	set := explicitFlags(fset)

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		o.Config = configPath
	}
	var file serverFile
	found, err := readConfigFile(o.Config, &file)
	if err != nil {
		return nil, err
	}
	if found {
		applyString(&o.Addr, file.Addr, set["a"])
		applyString(&o.DatabaseDSN, file.DatabaseDSN, set["d"])
		applyString(&o.RedisURL, file.RedisURL, set["redis"])
		applyString(&o.CertFile, file.CertFile, set["cert"])
		applyString(&o.KeyFile, file.KeyFile, set["key"])
		applyString(&o.LogLevel, file.LogLevel, set["log-level"])
		if file.RateLimit != nil && !set["rate"] {
			o.RateLimit = *file.RateLimit
		}
		if file.AttemptRetention != nil && !set["retention"] {
			if o.AttemptRetention, err = time.ParseDuration(*file.AttemptRetention); err != nil {
				return nil, fmt.Errorf("invalid attempt_retention in config file: %w", err)
			}
		}
	}

	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		o.Addr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		o.DatabaseDSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		o.RedisURL = v
	}
	if v := os.Getenv("LOGIN_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
		}
		o.RateLimit = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		o.LogLevel = v
	}
	return o, nil
}

// TLSEnabled reports whether both a cert and a key are configured.
func (o *ServerOptions) TLSEnabled() bool {
	return o.CertFile != "" && o.KeyFile != ""
}

// loadDotEnv loads .env from the working directory if present. Variables
// already in the environment are not overwritten.
func loadDotEnv() {
	_ = godotenv.Load()
}

func explicitFlags(fset *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fset.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// readConfigFile decodes path into dst. A missing file is not an error.
func readConfigFile(path string, dst any) (bool, error) {
	if path == "" {
		return false, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("error while parsing config file: %w", err)
	}
	return true, nil
}

func applyString(dst, fromFile *string, flagSet bool) {
	if fromFile != nil && !flagSet {
		*dst = *fromFile
	}
}
