// Package config resolves the service configuration. Sources are applied
// in increasing priority: built-in defaults, a JSON config file (-c or
// CONFIG), command-line flags, then environment variables. A .env file in
// the working directory is loaded first and never overrides variables that
// are already set.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// ServerAddress is the HTTP listen address (ip:port).
	ServerAddress string `json:"server_address"`

	// BaseURL prefixes codes to form the public short links.
	BaseURL string `json:"base_url"`

	// FileStoragePath selects the journal file backend.
	FileStoragePath string `json:"file_storage_path"`

	// DatabaseDSN selects the Postgres backend.
	DatabaseDSN string `json:"database_dsn"`

	// RedisAddr selects the Redis backend (host:port).
	RedisAddr string `json:"redis_addr"`

	// GRPCAddress is the gRPC listen address. Empty disables gRPC.
	GRPCAddress string `json:"grpc_address"`

	EnablePprof bool `json:"enable_pprof"`

	// EnableHTTPS serves HTTPS on :443 with certificates from Let's Encrypt.
	EnableHTTPS bool `json:"enable_https"`

	LogLevel string `json:"log_level"`

	// CORSAllowedOrigins lists dashboard origins. Empty allows any origin.
	CORSAllowedOrigins []string `json:"cors_allowed_origins"`

	// Config is the path of the JSON config file.
	Config string `json:"-"`
}

func defaults() *Options {
	return &Options{
		ServerAddress: "localhost:8080",
		BaseURL:       "http://localhost:8080",
		GRPCAddress:   "localhost:3200",
		LogLevel:      "info",
	}
}

// Parse reads the configuration of the running process.
func Parse() (*Options, error) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs resolves the configuration from args, the environment and the
// optional config file.
func ParseArgs(args []string) (*Options, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	options := defaults()

	// the first pass only locates the config file
	if err := newFlagSet(options).Parse(args); err != nil {
		return nil, err
	}
	if path := os.Getenv("CONFIG"); path != "" {
		options.Config = path
	}

	if options.Config != "" {
		path := options.Config
		if err := loadFile(path, options); err != nil {
			return nil, err
		}

		// flags win over the file
		if err := newFlagSet(options).Parse(args); err != nil {
			return nil, err
		}
		options.Config = path
	}

	if err := applyEnv(options); err != nil {
		return nil, err
	}

	return options, nil
}

func newFlagSet(options *Options) *flag.FlagSet {
	set := flag.NewFlagSet("shortener", flag.ContinueOnError)
	set.SetOutput(io.Discard)

	set.StringVar(&options.ServerAddress, "a", options.ServerAddress, "run on ip:port server")
	set.StringVar(&options.BaseURL, "b", options.BaseURL, "result base url")
	set.StringVar(&options.FileStoragePath, "f", options.FileStoragePath, "path to storage file")
	set.StringVar(&options.DatabaseDSN, "d", options.DatabaseDSN, "postgres dsn")
	set.StringVar(&options.RedisAddr, "r", options.RedisAddr, "redis address")
	set.StringVar(&options.GRPCAddress, "g", options.GRPCAddress, "grpc ip:port, empty to disable")
	set.BoolVar(&options.EnablePprof, "p", options.EnablePprof, "enable pprof")
	set.BoolVar(&options.EnableHTTPS, "s", options.EnableHTTPS, "enable https")
	set.StringVar(&options.LogLevel, "l", options.LogLevel, "log level")
	set.StringVar(&options.Config, "c", options.Config, "path to json config file")

	return set
}

func loadFile(path string, options *Options) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := json.Unmarshal(content, options); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	return nil
}

func applyEnv(options *Options) error {
	strs := map[string]*string{
		"SERVER_ADDRESS":    &options.ServerAddress,
		"BASE_URL":          &options.BaseURL,
		"FILE_STORAGE_PATH": &options.FileStoragePath,
		"DATABASE_DSN":      &options.DatabaseDSN,
		"REDIS_ADDR":        &options.RedisAddr,
		"GRPC_ADDRESS":      &options.GRPCAddress,
		"LOG_LEVEL":         &options.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"ENABLE_PPROF": &options.EnablePprof,
		"ENABLE_HTTPS": &options.EnableHTTPS,
	}
	for name, dst := range bools {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}

		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = b
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := make([]string, 0)
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		options.CORSAllowedOrigins = origins
	}

	return nil
}
