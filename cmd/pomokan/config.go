package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/pomokan/pomokan/internal/logger"
)

const (
	defaultListenAddr    = "localhost:8000"
	defaultLoggingLevel  = logger.LevelInfo
	defaultEnvironment   = logger.EnvProduction
	defaultAlgorithm     = "HS256"
	defaultAccessTTLMin  = 30
	defaultRefreshTTLMin = 43200 // 30 days
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key
	// Access tokens are signed symmetrically, so this key is used for that purpose
	SecretKey string

	// JWT signing algorithm identifier
	Algorithm string

	// Token lifetimes, in minutes
	AccessTokenTTLMin  int
	RefreshTokenTTLMin int

	// Frontend origin allowed by CORS. Empty disables CORS headers
	CORSOrigin string

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:           defaultLoggingLevel,
		ListenAddr:         defaultListenAddr,
		Algorithm:          defaultAlgorithm,
		AccessTokenTTLMin:  defaultAccessTTLMin,
		RefreshTokenTTLMin: defaultRefreshTTLMin,
		Environment:        defaultEnvironment,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				*o = parsed
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":                  setString(&c.ListenAddr),
		"DATABASE_URL":                 setString(&c.DatabaseDSN),
		"SECRET_KEY":                   setString(&c.SecretKey),
		"ALGORITHM":                    setString(&c.Algorithm),
		"ACCESS_TOKEN_EXPIRE_MINUTES":  setInt(&c.AccessTokenTTLMin),
		"REFRESH_TOKEN_EXPIRE_MINUTES": setInt(&c.RefreshTokenTTLMin),
		"CORS_ORIGIN":                  setString(&c.CORSOrigin),
		"LOG_LEVEL":                    setString(&c.LogLevel),
		"ENVIRONMENT":                  setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("pomokan", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVar(&c.Algorithm, "algorithm", c.Algorithm, "JWT signing algorithm")
	fs.IntVar(&c.AccessTokenTTLMin, "access-ttl", c.AccessTokenTTLMin, "Access token lifetime in minutes")
	fs.IntVar(&c.RefreshTokenTTLMin, "refresh-ttl", c.RefreshTokenTTLMin, "Refresh token lifetime in minutes")
	fs.StringVar(&c.CORSOrigin, "cors-origin", c.CORSOrigin, "Allowed CORS origin")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}
