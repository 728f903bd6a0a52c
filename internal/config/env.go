package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable walinks reads.
const EnvPrefix = "WALINKS"

// DotEnvFile is the optional file in the working directory whose variables
// are loaded before the environment is read. Variables already set in the
// process environment win.
const DotEnvFile = ".env"

// Env holds the environment overrides. Nil pointers are unset variables.
type Env struct {
	UserAgent   string         `envconfig:"USER_AGENT"`
	Delay       *time.Duration `envconfig:"DELAY"`
	Timeout     *time.Duration `envconfig:"TIMEOUT"`
	MaxBodySize *int64         `envconfig:"MAX_BODY_SIZE"`
	Depth       *int           `envconfig:"DEPTH"`
	MaxPages    *int           `envconfig:"MAX_PAGES"`
	BatchSize   *int           `envconfig:"BATCH_SIZE"`
	DBDir       string         `envconfig:"DB_DIR"`
}

// LoadEnv reads WALINKS_* variables, after loading dotEnvPath if it exists.
// An empty dotEnvPath skips the file.
func LoadEnv(dotEnvPath string) (*Env, error) {
	if dotEnvPath != "" {
		if err := godotenv.Load(dotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotEnvPath, err)
		}
	}

	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &env, nil
}

// Apply copies every set variable into c.
func (e *Env) Apply(c *Config) {
	if e.UserAgent != "" {
		c.UserAgent = e.UserAgent
	}
	if e.Delay != nil {
		c.CrawlDelay = *e.Delay
	}
	if e.Timeout != nil {
		c.Timeout = *e.Timeout
	}
	if e.MaxBodySize != nil {
		c.MaxBodySize = *e.MaxBodySize
	}
	if e.Depth != nil {
		c.CrawlDepth = *e.Depth
	}
	if e.MaxPages != nil {
		c.MaxPages = *e.MaxPages
	}
	if e.BatchSize != nil {
		c.BatchSize = *e.BatchSize
	}
	if e.DBDir != "" {
		c.DBDir = e.DBDir
	}
}

// ApplyEnv loads the environment (and ./.env when present) into c.
func ApplyEnv(c *Config) error {
	dotEnv := ""
	if _, err := os.Stat(DotEnvFile); err == nil {
		dotEnv = DotEnvFile
	}
	env, err := LoadEnv(dotEnv)
	if err != nil {
		return err
	}
	env.Apply(c)
	return nil
}
