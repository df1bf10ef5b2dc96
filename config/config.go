// Package config loads the settings of the table generator and the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

const (
	AddrEnv     = "REDIS_COMMANDS_ADDR"
	PasswordEnv = "REDIS_COMMANDS_PASSWORD"
	LogLevelEnv = "REDIS_COMMANDS_LOG_LEVEL"

	DefaultAddr    = "127.0.0.1:6379"
	DefaultOutput  = "commands/commands.json"
	DefaultTimeout = 5 * time.Second
)

// Config is the TOML configuration file.
type Config struct {
	Redis  RedisConfig  `toml:"redis"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
}

// RedisConfig is the server the generator introspects with COMMAND.
type RedisConfig struct {
	Addr     string        `toml:"addr"`
	Username string        `toml:"username"`
	Password string        `toml:"password"`
	DB       int           `toml:"db"`
	Timeout  time.Duration `toml:"timeout"`
}

type OutputConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func Default() *Config {
	return &Config{
		Redis: RedisConfig{
			Addr:    DefaultAddr,
			Timeout: DefaultTimeout,
		},
		Output: OutputConfig{Path: DefaultOutput},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path on top of the defaults and applies the environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		_, err := toml.DecodeFile(path, cfg)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode parses TOML data on top of the defaults without consulting the
// environment.
func Decode(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c *Config) ApplyEnv() {
	if v := os.Getenv(AddrEnv); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv(PasswordEnv); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv(LogLevelEnv); v != "" {
		c.Log.Level = v
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.Redis.Addr == "" {
		err = multierr.Append(err, errors.New("redis.addr is empty"))
	}
	if c.Redis.DB < 0 {
		err = multierr.Append(err, fmt.Errorf("redis.db %d is negative", c.Redis.DB))
	}
	if c.Redis.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("redis.timeout %s is not positive", c.Redis.Timeout))
	}
	if c.Output.Path == "" {
		err = multierr.Append(err, errors.New("output.path is empty"))
	}
	if c.Log.Level != "" {
		var lvl zapcore.Level
		if e := lvl.UnmarshalText([]byte(c.Log.Level)); e != nil {
			err = multierr.Append(err, fmt.Errorf("log.level %s is unknown", strconv.Quote(c.Log.Level)))
		}
	}
	return err
}
