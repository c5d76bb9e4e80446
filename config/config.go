// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers    = []string{"sqlite", "postgres"}
	validCacheDrivers = []string{"memory", "redis"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. args are the command line arguments without the
// program name. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup(args []string) error {
	fs := pflag.NewFlagSet("auth-api", pflag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a config.toml file")
	fs.String("log-level", "", "Overrides app.log_level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := v.BindPFlag("app.log_level", fs.Lookup("log-level")); err != nil {
		return err
	}

	if *configPath != "" {
		v.SetConfigFile(*configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	// Every key can be set from the environment, e.g. jwt.access_secret -> JWT_ACCESS_SECRET
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults()

	if err := v.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || *configPath != "" {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	return validate()
}

func setDefaults() {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.base_path", "")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.public_url", "")
	v.SetDefault("host.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("jwt.access_ttl", "15m")
	v.SetDefault("jwt.refresh_ttl", "720h")

	v.SetDefault("security.reset_token_ttl", "30m")
	v.SetDefault("security.max_body_size", 1<<20)
	v.SetDefault("security.argon.memory", 64*1024)
	v.SetDefault("security.argon.iterations", 3)
	v.SetDefault("security.argon.parallelism", 2)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "auth:")

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.workers", 2)
	v.SetDefault("mail.queue_size", 64)

	v.SetDefault("cloudflare.turnstile.enabled", false)

	v.SetDefault("cleanup.interval", "24h")
}

func validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if bp := v.GetString("app.base_path"); bp != "" && !strings.HasPrefix(bp, "/") {
		return errors.New("app.base_path must start with /")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	access, refresh := v.GetString("jwt.access_secret"), v.GetString("jwt.refresh_secret")
	if access == "" || refresh == "" {
		return fmt.Errorf("jwt.access_secret and jwt.refresh_secret must be set (JWT_ACCESS_SECRET, JWT_REFRESH_SECRET). Example of a random secret:\n\n%s", genSecret())
	}

	if access == refresh {
		return errors.New("jwt.access_secret and jwt.refresh_secret must differ")
	}

	for _, key := range []string{"jwt.access_ttl", "jwt.refresh_ttl", "security.reset_token_ttl", "cleanup.interval"} {
		if v.GetDuration(key) <= 0 {
			return fmt.Errorf("%s must be a duration bigger than 0", key)
		}
	}

	if v.GetDuration("jwt.access_ttl") >= v.GetDuration("jwt.refresh_ttl") {
		return errors.New("jwt.access_ttl must be shorter than jwt.refresh_ttl")
	}

	if v.GetInt64("security.max_body_size") <= 0 {
		return errors.New("security.max_body_size must be bigger than 0")
	}

	if err := validateArgon(); err != nil {
		return err
	}

	if !slices.Contains(validDBDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("no database dsn provided")
	}

	if !slices.Contains(validCacheDrivers, v.GetString("cache.driver")) {
		return errors.New("invalid cache driver provided")
	}

	if v.GetString("cache.driver") == "redis" && v.GetString("redis.addr") == "" {
		return errors.New("no redis address provided")
	}

	if v.GetBool("mail.enabled") {
		if v.GetString("mail.host") == "" {
			return errors.New("no mail host provided")
		}

		if v.GetString("mail.sender") == "" {
			return errors.New("no mail sender address provided")
		}
	} else {
		fmt.Println("[WARNING]: Mail delivery is disabled. Mails will be written to the log instead")
	}

	if v.GetBool("cloudflare.turnstile.enabled") && v.GetString("cloudflare.turnstile.secret_token") == "" {
		return errors.New("turnstile secret token is missing")
	}

	return nil
}

// argon2.IDKey panics on out of range parameters, so they're checked before
// the first password gets hashed
func validateArgon() error {
	iterations := v.GetInt64("security.argon.iterations")
	parallelism := v.GetInt64("security.argon.parallelism")
	memory := v.GetInt64("security.argon.memory")

	if iterations < 1 || iterations > math.MaxUint32 {
		return errors.New("security.argon.iterations must be at least 1")
	}

	if parallelism < 1 || parallelism > math.MaxUint8 {
		return errors.New("security.argon.parallelism must be between 1 and 255")
	}

	if memory < 8*parallelism || memory > math.MaxUint32 {
		return fmt.Errorf("security.argon.memory must be at least %d (8 KiB per thread)", 8*parallelism)
	}

	return nil
}
