// Package internal wires together the dependencies shared by all handlers
package internal

import (
	"bitwise74/auth-api/db"
	"bitwise74/auth-api/internal/cache"
	"bitwise74/auth-api/internal/service"
	"bitwise74/auth-api/internal/store"
	"bitwise74/auth-api/pkg/metrics"
	"bitwise74/auth-api/pkg/security"
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Users    *store.Users
	Tokens   *store.VerificationTokens
	Cache    cache.Store
	Argon    *security.ArgonHash
	Issuer   *security.TokenIssuer
	Mail     *service.MailQueue
	Registry *prometheus.Registry

	// BasePath prefixes every route, e.g. /api/v1
	BasePath string
	// ResetTTL is how long a password reset link stays usable
	ResetTTL time.Duration
	// PublicURL is used to build the links sent in mails. Falls back to the
	// scheme and host of the request when empty
	PublicURL string
}

// NewDeps builds every dependency from the loaded config. config.Setup must
// have been called before
func NewDeps(ctx context.Context) (*Deps, error) {
	d := &Deps{
		BasePath:  v.GetString("app.base_path"),
		ResetTTL:  v.GetDuration("security.reset_token_ttl"),
		PublicURL: v.GetString("host.public_url"),
		Registry:  metrics.NewRegistry(),
	}

	debug := v.GetString("app.log_level") == "debug"

	conn, err := db.Open(v.GetString("database.driver"), v.GetString("database.dsn"), debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	d.DB = conn
	d.Users = store.NewUsers(conn)
	d.Tokens = store.NewVerificationTokens(conn)

	refreshTTL := v.GetDuration("jwt.refresh_ttl")

	switch v.GetString("cache.driver") {
	case "redis":
		d.Cache, err = cache.DialRedis(ctx, &redis.Options{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		}, v.GetString("redis.prefix"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis, %w", err)
		}
	default:
		d.Cache = cache.NewMemoryStore(refreshTTL)
	}

	d.Argon = &security.ArgonHash{
		Memory:      v.GetUint32("security.argon.memory"),
		Iterations:  v.GetUint32("security.argon.iterations"),
		Parallelism: uint8(v.GetUint("security.argon.parallelism")),
		SaltLength:  16,
		KeyLength:   32,
	}

	d.Issuer, err = security.NewTokenIssuer(security.TokenIssuerOpts{
		AccessSecret:  []byte(v.GetString("jwt.access_secret")),
		RefreshSecret: []byte(v.GetString("jwt.refresh_secret")),
		AccessTTL:     v.GetDuration("jwt.access_ttl"),
		RefreshTTL:    refreshTTL,
	}, d.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer, %w", err)
	}

	var sender service.Sender = service.LogSender{}
	if v.GetBool("mail.enabled") {
		sender, err = service.NewSMTPSender(service.SMTPConfig{
			Host:     v.GetString("mail.host"),
			Port:     v.GetInt("mail.port"),
			Username: v.GetString("mail.username"),
			Password: v.GetString("mail.password"),
			From:     v.GetString("mail.sender"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mail sender, %w", err)
		}
	}

	d.Mail = service.NewMailQueue(sender, v.GetInt("mail.queue_size"), v.GetInt("mail.workers"))
	d.Mail.StartWorkerPool()

	return d, nil
}

// Close stops the mail workers and releases the cache and database
func (d *Deps) Close() {
	if d.Mail != nil {
		d.Mail.Stop()
	}

	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			zap.L().Warn("Failed to close cache", zap.Error(err))
		}
	}

	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
