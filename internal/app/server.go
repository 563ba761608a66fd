package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/storefront/internal/events"
	"example.com/storefront/internal/logx"
	"example.com/storefront/internal/model"
	"example.com/storefront/internal/service"
)

// NewServer connects storage, migrates, wires services and returns the
// router together with a cleanup func that releases every connection.
func NewServer(cfg Config) (*gin.Engine, func(), error) {
	gormCfg := &gorm.Config{}
	if cfg.IsProd() {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	closers := []func(){func() {
		if s, err := db.DB(); err == nil {
			_ = s.Close()
		}
	}}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if err := db.AutoMigrate(model.All()...); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	var rdb redis.UniversalClient
	if cfg.Redis.Enabled() {
		client, err := cfg.Redis.New()
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		rdb = client
		closers = append(closers, func() { _ = client.Close() })
		logx.Info().Dur("ttl", cfg.Redis.TTL).Msg("catalog cache enabled")
	}

	pub := events.New(cfg.Kafka)
	closers = append(closers, func() {
		if err := pub.Close(); err != nil {
			logx.Warn().Err(err).Msg("close event publisher")
		}
	})
	if len(cfg.Kafka.Brokers) > 0 {
		logx.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("event publishing enabled")
	}

	svc := NewServices(db, cfg.JWTSecret, pub, rdb, cfg.Redis.TTL)
	if err := bootstrap(context.Background(), cfg, svc); err != nil {
		cleanup()
		return nil, nil, err
	}

	return NewRouter(cfg.IsProd(), svc), cleanup, nil
}

func bootstrap(ctx context.Context, cfg Config, svc Services) error {
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := svc.Auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		logx.Info().Str("email", cfg.AdminEmail).Msg("admin account ready")
	}
	if cfg.SeedDemo {
		system := service.WithPrincipal(ctx, service.Principal{IsAdmin: true})
		res, err := svc.Seed.Seed(system)
		if err != nil {
			return fmt.Errorf("seed demo catalog: %w", err)
		}
		if res.Created && svc.Invalidator != nil {
			svc.Invalidator.Invalidate(ctx)
		}
		logx.Info().Bool("created", res.Created).Int("products", res.Products).Msg("demo catalog seeded")
	}
	return nil
}
