package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectTimeout = 10 * time.Second

// Stores are the open database handles. Mongo and Chat stay nil when
// MONGO_URI is unset.
type Stores struct {
	Postgres *gorm.DB
	Mongo    *mongo.Client
	Chat     *mongo.Database
}

// OpenStores connects to PostgreSQL and, for chat, MongoDB
func OpenStores(ctx context.Context, cfg *Config) (*Stores, error) {
	pg, err := openPostgres(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	stores := &Stores{Postgres: pg}

	if !cfg.ChatEnabled() {
		log.Warn().Msg("MONGO_URI not set, chat and presence endpoints are disabled")
		return stores, nil
	}

	client, err := openMongo(ctx, cfg.MongoURI)
	if err != nil {
		stores.Close()
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	stores.Mongo = client
	stores.Chat = client.Database(cfg.MongoDatabase)
	return stores, nil
}

func openPostgres(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.IsDevelopment() {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.PostgresConnStr), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.PostgresMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.PostgresMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.PostgresConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, err
	}

	log.Info().Int("max_open_conns", cfg.PostgresMaxOpenConns).Msg("Connected to PostgreSQL")
	return db, nil
}

func openMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info().Msg("Connected to MongoDB")
	return client, nil
}

// Close releases every open connection, logging failures
func (s *Stores) Close() {
	if s.Postgres != nil {
		if sqlDB, err := s.Postgres.DB(); err != nil {
			log.Error().Err(err).Msg("Unwrap PostgreSQL pool")
		} else if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("Close PostgreSQL")
		}
	}
	if s.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Mongo.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("Close MongoDB")
		}
	}
	log.Info().Msg("Database connections closed")
}
