// Package bootstrap assembles the storage backends and the ledger from
// configuration. It is shared by the API server and the admin CLI so both
// operate on the same persisted collections.
package bootstrap

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lumina-ai/studio/internal/api/handler"
	"github.com/lumina-ai/studio/internal/core/ports"
	"github.com/lumina-ai/studio/internal/core/service"
	mongodb "github.com/lumina-ai/studio/internal/infrastructure/db/mongo"
	pgdb "github.com/lumina-ai/studio/internal/infrastructure/db/postgres"
	redisdb "github.com/lumina-ai/studio/internal/infrastructure/db/redis"
	"github.com/lumina-ai/studio/internal/infrastructure/kv"
	"github.com/lumina-ai/studio/internal/infrastructure/queue"
	"github.com/lumina-ai/studio/internal/pkg/config"
)

// Backends holds the open connections and the key-value store built on them.
type Backends struct {
	Store   *kv.Store
	Pingers map[string]handler.Pinger

	mongoClient *mongo.Client
	mongoDB     *mongo.Database
	redis       *redis.Client
	pg          *pgxpool.Pool
	log         zerolog.Logger
}

// Open connects the configured store backend. A backend that cannot be
// reached is logged and skipped; the store then runs on process memory.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) *Backends {
	b := &Backends{Pingers: make(map[string]handler.Pinger), log: log}
	var medium kv.Medium

	if cfg.Store.Backend == config.BackendRedis || cfg.Redis.Enabled {
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable")
		} else {
			b.redis = client
			m := redisdb.NewMedium(client)
			b.Pingers["redis"] = m
			if cfg.Store.Backend == config.BackendRedis {
				medium = m
			}
		}
	}

	switch cfg.Store.Backend {
	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "lumina-studio",
		})
		if err != nil {
			log.Warn().Err(err).Msg("mongo unavailable")
			break
		}
		b.mongoClient, b.mongoDB = client, db
		m := mongodb.NewMedium(db)
		b.Pingers["mongodb"] = m
		medium = m

		if err := mongodb.NewAuditRepository(db).EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to ensure audit indexes")
		}

	case config.BackendPostgres:
		pool, err := pgdb.Connect(ctx, pgdb.Config{DSN: cfg.Postgres.DSN})
		if err != nil {
			log.Warn().Err(err).Msg("postgres unavailable")
			break
		}
		m := pgdb.NewMedium(pool)
		if err := m.EnsureSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("postgres schema unavailable")
			pool.Close()
			break
		}
		b.pg = pool
		b.Pingers["postgres"] = m
		medium = m
	}

	b.Store = kv.NewStore(medium, cfg.Store.KeyPrefix, log.With().Str("component", "kv").Logger())
	if !b.Store.Durable(ctx) {
		log.Warn().Str("backend", cfg.Store.Backend).Msg("persisting to process memory only")
	}
	return b
}

// AuditSink returns the Mongo audit trail when Mongo is connected and the
// structured log otherwise.
func (b *Backends) AuditSink() ports.AuditSink {
	if b.mongoDB != nil {
		return mongodb.NewAuditRepository(b.mongoDB)
	}
	return queue.NewLogSink(b.log.With().Str("component", "audit").Logger())
}

// InFlightGuard returns the Redis guard when Redis is connected, so duplicate
// detection spans replicas, and a process-local guard otherwise.
func (b *Backends) InFlightGuard() ports.InFlightGuard {
	if b.redis != nil {
		return redisdb.NewInFlightGuard(b.redis)
	}
	return kv.NewInFlightGuard(0)
}

// Close releases every open connection.
func (b *Backends) Close(ctx context.Context) {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			b.log.Warn().Err(err).Msg("redis close failed")
		}
	}
	if b.mongoClient != nil {
		if err := b.mongoClient.Disconnect(ctx); err != nil {
			b.log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}
	if b.pg != nil {
		b.pg.Close()
	}
}

// NewLedger builds the ledger and provisions the configured admin account.
// The bootstrap credential is hashed here so it never reaches the store in
// plain text.
func NewLedger(ctx context.Context, cfg *config.Config, store ports.KVStore, events ports.EventPublisher, log zerolog.Logger) (*service.LedgerService, error) {
	seed := service.AdminSeed{
		Email: cfg.Ledger.AdminEmail,
		Name:  cfg.Ledger.AdminName,
		Coins: cfg.Ledger.AdminCoins,
	}
	if cfg.Ledger.AdminPassword != "" {
		hash, err := service.HashPassword(cfg.Ledger.AdminPassword, 0)
		if err != nil {
			return nil, err
		}
		seed.PasswordHash = hash
	} else {
		log.Warn().Msg("ADMIN_PASSWORD not set, admin login disabled until a credential is provisioned")
	}

	return service.NewLedgerService(ctx, store, service.LedgerOptions{
		DailyReward: cfg.Ledger.DailyReward,
		Location:    cfg.Location(),
		Admin:       seed,
		Events:      events,
	}, log.With().Str("component", "ledger").Logger()), nil
}

// NewAuth builds the token-only auth gateway the API server uses. Web
// sign-ins never touch the operator's local session.
func NewAuth(cfg *config.Config, ledger *service.LedgerService, store ports.KVStore, log zerolog.Logger) *service.AuthService {
	return service.NewAuthService(ledger, store, authOptions(cfg, false), log.With().Str("component", "auth").Logger())
}

// NewLocalAuth builds the auth gateway for the operator CLI, which keeps the
// signed-in user under the persisted session key.
func NewLocalAuth(cfg *config.Config, ledger *service.LedgerService, store ports.KVStore, log zerolog.Logger) *service.AuthService {
	return service.NewAuthService(ledger, store, authOptions(cfg, true), log.With().Str("component", "auth").Logger())
}

func authOptions(cfg *config.Config, localSession bool) service.AuthOptions {
	return service.AuthOptions{
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		SignupBonus:  cfg.Ledger.SignupBonus,
		LocalSession: localSession,
	}
}
