package app

import (
	"context"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/medchart/config"
	"github.com/Alijeyrad/medchart/internal/store"
	"github.com/Alijeyrad/medchart/internal/workspace"
	"github.com/Alijeyrad/medchart/pkg/authorize"
	"github.com/Alijeyrad/medchart/pkg/crypto"
	"github.com/Alijeyrad/medchart/pkg/database"
	"github.com/Alijeyrad/medchart/pkg/events"
	"github.com/Alijeyrad/medchart/pkg/observability"
	redispkg "github.com/Alijeyrad/medchart/pkg/redis"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideEntDriver),
	fx.Provide(ProvideSealer),
	fx.Provide(ProvideStore),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvideEventPublisher),
	fx.Provide(ProvideWorkspaces),
)

func ProvideEntDriver(lc fx.Lifecycle, cfg *config.Config) (*entsql.Driver, error) {
	drv, err := database.NewDriver(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return drv.Close()
		},
	})
	return drv, nil
}

func ProvideSealer(cfg *config.Config) (*crypto.Box, error) {
	return crypto.NewBox(cfg.Authentication.EncryptionKey)
}

// ProvideStore builds the chart store and, with auto_migrate set, applies the
// schema before the server accepts traffic.
func ProvideStore(lc fx.Lifecycle, cfg *config.Config, drv *entsql.Driver, box *crypto.Box) *store.Store {
	st := store.New(drv, box, store.WithLogger(slog.Default().With("component", "store")))
	if cfg.Database.Migrations.AutoMigrate {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				slog.Info("applying chart schema")
				return st.Migrate(ctx)
			},
		})
	}
	return st
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config) (authorize.IAuthorization, error) {
	acfg := authorize.FromCentralConfig(cfg.Authorization)
	dsn := database.NewDSN(cfg.CasbinDatabase)
	enforcer, cleanup, err := authorize.NewEnforcer(acfg, dsn)
	if err != nil {
		return nil, err
	}
	auth, err := authorize.NewAuthorization(enforcer, acfg)
	if err != nil {
		cleanup(context.Background())
		return nil, err
	}
	if acfg.EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, slog.Default())
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			return nil
		},
	})
	return auth, nil
}

// ProvideNatsClient connects to NATS. An empty URL disables chart events and
// yields a nil connection.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Events.NatsURL == "" {
		slog.Info("chart events disabled: no nats url configured")
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Events.NatsURL, nats.Name("medchart"))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideEventPublisher(nc *nats.Conn) events.Publisher {
	if nc == nil {
		return events.Nop{}
	}
	return events.NewNatsPublisher(nc, slog.Default())
}

// ProvideWorkspaces builds the per-clinician workspace registry backed by
// Redis. Shutdown waits for in-flight chart fetches.
func ProvideWorkspaces(lc fx.Lifecycle, cfg *config.Config, st *store.Store, rdb *redis.Client) (*workspace.Registry, error) {
	w := cfg.Workspace
	reg, err := workspace.NewRegistry(
		w.RegistrySize,
		st,
		workspace.NewRedisStore(rdb, time.Duration(w.StateTTLHours)*time.Hour),
		workspace.Options{
			FetchTimeout:    time.Duration(w.FetchTimeoutSeconds) * time.Second,
			WarmConcurrency: w.WarmConcurrency,
			Logger:          slog.Default().With("component", "workspace"),
		},
	)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				reg.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
	return reg, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(),
		observability.FromCentralConfig(cfg.Observability, cfg.Server.Environment))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
