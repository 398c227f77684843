package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	credentialService "didanchor/internal/credential/service"
	didService "didanchor/internal/did/service"
	"didanchor/internal/eventlog/relay"
	"didanchor/internal/indexer"
	issuerService "didanchor/internal/issuer/service"
	jwttoken "didanchor/internal/jwt_token"
	"didanchor/internal/ledger"
	"didanchor/internal/ledger/store"
	"didanchor/internal/platform/config"
	"didanchor/internal/platform/httpserver"
	"didanchor/internal/platform/kafka"
	"didanchor/internal/platform/logger"
	"didanchor/internal/platform/metrics"
	"didanchor/internal/platform/postgres"
	platformredis "didanchor/internal/platform/redis"
	httptransport "didanchor/internal/transport/http"
	"didanchor/pkg/platform/tx"
)

const (
	jwtIssuer   = "didanchor"
	jwtAudience = "didanchor-api"
)

// main wires high-level dependencies, exposes the HTTP router and runs the
// background workers until a signal arrives.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	admin, err := cfg.AdminKey()
	if err != nil {
		return err
	}
	m := metrics.New()

	backend, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.close()

	if err := backend.store.Init(ctx, ledger.Genesis(admin)); err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}

	exec := ledger.NewExecutor(backend.store,
		ledger.WithLogger(log),
		ledger.WithMetrics(ledger.NewMetrics(m.Registry)),
	)

	keys, err := cfg.VerifierKeys()
	if err != nil {
		return err
	}
	var verifier credentialService.ProofVerifier
	if len(keys) > 0 {
		verifier = credentialService.NewSignedProofVerifier(keys...)
	} else {
		log.Warn("no proof verifier keys configured, zero-knowledge submissions will be rejected")
	}

	dids := didService.New(exec, didService.WithLogger(log))
	issuers := issuerService.New(exec, issuerService.WithLogger(log))
	credentials := credentialService.New(exec, verifier,
		credentialService.WithLogger(log),
		credentialService.WithMetrics(credentialService.NewMetrics(m.Registry)),
		credentialService.WithPolicy(cfg.Policy.Policy()),
	)
	index := indexer.New(backend.store, indexer.WithLogger(log))

	routerCfg := httptransport.RouterConfig{
		Logger:  log,
		Observe: m.ObserveRequest,
		Metrics: m.Handler(),
		Ready:   backend.ready,
	}
	if cfg.Server.JWTSigningKey != "" {
		tokens := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, jwtIssuer, jwtAudience)
		routerCfg.Validator = jwttoken.NewJWTServiceAdapter(tokens)
	} else {
		log.Warn("no JWT signing key configured, sender-only routes are disabled")
	}
	handler := httptransport.New(dids, issuers, credentials, exec, index, log)
	srv := httpserver.New(cfg.Server, httptransport.NewRouter(handler, routerCfg))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log)
	})
	g.Go(func() error {
		return index.Run(ctx, cfg.Ledger.IndexerInterval)
	})

	if cfg.Kafka.Enabled() {
		r, closeRelay, err := newRelay(ctx, cfg, backend, log)
		if err != nil {
			return err
		}
		defer closeRelay()
		g.Go(func() error {
			return r.Run(ctx, cfg.Kafka.PollInterval)
		})
	}

	log.Info("didanchor started",
		"addr", cfg.Server.Addr,
		"backend", cfg.Ledger.Backend,
		"admin", admin.String(),
	)
	return g.Wait()
}

// stateBackend is the opened ledger store plus whatever it holds open.
type stateBackend struct {
	store  ledger.Store
	redis  *platformredis.Client
	ready  func(ctx context.Context) error
	closer func()
}

func (b stateBackend) close() {
	if b.closer != nil {
		b.closer()
	}
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (stateBackend, error) {
	switch cfg.Ledger.Backend {
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return stateBackend{}, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return stateBackend{}, err
		}
		runner := tx.NewRunner(db, cfg.Postgres.TxTimeout)
		return stateBackend{
			store:  store.NewPostgres(db, runner),
			ready:  db.PingContext,
			closer: func() { _ = db.Close() },
		}, nil
	case config.BackendRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return stateBackend{}, err
		}
		return stateBackend{
			store:  store.NewRedis(client.Client, cfg.Redis.KeyPrefix),
			redis:  client,
			ready:  client.Health,
			closer: func() { _ = client.Close() },
		}, nil
	case config.BackendBolt:
		b, err := store.OpenBolt(cfg.Bolt.Path, cfg.Bolt.Timeout)
		if err != nil {
			return stateBackend{}, err
		}
		return stateBackend{store: b, closer: func() { _ = b.Close() }}, nil
	default:
		log.Warn("using in-memory ledger, state is lost on restart")
		return stateBackend{store: store.NewMemory()}, nil
	}
}

// newRelay publishes committed events to Kafka. The cursor lives in Redis
// when Redis is the ledger backend, so a restart resumes where it stopped.
func newRelay(ctx context.Context, cfg config.Config, backend stateBackend, log *slog.Logger) (*relay.Relay, func(), error) {
	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return nil, nil, err
	}
	if err := kafka.EnsureTopic(ctx, producer, cfg.Kafka); err != nil {
		producer.Close()
		return nil, nil, err
	}

	var cursor relay.Cursor = &relay.MemoryCursor{}
	if backend.redis != nil {
		cursor = relay.NewRedisCursor(backend.redis.Client, cfg.Redis.KeyPrefix+":relay:cursor")
	}
	r := relay.New(backend.store, producer, cfg.Kafka.Topic,
		relay.WithLogger(log),
		relay.WithCursor(cursor),
		relay.WithBatchSize(cfg.Kafka.BatchSize),
	)
	return r, producer.Close, nil
}
