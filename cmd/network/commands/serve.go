package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jserwatka/network/internal/consumer"
	"github.com/jserwatka/network/internal/handler"
	"github.com/jserwatka/network/internal/reconciler"
	"github.com/jserwatka/network/internal/repository"
	"github.com/jserwatka/network/internal/service"
	"github.com/jserwatka/network/internal/store"
	"github.com/jserwatka/network/pkg/jwt"
	pkglog "github.com/jserwatka/network/pkg/log"
	"github.com/jserwatka/network/pkg/middleware"
	"github.com/jserwatka/network/pkg/pubsub"
)

var skipMigrate bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not migrate the schema on startup")
}

func runServe() error {
	// 1. Load configuration and logger
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := pkglog.L()

	// 2. Init DB
	db, err := openDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	defer sqlDB.Close()

	if !skipMigrate {
		if err := migrate(db, cfg.Database.Driver); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Follow graph backend
	graph, err := openGraph(ctx, cfg.Graph, db)
	if err != nil {
		return err
	}
	defer graph.close(context.Background())
	logger.Info().Str("driver", cfg.Graph.Driver).Msg("follow graph ready")

	// 4. Counter cache
	var counters store.CounterStore = store.NopCounterStore{}
	if cfg.Redis.Address != "" {
		redisStore, err := store.NewRedisCounterStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, profile counters are not cached")
		} else {
			counters = redisStore
			logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
		}
	} else {
		logger.Warn().Msg("REDIS_ADDRESS not configured; profile counters are not cached")
	}
	defer counters.Close()

	// 5. Event publisher
	publisher, err := pubsub.NewPublisher(cfg.Events)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	// 6. Tokens
	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Duration, cfg.JWT.Issuer)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}

	// 7. Repositories and services
	userRepo := repository.NewGormUserRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	reactionRepo := repository.NewGormReactionRepository(db)

	social := service.NewSocialGraphService(graph.repo, userRepo, counters, publisher)
	services := handler.Services{
		Users:     service.NewUserService(userRepo, graph.repo, counters, tokens),
		Social:    social,
		Content:   service.NewContentService(postRepo, commentRepo, publisher),
		Reactions: service.NewReactionService(reactionRepo, publisher),
		Feed: service.NewFeedService(service.FeedDeps{
			Posts:     postRepo,
			Comments:  commentRepo,
			Reactions: reactionRepo,
			Users:     userRepo,
			Graph:     graph.repo,
			Social:    social,
		}),
	}

	// 8. Kafka CDC consumer
	var cdc *consumer.ConfluentConsumer
	if cfg.Kafka.Brokers != "" {
		kc, err := consumer.NewConfluentConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, social)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to create kafka consumer, CDC updates disabled")
		} else if err := kc.Start(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to start kafka consumer")
		} else {
			cdc = kc
		}
	} else {
		logger.Warn().Msg("KAFKA_BROKERS not configured; CDC consumer disabled")
	}

	// 9. Reconciler
	rec := reconciler.New(counters, graph.repo, cfg.Reconciler)
	rec.Start(ctx)
	logger.Info().Dur("interval", cfg.Reconciler.Interval).Int("top_n", cfg.Reconciler.TopN).Msg("reconciler started")

	// 10. Router and HTTP server
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger, pkglog.WithSkipPaths("/health")))
	handler.NewHandler(services, middleware.NewAuthMiddleware(tokens)).RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("network starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 11. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("HTTP server error")
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		cancel()

		if cdc != nil {
			if err := cdc.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing kafka consumer")
			}
		}

		rec.Stop()
		<-rec.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
		}
	}()

	select {
	case <-shutdownDone:
		logger.Info().Msg("network stopped")
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("shutdown timed out after 30s")
	}
	return nil
}
