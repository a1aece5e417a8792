package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/jserwatka/network/internal/config"
	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/internal/repository"
	"github.com/jserwatka/network/pkg/database"
	pkglog "github.com/jserwatka/network/pkg/log"
)

func openDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.Driver == "sqlite" && cfg.FilePath != "" && !strings.HasPrefix(cfg.FilePath, ":memory:") {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	return database.New(&database.Config{
		Driver:          cfg.Driver,
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		DBName:          cfg.DBName,
		SSLMode:         cfg.SSLMode,
		FilePath:        cfg.FilePath,
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxOpenConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		LogLevel:        cfg.LogLevel,
	})
}

// migrate creates or updates every table. On postgres the follows table also
// gets full replica identity so CDC delete events carry the whole row.
func migrate(db *gorm.DB, driver string) error {
	logger := pkglog.L()

	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	logger.Info().Msg("database migration completed")

	if driver == "postgres" {
		if err := db.Exec(`ALTER TABLE follows REPLICA IDENTITY FULL`).Error; err != nil {
			return fmt.Errorf("failed to set REPLICA IDENTITY FULL on follows table: %w", err)
		}
		logger.Info().Msg("follows table REPLICA IDENTITY FULL set")
	}
	return nil
}

// graphBackend selects where follow edges live.
type graphBackend struct {
	repo  repository.FollowRepository
	close func(context.Context) error
}

func openGraph(ctx context.Context, cfg config.GraphConfig, db *gorm.DB) (*graphBackend, error) {
	switch cfg.Driver {
	case "", "sql":
		return &graphBackend{
			repo:  repository.NewGormFollowRepository(db),
			close: func(context.Context) error { return nil },
		}, nil

	case "neo4j":
		exec, err := repository.NewNeo4jExecutor(cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database)
		if err != nil {
			return nil, err
		}
		if err := exec.Verify(ctx); err != nil {
			exec.Close(ctx)
			return nil, fmt.Errorf("neo4j unreachable: %w", err)
		}
		repo := repository.NewNeo4jFollowRepository(exec)
		if err := repo.EnsureSchema(ctx); err != nil {
			exec.Close(ctx)
			return nil, err
		}
		return &graphBackend{repo: repo, close: exec.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported graph driver: %s", cfg.Driver)
	}
}
