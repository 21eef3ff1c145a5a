package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"instamakaan/cmd"
	"instamakaan/internal/data/repository"
	"instamakaan/internal/wire"
	"instamakaan/pkg/database"
	"instamakaan/pkg/mailer"
	"instamakaan/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("port", config.App.Port),
		zap.String("db_driver", config.Database.Driver),
		zap.Bool("debug", config.App.Debug),
	)

	// Email delivery
	mail, err := newMailer(config, logger)
	if err != nil {
		logger.Fatal("Failed to set up email delivery", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the configured store
	repos, store, closeStore, err := openStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer closeStore()

	logger.Info("Database connected successfully")

	tokens := utils.NewTokenIssuer(config.JWT, config.App.Name)

	// Wire all dependencies
	app := wire.Wiring(repos, store, mail, tokens, config, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}

// newMailer picks SMTP delivery. The log mailer prints codes and reset
// links, so it is only allowed in DEBUG.
func newMailer(config *utils.Config, logger *zap.Logger) (mailer.Mailer, error) {
	if config.Email.Configured() {
		return mailer.NewSMTPMailer(config.Email, config.App.Name, logger), nil
	}
	if !config.App.Debug {
		return nil, errors.New("SMTP_HOST, SMTP_USER and SMTP_PASS are required unless DEBUG is set")
	}
	logger.Warn("SMTP not configured, emails will only be logged")
	return mailer.NewLogMailer(config.App.Name, logger), nil
}

func openStore(ctx context.Context, config *utils.Config, logger *zap.Logger) (*repository.Repository, wire.Pinger, func(), error) {
	switch config.Database.Driver {
	case "postgres":
		db, err := database.InitPostgres(ctx, config.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewRepository(db, logger), db, db.Close, nil

	case "mongo", "":
		client, err := database.InitMongo(ctx, config.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(closeCtx); err != nil {
				logger.Warn("Failed to close mongo client", zap.Error(err))
			}
		}

		repos, err := repository.NewMongoRepository(ctx, client.Database(), logger)
		if err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		return repos, client, closeFn, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", config.Database.Driver)
	}
}
