package main

import (
	"codebeyond/cmd/buildCFG"
	"codebeyond/internal/api/api"
	rabbitReader "codebeyond/internal/consumerWorker"
	"codebeyond/internal/i18n"
	"codebeyond/internal/mailer"
	"codebeyond/internal/model"
	"codebeyond/internal/rabbit"
	"codebeyond/internal/registry"
	"codebeyond/internal/repo"
	"codebeyond/internal/service"
	"context"
	"errors"
	"flag"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	zlog.Init()
	log := zlog.Logger

	cfg := config.New()
	if err := cfg.Load(*configPath, "", "REGISTRY"); err != nil {
		log.Fatal().Msgf("failed to load configuration: %v", err)
	}
	serverCfg := buildCFG.BuildServerConfig(cfg, &log)

	registryCfg, err := buildCFG.BuildRegistryConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build registry config")
	}

	var (
		repository    repo.Repository
		rollback      func()
		migrationPath string
	)
	switch registryCfg.Backend {
	case buildCFG.BackendSQLite:
		repository, err = repo.NewSQLite(context.Background(), registryCfg.SQLitePath, &log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite")
		}
		log.Info().Str("path", registryCfg.SQLitePath).Msg("SQLite opened successfully")
	default:
		masterDSN, slaveDSNs, poolOptions, err := buildCFG.BuildDBConfig(cfg, &log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build DB config")
		}
		db, err := dbpg.New(masterDSN, slaveDSNs, poolOptions)
		if err != nil {
			log.Fatal().Msgf("failed to connect to DB: %v", err)
		}
		log.Info().Msg("Database connected successfully")

		pg, err := repo.NewRepository(db, masterDSN, &log)
		if err != nil {
			log.Fatal().Msgf("failed to initialize repository: %v", err)
		}
		migrationPath, err = filepath.Abs(registryCfg.MigrationsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot resolve migrations path")
		}
		if err := pg.MigrateUp(migrationPath); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		if registryCfg.RollbackOnShutdown {
			rollback = func() {
				log.Info().Msg("Rolling back migrations...")
				if err := pg.MigrateDown(migrationPath); err != nil {
					log.Error().Msgf("failed to rollback migrations: %v", err)
				}
			}
		}
		repository = pg
	}
	defer func() {
		if err := repository.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close repository")
		}
	}()

	reg := registry.New(repository, &log, registry.WithReloadAfterMutation(registryCfg.ReloadAfterMutation))
	if err := reg.Load(context.Background()); err != nil {
		// The admin can retry through the reload endpoint.
		log.Error().Err(err).Msg("initial participant load failed")
	}

	mailerCfg, err := buildCFG.BuildMailerConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load mailer config")
	}
	rabbitCfg, err := buildCFG.BuildRabbitConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load RabbitMQ config")
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var (
		publisher rabbit.Publisher
		reader    *rabbitReader.Reader
	)
	if rabbitCfg.Enabled {
		rmq, err := rabbit.NewRabbit(rabbitCfg.Url, rabbitCfg.Exchange, rabbitCfg.Queue,
			string(model.StatusApproved), string(model.StatusRejected))
		if err != nil {
			log.Fatal().Msgf("Failed to connect to RabbitMQ: %v", err)
		}
		defer rmq.Close()
		publisher = rmq

		if mailerCfg.Enabled {
			translator := i18n.NewTranslator(mailerCfg.Locale, &log)
			sender := mailer.New(mailer.Config{
				Host:     mailerCfg.Host,
				Port:     mailerCfg.Port,
				From:     mailerCfg.From,
				Password: mailerCfg.Password,
				Locale:   mailerCfg.Locale,
			}, translator, &log)
			reader = rabbitReader.NewReader(rmq, sender, &log)
			reader.Start(workerCtx)
		}
	}

	serviceInstance := service.NewService(reg, &log, publisher, mailerCfg.Locale)
	app := api.NewRouters(&api.Routers{
		Service:    serviceInstance,
		AdminToken: serverCfg.AdminToken,
		Log:        &log,
		Mode:       serverCfg.Mode,
	})

	srv := &http.Server{
		Addr:    ":" + serverCfg.Port,
		Handler: app,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting server on %s", serverCfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		log.Info().Msgf("Received signal %s. Initiating shutdown...", sig)
	case err := <-serverErrChan:
		log.Error().Msgf("Server error: %v", err)
	}

	shutdown(&log, srv, serverCfg)

	cancelWorkers()
	if reader != nil {
		reader.Stop()
	}
	if rollback != nil {
		rollback()
	}
	log.Info().Msg("Shutdown complete")
}

func shutdown(log *zerolog.Logger, srv *http.Server, cfg buildCFG.ServerConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Msgf("Error shutting down server: %v", err)
	}
}
