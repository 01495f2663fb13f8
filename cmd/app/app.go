package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vietanh2810/school-portal/internal/api"
	"github.com/vietanh2810/school-portal/internal/config"
	"github.com/vietanh2810/school-portal/internal/db"
	"github.com/vietanh2810/school-portal/internal/logger"
	"github.com/vietanh2810/school-portal/internal/repository"
	"github.com/vietanh2810/school-portal/internal/repository/dao"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment, conf.Log.Level); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	config.Watch(configPath, func(c *config.AppConfig) {
		if err := logger.SetLevel(c.Log.Level); err != nil {
			zap.L().Warn("ignoring log level change", zap.Error(err))
			return
		}
		zap.L().Info("config reloaded", zap.String("logLevel", logger.Level().String()))
	}, func(err error) {
		zap.L().Warn("config reload failed", zap.Error(err))
	})

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	var chatDAO repository.ChatMessageDAO
	if conf.Chat.Store == "badger" {
		badgerDB, err := dao.OpenBadger(conf.Chat.BadgerPath)
		if err != nil {
			return fmt.Errorf("failed to open badger -> %w", err)
		}
		defer closeBadger(badgerDB)

		badgerDAO, err := dao.NewBadgerChatMessageDAO(badgerDB)
		if err != nil {
			return fmt.Errorf("failed to initialize badger chat store -> %w", err)
		}
		defer func() { _ = badgerDAO.Close() }()
		chatDAO = badgerDAO
	}

	s, err := api.NewServer(conf, postgresDB, chatDAO)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	return serve(s)
}

func serve(s *api.Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + s.Config.API.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", addr), zap.String("chatStore", s.Config.Chat.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down", zap.Int("openChats", s.ChatHub.Registry().Size()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.API.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	s.ChatHub.Registry().CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown -> %w", err)
	}

	return nil
}

func closeBadger(db *badger.DB) {
	if err := db.Close(); err != nil {
		zap.L().Error("closing badger", zap.Error(err))
	}
}
