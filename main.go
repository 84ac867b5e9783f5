package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keijiban/auth"
	"keijiban/config"
	"keijiban/handlers"
	"keijiban/routes"
	"keijiban/services"
	"keijiban/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	st, cleanup, err := openStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("storage init failed")
	}
	defer cleanup()

	h := &handlers.Handler{
		Cfg:   cfg,
		Posts: services.NewPostService(st),
	}

	switch cfg.AuthMode {
	case config.AuthModeRole:
		users := services.NewUserService(st)
		h.Users = users
		h.Authz = &auth.RoleAuthorizer{Users: users}
	case config.AuthModeKey:
		if cfg.AdminKey == "" {
			logrus.Fatal("ADMIN_KEY must be set when AUTH_MODE=key")
		}
		h.Authz = &auth.KeyAuthorizer{Key: cfg.AdminKey}
	default:
		logrus.WithField("mode", cfg.AuthMode).Fatal("unknown AUTH_MODE")
	}

	router := routes.SetupRouter(cfg, h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"mode":    cfg.AuthMode,
			"storage": cfg.StorageDriver,
		}).Info("keijiban listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("forced shutdown")
	}
	logrus.Info("server stopped")
}

func openStore(cfg *config.Config) (store.Store, func(), error) {
	seed := services.BootstrapDocument(cfg.AuthMode == config.AuthModeRole)

	switch cfg.StorageDriver {
	case config.DriverFile:
		return store.NewFileStore(cfg.DataFile, seed), func() {}, nil

	case config.DriverMongo:
		var (
			st  *store.MongoStore
			err error
		)
		for attempt := 1; attempt <= 3; attempt++ {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			st, err = store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB, seed)
			cancel()
			if err == nil {
				break
			}
			logrus.WithError(err).WithField("attempt", attempt).Warn("mongo connection failed")
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := st.Close(ctx); err != nil {
				logrus.WithError(err).Warn("mongo disconnect failed")
			}
		}
		return st, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
