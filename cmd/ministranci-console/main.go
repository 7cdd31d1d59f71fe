package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/celerix-dev/ministranci-console/internal/api"
	"github.com/celerix-dev/ministranci-console/internal/archive"
	"github.com/celerix-dev/ministranci-console/internal/config"
	"github.com/celerix-dev/ministranci-console/internal/console"
	"github.com/celerix-dev/ministranci-console/internal/logging"
	"github.com/celerix-dev/ministranci-console/internal/session"
	"github.com/celerix-dev/ministranci-console/internal/vault"
	"github.com/celerix-dev/ministranci-console/pkg/sdk"
)

const sweepInterval = 5 * time.Minute

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, "ministranci-console")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Backend connection
	backend, err := sdk.Connect(ctx, cfg.API, logger.Named("sdk"))
	if err != nil {
		logger.Fatal("Failed to connect to backend", zap.String("url", cfg.API.BaseURL), zap.Error(err))
	}
	logger.Info("Connected to backend", zap.String("url", cfg.API.BaseURL), zap.String("user", cfg.API.Username))

	// 3. Sessions and archive
	sessions := session.NewStore(cfg.SessionTTL)
	sweeperStop := make(chan struct{})
	sessions.StartSweeper(sweepInterval, sweeperStop)

	arch, err := archive.New(filepath.Join(cfg.DataDir, "archive"))
	if err != nil {
		logger.Fatal("Failed to initialize archive", zap.String("dir", cfg.DataDir), zap.Error(err))
	}

	key := vault.DeriveKey(cfg.SessionKey)
	if cfg.SessionKey == "" {
		if key, err = vault.NewKey(); err != nil {
			logger.Fatal("Failed to generate session key", zap.Error(err))
		}
		logger.Warn("CONSOLE_SESSION_KEY not set, sessions will not survive a restart")
	}

	// 4. HTTP console
	if logging.ParseLevel(cfg.LogLevel) != zap.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	h := &api.Handler{
		Backend:      backend,
		Sessions:     sessions,
		Archive:      arch,
		Key:          key,
		Viewer:       console.Viewer{Username: cfg.API.Username, Role: cfg.ViewerRole},
		Logger:       logger,
		SecureCookie: !cfg.DisableTLS,
	}
	h.Register(r)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 5. TLS
	if !cfg.DisableTLS {
		logger.Info("Generating self-signed certificate for the console listener")
		cert, err := vault.GenerateSelfSignedCert()
		if err != nil {
			logger.Fatal("Failed to generate TLS certificate", zap.Error(err))
		}
		srv.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	} else {
		logger.Info("TLS disabled (CONSOLE_DISABLE_TLS=true)")
	}

	go func() {
		logger.Info("Console listening", zap.String("addr", srv.Addr), zap.Bool("tls", srv.TLSConfig != nil))
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 6. Graceful shutdown
	<-ctx.Done()
	logger.Info("Shutdown signal received, draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", zap.Error(err))
	}
	close(sweeperStop)
	sessions.Wait()
	logger.Info("Console stopped")
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
