package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harrylevesque/clientdir/internal/api"
	"github.com/harrylevesque/clientdir/internal/auth"
	"github.com/harrylevesque/clientdir/internal/certs"
	"github.com/harrylevesque/clientdir/internal/clients"
	"github.com/harrylevesque/clientdir/internal/config"
	"github.com/harrylevesque/clientdir/internal/geocoding"
	"github.com/harrylevesque/clientdir/internal/ratelimit"
	"github.com/harrylevesque/clientdir/internal/remote"
	"github.com/harrylevesque/clientdir/internal/utils"
)

const (
	sessionPruneInterval = 10 * time.Minute
	certRenewWarning     = 30 * 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	log, closer, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		logrus.WithError(err).Fatal("init logger")
	}
	defer closer.Close()

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("server stopped")
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	seed := auth.DefaultSeed()
	if cfg.UsersFile != "" {
		loaded, err := auth.LoadSeed(cfg.UsersFile)
		if err != nil {
			return err
		}
		seed = loaded
	}
	store, err := auth.NewStore(seed)
	if err != nil {
		return err
	}
	log.WithField("users", store.Len()).Info("account store ready")

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	resolver := geocoding.New(cfg.CEPAPIURL,
		geocoding.WithHTTPClient(httpClient),
		geocoding.WithLogger(log.WithField("component", "geocoding")),
	)
	repo := clients.NewRepository(
		remote.New(cfg.UsersAPIURL, httpClient),
		resolver,
		clients.WithLogger(log.WithField("component", "clients")),
	)
	sessions := auth.NewSessions(cfg.SessionTTL)

	limiter := ratelimit.New(cfg.LoginRate, cfg.LoginBurst, time.Hour)
	handlers := api.NewHandlers(api.Deps{
		Clients:  repo,
		Postal:   resolver,
		Accounts: store,
		Sessions: sessions,
		Limiter:  limiter,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(handlers),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if cfg.TLSEnabled() {
		tlsCfg, err := loadTLS(cfg, log)
		if err != nil {
			return err
		}
		srv.TLSConfig = tlsCfg
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go prune(ctx, sessions, limiter, log)

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Addr, "tls": cfg.TLSEnabled()}).Info("server running")
		if cfg.TLSEnabled() {
			errCh <- srv.ListenAndServeTLS("", "")
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loadTLS builds the server TLS config and warns when the certificate is
// close to expiry.
func loadTLS(cfg config.Config, log logrus.FieldLogger) (*tls.Config, error) {
	cm := certs.NewCertManager(cfg.TLSCertFile, cfg.TLSKeyFile)
	tlsCfg, leaf, err := cm.TLSConfig()
	if err != nil {
		return nil, err
	}
	if cm.ExpiresWithin(leaf, certRenewWarning) {
		log.WithField("not_after", leaf.NotAfter).Warn("TLS certificate expires within 30 days")
	}
	return tlsCfg, nil
}

func prune(ctx context.Context, sessions *auth.Sessions, limiter *ratelimit.Limiter, log logrus.FieldLogger) {
	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := sessions.Prune()
			log.WithFields(logrus.Fields{
				"pruned":         n,
				"throttled_keys": limiter.Keys(),
			}).Debug("expired sessions removed")
		}
	}
}
