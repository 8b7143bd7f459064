// Command authkit-demo runs the full client flow against an embedded
// stub of the StockWise auth API: hydrate, login, verify, reload,
// permission checks, logout. Useful for eyeballing the SDK's behavior
// and audit/metrics output without a real backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	authkit "github.com/stockwise/authkit"
	"github.com/stockwise/authkit/metrics/export/prometheus"
	"github.com/stockwise/authkit/permission"
	"github.com/stockwise/authkit/session"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("demo failed")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := authkit.ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Audit.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	// Embedded Redis for the durable slots, so the demo survives
	// nothing but demonstrates the persistence path end to end.
	mr, err := miniredis.Run()
	if err != nil {
		return fmt.Errorf("start embedded redis: %w", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	// Embedded stub of the auth API.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	stub := newStubBackend(30 * time.Second)
	server := &http.Server{Handler: stub.router()}
	cfg.Server.BaseURL = "http://" + listener.Addr().String()

	manager, err := authkit.New().
		WithConfig(cfg).
		WithProfileSlot(session.NewRedisSlot(rdb, cfg.Storage.ProfileKey, cfg.Storage.RedisTTL)).
		WithCredentialSlot(session.NewRedisSlot(rdb, cfg.Storage.CredentialKey, cfg.Storage.RedisTTL)).
		WithAuditSink(authkit.NewJSONWriterSink(os.Stdout)).
		WithLogger(log).
		WithNavigator(authkit.NavigatorFunc(func(route string) {
			log.WithField("route", route).Info("navigate")
		})).
		Build()
	if err != nil {
		return fmt.Errorf("build manager: %w", err)
	}
	defer manager.Close()

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
		return flow(ctx, manager, log)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	exporter := prometheus.NewPrometheusExporter(manager)
	fmt.Println("---- metrics ----")
	fmt.Print(exporter.Render())
	return nil
}

func flow(ctx context.Context, manager *authkit.Manager, log *logrus.Logger) error {
	if err := manager.Hydrate(ctx); err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}
	<-manager.Hydrated()
	log.WithField("phase", manager.Phase()).Info("hydrated")

	result, err := manager.Login(ctx, "bodeguero@stockwise.test", "secreto123")
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	log.WithFields(logrus.Fields{
		"user":  result.Identity.Name,
		"role":  result.Identity.Role.Label(),
		"route": result.Route,
	}).Info("logged in")

	verify, err := manager.VerifySession(ctx, permission.ModuleInventario)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	log.WithFields(logrus.Fields{
		"authenticated": verify.Authenticated,
		"permission":    verify.HasPermission,
		"modules":       verify.AccessibleModules,
	}).Info("session verified")

	if err := manager.RefreshIdentity(ctx); err != nil {
		log.WithError(err).Warn("identity reload failed")
	}

	for _, check := range []struct {
		module string
		cap    authkit.Capability
	}{
		{permission.ModuleInventario, authkit.CapCreate},
		{permission.ModuleInventario, authkit.CapDelete},
		{permission.ModuleUsuarios, authkit.CapView},
	} {
		log.WithFields(logrus.Fields{
			"module":  check.module,
			"allowed": manager.CanPerform(check.module, check.cap),
		}).Info("permission check")
	}

	if err := manager.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	log.WithField("phase", manager.Phase()).Info("logged out")
	return nil
}
