package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/idlink/internal/cache"
	memcache "github.com/dropDatabas3/idlink/internal/cache/memory"
	rediscache "github.com/dropDatabas3/idlink/internal/cache/redis"
	"github.com/dropDatabas3/idlink/internal/config"
	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/email"
	loginctrl "github.com/dropDatabas3/idlink/internal/http/controllers/login"
	"github.com/dropDatabas3/idlink/internal/http/router"
	loginsvc "github.com/dropDatabas3/idlink/internal/http/services/login"
	"github.com/dropDatabas3/idlink/internal/metrics"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
	"github.com/dropDatabas3/idlink/internal/resolver"
	"github.com/dropDatabas3/idlink/internal/store/cached"
	memstore "github.com/dropDatabas3/idlink/internal/store/memory"
	"github.com/dropDatabas3/idlink/internal/store/pg"
	migrations "github.com/dropDatabas3/idlink/migrations/postgres"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is a dev convenience; absence is fine.
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:           "idlink",
		Short:         "Identity resolution and account linking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("IDLINK_CONFIG"), "path to YAML config")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(migrateCmd(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				Level:       cfg.Log.Level,
				ServiceName: "idlink",
				Version:     version,
			})
			defer func() { _ = logger.Sync() }()
			log := logger.With(logger.Component("main"))

			store, ready, cleanup, err := buildStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("build store: %w", err)
			}
			defer cleanup()

			metricsHandler, err := metrics.Register(nil)
			if err != nil {
				return fmt.Errorf("register metrics: %w", err)
			}

			shipping, billing := cfg.SyncOptionsClasses()
			syncOpts := resolver.SyncOptions{
				SyncContactInfo:   *cfg.Sync.ContactInfo,
				SyncAddresses:     *cfg.Sync.Addresses,
				ShouldSaveContact: true,
			}
			if shipping {
				syncOpts.AddressClasses |= repository.AddressClassShipping
			}
			if billing {
				syncOpts.AddressClasses |= repository.AddressClassBilling
			}

			var notifier *email.Notifier
			if cfg.SMTP.Host != "" {
				sender := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port,
					cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
				if cfg.SMTP.TLS != "" {
					sender.TLSMode = cfg.SMTP.TLS
				}
				sender.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
				notifier = email.NewNotifier(sender)
			}

			service := loginsvc.NewService(loginsvc.Deps{
				Store:    store,
				Notifier: notifier,
				Sync:     syncOpts,
			})

			handler := router.New(router.Deps{
				Login:          loginctrl.NewController(service),
				MetricsHandler: metricsHandler,
				Ready:          ready,
			})

			srv := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      handler,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("http server listening",
					logger.String("addr", cfg.Server.Addr),
					logger.String("storage", cfg.Storage.Driver),
				)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				log.Info("shutting down", logger.String("signal", sig.String()))
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Apply the embedded PostgreSQL migrations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("storage driver is %q, migrations need postgres", cfg.Storage.Driver)
			}

			action := "up"
			if len(args) == 1 {
				action = strings.ToLower(args[0])
			}
			suffix := "_up.sql"
			if action == "down" {
				suffix = "_down.sql"
			} else if action != "up" {
				return fmt.Errorf("unknown action %q, use up or down", action)
			}

			ctx := cmd.Context()
			pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
			if err != nil {
				return fmt.Errorf("pgxpool: %w", err)
			}
			defer pool.Close()

			files, err := listSQL(suffix)
			if err != nil {
				return err
			}
			if action == "down" {
				reverseInPlace(files)
			}
			for _, f := range files {
				b, err := migrations.FS.ReadFile(f)
				if err != nil {
					return fmt.Errorf("read %s: %w", f, err)
				}
				if _, err := pool.Exec(ctx, string(b)); err != nil {
					return fmt.Errorf("exec %s: %w", f, err)
				}
				fmt.Println("applied", f)
			}
			return nil
		},
	}
}

// buildStore assembles the configured ContactStore, optionally wrapped
// with the subject-lookup cache. The readiness probe and cleanup depend
// on the driver.
func buildStore(ctx context.Context, cfg *config.Config) (repository.ContactStore, func(*http.Request) error, func(), error) {
	var (
		inner   repository.ContactStore
		ready   func(*http.Request) error
		cleanup = func() {}
	)

	switch cfg.Storage.Driver {
	case "memory":
		inner = memstore.New()
	case "postgres":
		pool, err := pg.Connect(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		inner = pg.New(pool)
		ready = func(r *http.Request) error { return pool.Ping(r.Context()) }
		cleanup = pool.Close
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	var c cache.Cache
	switch cfg.Cache.Kind {
	case "off":
	case "memory":
		c = memcache.New(cfg.Cache.SubjectTTL)
	case "redis":
		c = rediscache.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix)
	default:
		return nil, nil, nil, fmt.Errorf("unknown cache kind %q", cfg.Cache.Kind)
	}
	if c != nil {
		return cached.New(inner, c, cfg.Cache.SubjectTTL), ready, cleanup, nil
	}
	return inner, ready, cleanup, nil
}

func listSQL(suffix string) ([]string, error) {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func reverseInPlace(ss []string) {
	for i, j := 0, len(ss)-1; i < j; i, j = i+1, j-1 {
		ss[i], ss[j] = ss[j], ss[i]
	}
}
