package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/contenthub/postnotify/pkg/api"
	"github.com/contenthub/postnotify/pkg/audit"
	"github.com/contenthub/postnotify/pkg/config"
	"github.com/contenthub/postnotify/pkg/directory"
	"github.com/contenthub/postnotify/pkg/mail"
	"github.com/contenthub/postnotify/pkg/marker"
	"github.com/contenthub/postnotify/pkg/notify"
	"github.com/contenthub/postnotify/pkg/ratelimit"
	"github.com/contenthub/postnotify/pkg/version"
)

func main() {
	var (
		configPath string
		debug      bool
	)

	root := &cobra.Command{
		Use:   "postnotify",
		Short: "Content publication notification dispatcher",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(configPath, debug)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	root.Flags().BoolVar(&debug, "debug", false, "enables debug mode")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetBuildInfo().String())
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string, debug bool) error {
	log := setupLogger(debug)
	defer func() { _ = log.Sync() }()
	log.With("version", version.Version).Info("Starting postnotify")

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Error loading postnotify config: %v", err)
	}
	cfg.Server.Debug = cfg.Server.Debug || debug

	if debug {
		log.Infof("%#v", cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dir := directory.NewHTTPClient(log, cfg.Directory)

	seen := buildMarkerStore(cfg.Marker, log)
	defer func() { _ = seen.Close() }()

	sender := mail.NewSender(cfg.SMTP, log)
	if !sender.Enabled() {
		log.Warn("SMTP transport not configured; transitions will be classified but nothing will be sent")
	}

	sink := buildAuditSink(cfg.Audit, log)
	defer func() { _ = sink.Close() }()

	settings := config.SanitizeSettings(ctx, cfg.Notifications, dir, log)

	dispatcher := notify.NewDispatcher(notify.DispatcherConfig{
		Classifier: notify.NewClassifier(seen, log),
		Resolver:   notify.NewResolver(dir, log),
		Directory:  dir,
		Transport:  sender,
		Audit:      sink,
		Site:       cfg.Site,
		Settings:   func() notify.Settings { return settings },
		Log:        log,
	})

	var limiter *ratelimit.IPRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(ratelimit.Config{
			Rate:  cfg.RateLimit.RequestsPerSecond,
			Burst: cfg.RateLimit.Burst,
		})
		defer limiter.Stop()
	}

	server := api.NewServer(log.Desugar(), cfg, limiter)
	if err := server.RegisterAll([]api.APIController{
		api.NewNotificationsController(dispatcher, sender, cfg.Site, log),
	}); err != nil {
		log.Fatalf("Error registering controllers: %v", err)
	}

	log.Infow("Listening", "address", cfg.Server.ListenAddress)
	if err := server.Listen(ctx); err != nil {
		return err
	}
	log.Info("Shutdown complete")
	return nil
}

func buildMarkerStore(cfg config.Marker, log *zap.SugaredLogger) marker.Store {
	if cfg.RedisAddress != "" {
		log.Infow("Using Redis marker store", "address", cfg.RedisAddress)
		return marker.NewRedisStore(cfg.RedisAddress)
	}
	sweep := time.Minute
	if d, err := time.ParseDuration(cfg.SweepInterval); err == nil && d > 0 {
		sweep = d
	}
	log.Info("Using in-process marker store")
	return marker.NewMemoryStore(sweep)
}

func buildAuditSink(cfg audit.KafkaSinkConfig, log *zap.SugaredLogger) audit.Sink {
	if cfg.Configured() {
		sink, err := audit.NewKafkaSink(cfg, log)
		if err == nil {
			return sink
		}
		log.Errorw("Kafka audit sink unavailable, falling back to log sink", "error", err)
	}
	return audit.NewLogSink(log)
}

func setupLogger(debug bool) *zap.SugaredLogger {
	var zlog *zap.Logger
	var err error
	if debug {
		zlog, err = zap.NewDevelopment()
	} else {
		zlog, err = zap.NewProduction()
	}
	if err != nil {
		stdlog.Fatalf("failed to set up logger: %v", err)
	}
	return zlog.Sugar()
}
