package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-service/internal/handler"
	"catalog-service/internal/imaging"
	"catalog-service/internal/imaging/vipsrender"
	mid "catalog-service/internal/middleware"
	"catalog-service/internal/seed"
	"catalog-service/internal/storage"
	"catalog-service/internal/store"
	"catalog-service/pkg/config"
	"catalog-service/pkg/database"
	"catalog-service/pkg/jwtutil"
	"catalog-service/pkg/logger"
	"catalog-service/pkg/mailer"
	"catalog-service/prometheus"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "catalog-service"

// Variables passed in at compile time using `-ldflags`
var (
	Version   = "dev" // -X main.Version=$(git describe --tags --abbrev=0)
	GitHash   string  // -X main.GitHash=$(git rev-parse HEAD)
	BuildDate string  // -X main.BuildDate=$(date -u +%Y%m%d%H%M%S)
)

func main() {
	app := &cli.App{
		Name:    serviceName,
		Usage:   "Run the mattress catalog server or its maintenance commands",
		Version: Version,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:  "optimize-images",
				Usage: "derive missing or stale renditions for every product image",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "re-render images whose renditions are up to date"},
					&cli.StringFlag{Name: "format", Value: "both", Usage: "formats to derive: modern, legacy or both"},
					&cli.IntFlag{Name: "quality", Usage: "override the rendition quality (1-100)"},
				},
				Action: optimizeImages,
			},
			{
				Name:   "migrate-images",
				Usage:  "move local source images to the remote object store",
				Action: migrateImages,
			},
			{
				Name:  "seed",
				Usage: "load the demo catalog",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "clean", Usage: "delete existing catalog data first"},
				},
				Action: seedCatalog,
			},
			{
				Name:  "token",
				Usage: "issue an admin bearer token signed with JWT_SIGNING_KEY",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, Usage: "operator email stored in the token"},
					&cli.UintFlag{Name: "user-id", Value: 1, Usage: "operator id stored in the token"},
					&cli.StringFlag{Name: "role", Value: "admin", Usage: "operator role"},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime"},
				},
				Action: issueToken,
			},
			{
				// Not the built in version flag so scripts can read it without parsing help output
				Name: "version",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "full", Usage: "print full version and build info"},
				},
				Action: func(c *cli.Context) error {
					if c.Bool("full") {
						fmt.Printf("Version=%s\nCommit=%s\nBuildDate=%s\n", Version, GitHash, BuildDate)
						return nil
					}
					fmt.Println(Version)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// services holds what every command needs after bootstrap
type services struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func bootstrap() (*services, error) {
	// Load configuration
	appConfig, err := config.Load(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: appConfig.ServiceName,
		FileEnable:  appConfig.Log.FileEnable,
		Filename:    appConfig.Log.Filename,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", appConfig.LogConfig()...)

	// Initialize database
	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		return nil, err
	}
	log.Info("Database connection established")

	return &services{cfg: appConfig, log: log, db: db}, nil
}

func (r *services) close() {
	if err := database.Close(); err != nil {
		r.log.Warn("Failed to close database", zap.Error(err))
	}
	_ = r.log.Sync()
}

// pipeline builds the storage backend and the image deriver on top of it
func (r *services) pipeline() (storage.Backend, *imaging.Deriver, error) {
	backend, err := storage.New(r.cfg.Media, r.cfg.Cloudinary)
	if err != nil {
		return nil, nil, err
	}
	vipsrender.Startup(r.cfg.Images.Workers)
	deriver := imaging.NewDeriver(backend, vipsrender.New(), r.cfg.Media.Collection)
	r.log.Info("Image pipeline ready",
		zap.String("backend", backend.Name()),
		zap.Int("workers", r.cfg.Images.Workers))
	return backend, deriver, nil
}

func serve(c *cli.Context) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.close()
	log := rt.log
	cfg := rt.cfg

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", cfg.Metrics.Prefix))

	backend, deriver, err := rt.pipeline()
	if err != nil {
		return err
	}
	defer vipsrender.Shutdown()

	st := store.New(rt.db)
	optimizer := imaging.NewOptimizer(deriver, st, cfg.Images.Workers)
	selector := imaging.NewSelector(backend, cfg.Media.Placeholder)
	front := handler.NewStorefront(st, selector, mailer.New(cfg.Mail), cfg.Mail.NotifyTo)
	admin := handler.NewAdmin(rt.db, deriver, optimizer)

	sqlDB, err := rt.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware)

	handler.Register(e, front, admin, sqlDB, cfg.Media, Version)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Images.Schedule != "" {
		sched, err := scheduleOptimizer(ctx, log, cfg.Images.Schedule, optimizer)
		if err != nil {
			return err
		}
		defer func() { <-sched.Stop().Done() }()
	}

	// Start server
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// scheduleOptimizer derives missing renditions on the configured cron
// schedule. A run that is still going when the next one fires is skipped.
func scheduleOptimizer(ctx context.Context, log *zap.Logger, spec string, optimizer *imaging.Optimizer) (*cron.Cron, error) {
	sched := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := sched.AddFunc(spec, func() {
		runCtx := logger.WithContext(ctx, log.With(zap.String("job", "optimize-images")))
		summary, err := optimizer.Run(runCtx, imaging.OptimizeOptions{})
		if err != nil {
			log.Error("Scheduled image optimization failed", zap.Error(err))
			return
		}
		log.Info("Scheduled image optimization done",
			zap.Int("processed", summary.Processed),
			zap.Int("errors", summary.Errors))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGES_SCHEDULE %q: %w", spec, err)
	}
	sched.Start()
	log.Info("Image optimization scheduled", zap.String("schedule", spec))
	return sched, nil
}

func optimizeImages(c *cli.Context) error {
	formats, err := imaging.ParseFormats(c.String("format"))
	if err != nil {
		return err
	}
	opts := imaging.OptimizeOptions{Force: c.Bool("force"), Formats: formats, Quality: c.Int("quality")}
	if err := opts.Validate(); err != nil {
		return err
	}

	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.close()

	_, deriver, err := rt.pipeline()
	if err != nil {
		return err
	}
	defer vipsrender.Shutdown()

	optimizer := imaging.NewOptimizer(deriver, store.New(rt.db), rt.cfg.Images.Workers)
	summary, err := optimizer.Run(logger.WithContext(c.Context, rt.log), opts)
	if err != nil {
		return err
	}

	fmt.Printf("Products:  %d\n", summary.Products)
	fmt.Printf("Processed: %d\n", summary.Processed)
	fmt.Printf("Skipped:   %d\n", summary.Skipped)
	fmt.Printf("Errors:    %d\n", summary.Errors)
	if summary.Processed > 0 {
		fmt.Printf("Size:      %s -> %s (%.1f%% smaller)\n",
			humanize.Bytes(uint64(summary.BytesBefore)),
			humanize.Bytes(uint64(summary.BytesAfter)),
			summary.Reduction())
	}
	for _, f := range summary.Failures {
		fmt.Printf("  product %d slot %s: %s\n", f.ProductID, f.Slot, f.Error)
	}
	if summary.Errors > 0 {
		return cli.Exit(fmt.Sprintf("%d images failed", summary.Errors), 1)
	}
	return nil
}

func migrateImages(c *cli.Context) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.close()

	local := storage.NewLocal(rt.cfg.Media.Root, rt.cfg.Media.URL)
	remote, err := storage.NewCloudinary(rt.cfg.Cloudinary)
	if err != nil {
		return err
	}

	migrator := imaging.NewMigrator(local, remote, store.New(rt.db), rt.cfg.Media.Collection)
	summary, err := migrator.Run(logger.WithContext(c.Context, rt.log))
	if err != nil {
		return err
	}

	fmt.Printf("Migrated: %d\nSkipped:  %d\nErrors:   %d\n", summary.Migrated, summary.Skipped, summary.Errors)
	for _, f := range summary.Failures {
		fmt.Printf("  product %d slot %s: %s\n", f.ProductID, f.Slot, f.Error)
	}
	if summary.Errors > 0 {
		return cli.Exit(fmt.Sprintf("%d images failed", summary.Errors), 1)
	}
	return nil
}

func seedCatalog(c *cli.Context) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.close()

	report, err := seed.NewSeeder(rt.db).Run(logger.WithContext(c.Context, rt.log), c.Bool("clean"))
	if err != nil {
		return err
	}
	for _, entity := range []string{"categories", "brands", "products", "testimonials", "contacts", "newsletter"} {
		fmt.Printf("%-13s %d created, %d already existed\n", entity+":", report.Created[entity], report.Existing[entity])
	}
	return nil
}

// issueToken only needs the signing key, so it skips the database bootstrap
func issueToken(c *cli.Context) error {
	appConfig, err := config.Load(serviceName)
	if err != nil {
		return err
	}
	jwtutil.Initialize(&appConfig.JWT)

	token, err := jwtutil.GenerateToken(c.Uint("user-id"), c.String("email"), c.String("role"), c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
