package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/skilllink/learnex-auth"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("learnex"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	)
	log := lgr.GetLogger("main")

	cfg, err := LoadConfig()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	tokens, err := auth.NewTokenServiceFromConfig(cfg, lgr.GetLogger("tokens"))
	if err != nil {
		log.Error("failed to build token service", "error", err)
		os.Exit(1)
	}

	hasher := auth.NewHasher(cfg.GetPasswordHashCost())

	auther := auth.NewAuthenticator(
		repo.Users(), hasher, tokens,
		auth.WithAutherLogger(lgr.GetLogger("auth")),
	)

	controller := auth.NewAuthController(
		auth.WithControllerAuther(auther),
		auth.WithControllerTokens(tokens),
		auth.WithControllerLogger(lgr.GetLogger("http")),
		auth.WithControllerCookieSecure(cfg.GetCookieSecure()),
		auth.WithControllerCookieTTL(time.Duration(cfg.GetTokenExpiration())*time.Hour),
		auth.WithControllerDebug(!cfg.IsProduction()),
	)

	app := fiber.New(fiber.Config{
		AppName:      "learnex",
		ErrorHandler: fiberErrorHandler(lgr.GetLogger("fiber")),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigin,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth endpoints go first; everything mounted after the
	// middleware requires a live session.
	auth.RegisterAuthRoutes(api.Group("/auth"), controller)

	api.Use(auth.NewProtectedMiddleware(tokens, repo.Users()))

	api.Get("/me", func(c *fiber.Ctx) error {
		user, ok := auth.FromContext(c.UserContext())
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized",
			})
		}
		return c.JSON(fiber.Map{"user": user.Public()})
	})

	go func() {
		log.Info("listening", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := runMigrations(ctx, db); err != nil {
		return nil, err
	}

	return db, nil
}

// runMigrations applies the embedded schema files in name order. Every
// statement is idempotent, so replaying on boot is safe.
func runMigrations(ctx context.Context, db *bun.DB) error {
	migrations, err := fs.Sub(auth.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := fs.ReadFile(migrations, name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(raw)); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "migration failed").
				WithMetadata(map[string]any{"migration": name})
		}
	}

	return nil
}

func fiberErrorHandler(log glog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if goerrors.As(err, &fe) {
			code = fe.Code
			if code < fiber.StatusInternalServerError {
				message = fe.Message
			}
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", "error", err, "path", c.Path())
		}

		return c.Status(code).JSON(fiber.Map{
			"message": message,
		})
	}
}
