package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-calendar-gateway/auth"
	"github.com/jrsteele09/go-calendar-gateway/calendar"
	"github.com/jrsteele09/go-calendar-gateway/internal/config"
	"github.com/jrsteele09/go-calendar-gateway/server"
	"github.com/jrsteele09/go-calendar-gateway/sessions"
	"github.com/jrsteele09/go-calendar-gateway/users/sqlrepo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "calendar-gateway",
		Usage: "Google Calendar proxy and user records over HTTP.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before start"},
			&cli.StringFlag{Name: "config", Usage: "optional TOML configuration file"},
		},
		Before: loadConfig,
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run migrations and start the HTTP server.",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations and exit.",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
}

// loadConfig fills unset environment variables from the .env and TOML files, then
// configures the global logger.
func loadConfig(c *cli.Context) error {
	if err := config.LoadEnvFile(c.String("env-file")); err != nil {
		return err
	}
	if err := config.LoadFile(c.String("config")); err != nil {
		return err
	}
	setupLogger(config.New())
	return nil
}

func setupLogger(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func migrate(c *cli.Context) error {
	repo, err := openUserRepo(c.Context, config.New())
	if err != nil {
		return err
	}
	defer repo.Close()

	version, err := repo.SchemaVersion(c.Context)
	if err != nil {
		return err
	}
	log.Info().Int("version", version).Msg("Database schema up to date")
	return nil
}

func openUserRepo(ctx context.Context, c config.Config) (*sqlrepo.UserRepo, error) {
	repo, err := sqlrepo.Open(ctx, c.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("sqlrepo.Open: %w", err)
	}
	if err := repo.Migrate(ctx); err != nil {
		repo.Close()
		return nil, fmt.Errorf("sqlrepo.Migrate: %w", err)
	}
	return repo, nil
}

func serve(c *cli.Context) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	cfg := config.New()
	repo, err := openUserRepo(c.Context, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	store := sessions.NewStore()
	authService, err := auth.NewAuthorizationService(c.Context, cfg, store)
	if err != nil {
		return fmt.Errorf("auth.NewAuthorizationService: %w", err)
	}

	handler := server.New(cfg, server.Services{
		Auth:     authService,
		Sessions: store,
		Calendar: calendar.NewGateway(store, cfg),
		Users:    repo,
	})

	displayAppname(cfg.GetAppName())
	httpServer := &http.Server{Addr: cfg.GetPort(), Handler: handler}

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-waitForStopSignal():
	}

	returnError = shutdown(httpServer)
	log.Info().Msg("Server stopped")
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
