// Package main provides boardctl, a command line client of the board server.
//
// Each command loads the board through a gateway session (server first, then
// the local cache), applies one change and flushes it before exiting.
//
// Usage:
//
//	boardctl [flags] <command> [args]
//	boardctl -remote-url http://studio.local:3000 show -q ana
//	boardctl move ana_lopez Interesado
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	"github.com/ArturoRiosMock/CRMAIRE/internal/client"
	"github.com/ArturoRiosMock/CRMAIRE/internal/config"
	"github.com/ArturoRiosMock/CRMAIRE/internal/di"
	"github.com/ArturoRiosMock/CRMAIRE/internal/di/providers"
	"github.com/ArturoRiosMock/CRMAIRE/internal/importer"
	"github.com/ArturoRiosMock/CRMAIRE/internal/logger"
	"github.com/ArturoRiosMock/CRMAIRE/internal/mdns"
	"github.com/ArturoRiosMock/CRMAIRE/internal/validation"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, args, err := config.LoadArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		usage(os.Stdout)
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "boardctl: %v\n", err)
		return 2
	}
	if len(args) == 0 {
		usage(os.Stderr)
		return 2
	}

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Format:      logger.FormatPretty,
		Environment: cfg.App.Environment,
		Level:       cliLevel(cfg.Logger.Level),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if args[0] == "discover" {
		return exitCode(discover(ctx, os.Stdout, log.Logger))
	}

	injector := di.NewClientContainer(cfg, log)
	defer func() {
		if err := injector.Shutdown(); err != nil {
			log.Warn("shutdown", "error", err)
		}
	}()

	remote, err := do.Invoke[*client.Client](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boardctl: %v\n", err)
		return 1
	}
	sessionHandle, err := do.Invoke[*providers.SessionHandle](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boardctl: %v\n", err)
		return 1
	}

	a := &app{
		session:   sessionHandle.Session,
		remote:    remote,
		imports:   importer.New(cfg.Import.Root, cfg.Import.Folders, log.Component("importer").Logger),
		validator: validation.New(),
		out:       os.Stdout,
		now:       time.Now,
	}
	return exitCode(a.run(ctx, args))
}

// discover prints the first board server answering on the local network.
func discover(ctx context.Context, w io.Writer, logger *slog.Logger) error {
	found, err := mdns.Discover(ctx, 3*time.Second, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s  %s\n", found.Name, found.URL)
	return nil
}

// cliLevel keeps the session's info logs off the terminal unless debug
// output was asked for.
func cliLevel(name string) slog.Level {
	level := logger.ParseLevel(name)
	if level == slog.LevelDebug {
		return level
	}
	return max(level, slog.LevelWarn)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "boardctl: %v\n", err)
	var uerr usageError
	if errors.As(err, &uerr) {
		return 2
	}
	return 1
}
