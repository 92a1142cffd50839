package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	notes "github.com/goliatone/go-notes"
	"github.com/goliatone/go-notes/internal/logging"
)

const readHeaderTimeout = 10 * time.Second

// lookupEnv is swapped in tests to isolate the process environment.
var lookupEnv = os.LookupEnv

type serverCLI struct {
	Config  string `help:"YAML configuration file."`
	EnvFile string `name:"env-file" default:".env" help:"Dotenv file loaded before the environment."`
	Addr    string `help:"Listen address override (host:port)."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runServer(ctx, os.Args[1:], os.Stdout, nil); err != nil {
		log.Fatalf("notes-api: %v", err)
	}
}

// runServer serves the API until ctx is cancelled. ready, when set, receives
// the bound address once the listener is open.
func runServer(ctx context.Context, args []string, stdout io.Writer, ready func(addr string)) error {
	var cli serverCLI
	parser, err := kong.New(&cli,
		kong.Name("notes-api"),
		kong.Description("Serve the notes HTTP API."),
		kong.Writers(stdout, os.Stderr),
	)
	if err != nil {
		return err
	}
	if _, err := parser.Parse(args); err != nil {
		return err
	}

	cfg, err := notes.LoadConfig(notes.LoadOptions{
		ConfigFile: cli.Config,
		EnvFile:    cli.EnvFile,
		Lookup:     lookupEnv,
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	addr := cfg.Server.Addr()
	if cli.Addr != "" {
		addr = cli.Addr
	}

	module, err := notes.New(cfg)
	if err != nil {
		return fmt.Errorf("initialise notes module: %w", err)
	}
	defer module.Close()

	if err := module.Start(ctx); err != nil {
		return fmt.Errorf("start notes module: %w", err)
	}

	handler, err := module.Handler()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	logger := logging.HTTPLogger(module.LoggerProvider())
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	logger.Info("notes.api.listening", "addr", listener.Addr().String(), "source", cfg.Source.Mode)
	if ready != nil {
		ready(listener.Addr().String())
	}

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("notes.api.shutdown")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
