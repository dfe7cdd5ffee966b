package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/atinyakov/linkshort/internal/app/backend"
	"github.com/atinyakov/linkshort/internal/app/handler"
	"github.com/atinyakov/linkshort/internal/app/server"
	grpcserver "github.com/atinyakov/linkshort/internal/app/server/grpc"
	"github.com/atinyakov/linkshort/internal/app/service"
	"github.com/atinyakov/linkshort/internal/config"
	"github.com/atinyakov/linkshort/internal/logger"

	_ "net/http/pprof"
)

var buildVersion string
var buildDate string
var buildCommit string

const shutdownTimeout = 10 * time.Second

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func main() {
	fmt.Printf("Build version: %s\n", orNA(buildVersion))
	fmt.Printf("Build date: %s\n", orNA(buildDate))
	fmt.Printf("Build commit: %s\n", orNA(buildCommit))

	options, err := config.Parse()
	if err != nil {
		panic(err)
	}

	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		panic(err)
	}
	defer log.Sync()

	if buildVersion != "" {
		handler.Version = buildVersion
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, options, log.Log); err != nil {
		log.Log.Error("shortener stopped with error", zap.Error(err))
		log.Sync()
		panic(err)
	}
}

func run(ctx context.Context, options *config.Options, zapLogger *zap.Logger) error {
	store, err := backend.Open(ctx, options, zapLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Warn("cannot close storage", zap.Error(err))
		}
	}()

	// the click retry worker flushes once serveCtx is cancelled, after
	// both servers stopped taking requests
	serveCtx, cancelServe := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelServe()

	allocator := service.NewCodeAllocator(store.Storage, nil)
	linkService := service.NewLinkService(serveCtx, store.Storage, allocator, zapLogger, options.BaseURL)

	if options.EnablePprof {
		go func() {
			zapLogger.Info("Starting pprof server", zap.String("addr", "localhost:6060"))
			if err := http.ListenAndServe("localhost:6060", nil); err != nil {
				zapLogger.Error("pprof server error", zap.Error(err))
			}
		}()
	}

	router := server.Init(linkService, zapLogger, server.Options{
		AllowedOrigins: options.CORSAllowedOrigins,
		Started:        time.Now(),
	})

	httpServer := &http.Server{
		Addr:              options.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return serveCtx },
	}

	errCh := make(chan error, 2)

	if options.EnableHTTPS {
		host, err := tlsHost(options.BaseURL)
		if err != nil {
			return err
		}

		manager := &autocert.Manager{
			Cache:      autocert.DirCache("cache-dir"),
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(host),
		}
		httpServer.Addr = ":443"
		httpServer.TLSConfig = manager.TLSConfig()

		go func() {
			zapLogger.Info("Server is running with TLS", zap.String("host", host))
			errCh <- ignoreClosed(httpServer.ListenAndServeTLS("", ""))
		}()
	} else {
		go func() {
			zapLogger.Info("Server is running", zap.String("addr", options.ServerAddress))
			errCh <- ignoreClosed(httpServer.ListenAndServe())
		}()
	}

	var grpcServer *grpcserver.Server
	if options.GRPCAddress != "" {
		grpcServer = grpcserver.New(options.GRPCAddress, zapLogger, linkService)
		go func() {
			errCh <- grpcServer.Start()
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		zapLogger.Info("shutting down")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Warn("http shutdown", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	cancelServe()
	select {
	case <-linkService.Done():
	case <-shutdownCtx.Done():
		zapLogger.Warn("click retry worker did not finish in time")
	}

	return serveErr
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// tlsHost is the host certificates are requested for.
func tlsHost(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("https needs a base url with a host, got %q", baseURL)
	}
	return u.Hostname(), nil
}
