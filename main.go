package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moonbuggy/watcher3-api-adapter/pkg/api"
	"github.com/moonbuggy/watcher3-api-adapter/pkg/config"
	"github.com/moonbuggy/watcher3-api-adapter/pkg/logger"
	"github.com/moonbuggy/watcher3-api-adapter/pkg/watcher3"
)

func main() {
	logger.Init(false)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Fatal("Configuration error: %v", err)
	}

	logger.Init(cfg.Debug)
	logger.Debug("Starting with configuration: listen=%s, watcher3=%s://%s:%d",
		cfg.ListenAddr(), cfg.Watcher3Scheme, cfg.Watcher3Host, cfg.Watcher3Port)

	watcher, err := watcher3.New(cfg)
	if err != nil {
		logger.Fatal("Could not set up Watcher3 client: %v", err)
	}

	// Probe the upstream once so misconfiguration shows up in the log
	// immediately. An unreachable server is not fatal: every endpoint that
	// needs it degrades per-request, and system/status works regardless.
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 10*time.Second)
	if serverConfig, err := watcher.GetConfig(probeCtx); err != nil {
		logger.Warn("Could not get Watcher3 configuration: %v", err)
	} else {
		logger.Info("Connected to Watcher3, movie path template: %s",
			serverConfig.Postprocessing.MoverPath)
	}
	cancelProbe()

	server := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: api.NewRouter(api.New(cfg, watcher)),
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logger.Fatal("Could not bind %s: %v", server.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	logger.Info("Listening on %s", server.Addr)
	signalReady(cfg.ReadyFD)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("Signal %s received. Exiting.", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown error: %v", err)
		}
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error: %v", err)
		}
	}
}

// signalReady writes a newline to the configured file descriptor so external
// supervisors can detect a successful bind.
func signalReady(fd int) {
	if fd < 0 {
		logger.Info("Initialization done.")
		return
	}

	logger.Info("Initialization done. Signalling readiness.")
	logger.Debug("Readiness signal writing to file descriptor %d.", fd)

	file := os.NewFile(uintptr(fd), "ready-fd")
	if file == nil {
		logger.Warn("Could not open file descriptor %d.", fd)
		return
	}
	defer file.Close()

	if _, err := file.Write([]byte("\n")); err != nil {
		logger.Warn("Could not signal file descriptor %d: %v", fd, err)
	}
}
