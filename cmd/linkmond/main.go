package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/linkmond/internal/advertise"
	"github.com/dmdmdm-nz/linkmond/internal/api"
	"github.com/dmdmdm-nz/linkmond/internal/metrics"
	"github.com/dmdmdm-nz/linkmond/internal/netmon"
	"github.com/dmdmdm-nz/linkmond/internal/runtime"
	"github.com/dmdmdm-nz/linkmond/pkg/cli"
	"github.com/dmdmdm-nz/linkmond/pkg/version"
)

func main() {
	// Parse command line flags
	cfg := cli.ParseFlags()

	// Configure logging
	setLogLevel(cfg.LogLevel)
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FullTimestamp:   true,
	})

	log.Info(version.String())
	log.Infof("Config: %s", cfg)

	if os.Geteuid() != 0 {
		log.Fatal("The linkmond service must be run as root.")
	}

	netmon.CheckKernel()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m, err := metrics.New()
	if err != nil {
		log.WithError(err).Fatal("Failed to create metrics")
	}

	watcher := netmon.NewWatcher(netmon.WatcherConfig{
		BufferSize:   cfg.BufferSize,
		SocketBuffer: cfg.SocketBuffer,
	}, m)
	netmonSvc := netmon.NewService(watcher)

	super := runtime.NewSupervisor()
	super.Add("netmon", netmonSvc.Start, netmonSvc.Close)

	if cfg.Port != 0 {
		apiSvc := api.NewService(cfg.Host, cfg.Port, netmonSvc, m.Handler())
		super.Add("api", apiSvc.Start, apiSvc.Close)
	} else {
		log.Info("API disabled")
	}

	if cfg.Advertise {
		advSvc := advertise.NewService(instanceName(cfg.Instance), cfg.Port, version.Version)

		// Subscribe before starting producers so no link event is missed.
		ifCh, ifUnsub := netmonSvc.Subscribe()
		advSvc.AttachNetmon(ifCh, ifUnsub)

		super.Add("advertise", advSvc.Start, advSvc.Close)
	}

	if err := super.Start(ctx); err != nil {
		log.WithError(err).Error("Supervisor start failed")
		os.Exit(1)
	}
	if err := super.Wait(ctx); err != nil {
		log.WithError(err).Error("Supervisor wait failed")
		os.Exit(1)
	}
}

func instanceName(configured string) string {
	if configured != "" {
		return configured
	}
	host, err := os.Hostname()
	if err != nil {
		return "linkmond"
	}
	return fmt.Sprintf("linkmond on %s", host)
}

func setLogLevel(level string) {
	switch level {
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
