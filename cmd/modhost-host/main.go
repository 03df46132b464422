// Command modhost-host runs a standalone module host.
//
// The host loads the built-in example units, applies persistent
// parameter options from an options directory, exposes the control
// surface over TCP, and advertises itself via mDNS.
//
// Usage:
//
//	modhost-host [flags]
//
// Flags:
//
//	-config string       Configuration file path (YAML)
//	-host-id string      Host identifier (auto-generated if empty)
//	-port int            Control surface listen port (default 7610)
//	-units string        Comma-separated units to load (default "testunit")
//	-options-dir string  Directory of .conf option files
//	-event-log string    Write structured event log to this file
//	-write-token string  Token required for write privilege (empty = open)
//	-log-level string    Log level: debug, info, warn, error (default "info")
//	-mdns                Advertise via mDNS (default true)
//	-interface string    Restrict mDNS to one network interface
//
// Examples:
//
//	# Start with defaults
//	modhost-host
//
//	# Load both example units with persistent options
//	modhost-host -units testunit,thermostat -options-dir /etc/modhost/options.d
//
//	# Capture an event log for later analysis with modhost-log
//	modhost-host -event-log host.mlog -log-level debug
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/modhost-project/modhost-go/pkg/discovery"
	"github.com/modhost-project/modhost-go/pkg/examples"
	"github.com/modhost-project/modhost-go/pkg/host"
	"github.com/modhost-project/modhost-go/pkg/log"
	"github.com/modhost-project/modhost-go/pkg/options"
	"github.com/modhost-project/modhost-go/pkg/surface"
	"github.com/modhost-project/modhost-go/pkg/transport"
	"github.com/modhost-project/modhost-go/pkg/version"
)

var config Config

func init() {
	flag.StringVar(&config.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&config.HostID, "host-id", "", "Host identifier (auto-generated if empty)")
	flag.IntVar(&config.Port, "port", transport.DefaultPort, "Control surface listen port")
	flag.StringVar(&config.Units, "units", "testunit", "Comma-separated units to load")
	flag.StringVar(&config.OptionsDir, "options-dir", "", "Directory of .conf option files")
	flag.StringVar(&config.EventLog, "event-log", "", "Write structured event log to this file")
	flag.StringVar(&config.WriteToken, "write-token", "", "Token required for write privilege (empty = open)")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&config.MDNS, "mdns", true, "Advertise via mDNS")
	flag.StringVar(&config.Interface, "interface", "", "Restrict mDNS to one network interface")
}

func main() {
	flag.Parse()

	if err := mergeConfigFile(&config, flag.CommandLine); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := validateConfig(&config); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(config.LogLevel)

	logger.Info("modhost host starting",
		"version", version.Library,
		"port", config.Port,
		"units", config.Units)

	// Structured event log
	var eventLogger log.Logger = &log.NoopLogger{}
	var fileLogger *log.FileLogger
	if config.EventLog != "" {
		var err error
		fileLogger, err = log.NewFileLogger(config.EventLog)
		if err != nil {
			logger.Error("failed to open event log", "path", config.EventLog, "error", err)
			os.Exit(1)
		}
		eventLogger = fileLogger
		logger.Info("event log enabled", "path", config.EventLog)
	}

	// Persistent options
	var optionSource host.OptionSource
	if config.OptionsDir != "" {
		store, err := options.LoadDir(config.OptionsDir)
		if err != nil {
			logger.Error("failed to load options", "dir", config.OptionsDir, "error", err)
			os.Exit(1)
		}
		for _, w := range store.Warnings() {
			logger.Warn("option file problem", "detail", w.String())
		}
		optionSource = store
	}

	h := host.New(host.Config{
		ID:          config.HostID,
		Logger:      logger,
		EventLogger: eventLogger,
		Options:     optionSource,
	})

	// Load the requested built-in units
	for _, name := range strings.Split(config.Units, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		unit := examples.New(name)
		if unit == nil {
			logger.Error("unknown unit", "unit", name)
			os.Exit(1)
		}
		instanceID, err := h.Load(unit)
		if err != nil {
			logger.Error("failed to load unit", "unit", name, "error", err)
			os.Exit(1)
		}
		logger.Info("unit loaded", "unit", name, "instance", instanceID)
	}

	// Control surface
	srv, err := surface.NewServer(surface.ServerConfig{
		Host:        h,
		Address:     fmt.Sprintf(":%d", config.Port),
		WriteToken:  config.WriteToken,
		Logger:      logger,
		EventLogger: eventLogger,
	})
	if err != nil {
		logger.Error("failed to create control surface", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		logger.Error("failed to start control surface", "error", err)
		os.Exit(1)
	}
	logger.Info("control surface listening", "addr", srv.Addr())

	// mDNS advertising
	var advertiser *discovery.Advertiser
	if config.MDNS {
		advertiser = discovery.NewAdvertiser(discovery.AdvertiserConfig{
			Interface: config.Interface,
		})
		info := &discovery.HostInfo{
			HostID:    h.ID(),
			Version:   version.Current,
			UnitCount: len(h.List()),
			Port:      uint16(config.Port),
		}
		if err := advertiser.Advertise(info); err != nil {
			logger.Warn("mDNS advertising failed", "error", err)
			advertiser = nil
		} else {
			logger.Info("advertising via mDNS", "host-id", h.ID())

			// Keep the advertised unit count current.
			h.OnEvent(func(ev host.Event) {
				if ev.Kind != host.EventUnitLoaded && ev.Kind != host.EventUnitUnloaded {
					return
				}
				info.UnitCount = len(h.List())
				if err := advertiser.Update(info); err != nil {
					logger.Warn("mDNS update failed", "error", err)
				}
			})
		}
	}

	logger.Info("host running", "host-id", h.ID())

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("shutting down", "signal", sig.String())

	if advertiser != nil {
		advertiser.Stop()
	}
	if err := srv.Stop(); err != nil {
		logger.Warn("error stopping control surface", "error", err)
	}
	if err := h.Shutdown(); err != nil {
		logger.Warn("error unloading units", "error", err)
	}
	if fileLogger != nil {
		if err := fileLogger.Close(); err != nil {
			logger.Warn("error closing event log", "error", err)
		}
	}

	logger.Info("goodbye")
}

func setupLogging(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
