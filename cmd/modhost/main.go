// Command modhost is an interactive management client for module hosts.
//
// It connects to a host's control surface directly or via mDNS
// discovery and offers an interactive console for listing units,
// inspecting metadata, and reading and writing parameters.
//
// Usage:
//
//	modhost [flags]
//
// Flags:
//
//	-connect string      Host address (host:port)
//	-discover            Discover hosts via mDNS and connect to the first
//	-host-id string      Connect to the host with this ID (implies -discover)
//	-token string        Write token for privileged parameter writes
//	-timeout duration    Discovery/connect timeout (default 5s)
//	-local               Run an in-process host instead of connecting
//	-units string        Units to load in local mode (default "testunit")
//	-options-dir string  Options directory in local mode
//	-log-level string    Log level in local mode (default "warn")
//
// Examples:
//
//	# Connect to a local host
//	modhost -connect localhost:7610
//
//	# Discover a host on the LAN and connect
//	modhost -discover
//
//	# Connect to a specific host with write privilege
//	modhost -host-id modhost-a1b2c3d4 -token secret
//
//	# Run a self-contained host with load/unload support
//	modhost -local -units testunit,thermostat -options-dir ./options.d
//
// Interactive Commands:
//
//	list                 - List loaded units
//	info <unit>          - Show unit metadata and parameters
//	search <query>       - Search units by name
//	get <unit/param>     - Read a parameter value
//	set <unit/param> <v> - Write a parameter value
//	load / unload        - Manage units (local mode)
//	options              - Manage persistent options (local mode)
//	log-level <level>    - Change log verbosity (local mode)
//	quit                 - Exit
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
	"time"

	"github.com/modhost-project/modhost-go/cmd/modhost/interactive"
	"github.com/modhost-project/modhost-go/pkg/discovery"
	"github.com/modhost-project/modhost-go/pkg/examples"
	"github.com/modhost-project/modhost-go/pkg/host"
	"github.com/modhost-project/modhost-go/pkg/options"
	"github.com/modhost-project/modhost-go/pkg/surface"
	"github.com/modhost-project/modhost-go/pkg/transport"
)

// Config holds the client configuration.
type Config struct {
	Address    string
	Discover   bool
	HostID     string
	Token      string
	Timeout    time.Duration
	Local      bool
	Units      string
	OptionsDir string
	LogLevel   string
}

var config Config

// localHost is set in -local mode so units unload cleanly on exit.
var localHost *host.Host

func init() {
	flag.StringVar(&config.Address, "connect", "", "Host address (host:port)")
	flag.BoolVar(&config.Discover, "discover", false, "Discover hosts via mDNS and connect to the first")
	flag.StringVar(&config.HostID, "host-id", "", "Connect to the host with this ID (implies -discover)")
	flag.StringVar(&config.Token, "token", "", "Write token for privileged parameter writes")
	flag.DurationVar(&config.Timeout, "timeout", 5*time.Second, "Discovery/connect timeout")
	flag.BoolVar(&config.Local, "local", false, "Run an in-process host instead of connecting")
	flag.StringVar(&config.Units, "units", "testunit", "Units to load in local mode")
	flag.StringVar(&config.OptionsDir, "options-dir", "", "Options directory in local mode")
	flag.StringVar(&config.LogLevel, "log-level", "warn", "Log level in local mode")
}

func main() {
	flag.Parse()

	var session interactive.Session
	if config.Local {
		local, err := startLocalSession()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		session = local
	} else {
		address, err := resolveAddress()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Connecting to %s...\n", address)

		client, err := surface.Connect(surface.ClientConfig{
			Address:     address,
			WriteToken:  config.Token,
			DialTimeout: config.Timeout,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer client.Close()
		session = client
	}

	console, err := interactive.New(session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Exit cleanly on SIGINT/SIGTERM even outside the prompt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	console.Run(ctx, cancel)

	if localHost != nil {
		if err := localHost.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Error unloading units: %v\n", err)
		}
	}
}

// startLocalSession builds an in-process host with the requested units
// loaded.
func startLocalSession() (*interactive.LocalSession, error) {
	level := new(slog.LevelVar)
	switch config.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelWarn)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var store *options.Store
	var optionSource host.OptionSource
	if config.OptionsDir != "" {
		var err error
		store, err = options.LoadDir(config.OptionsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load options: %w", err)
		}
		for _, w := range store.Warnings() {
			logger.Warn("option file problem", "detail", w.String())
		}
		optionSource = store
	}

	h := host.New(host.Config{
		Logger:  logger,
		Options: optionSource,
	})

	for _, name := range strings.Split(config.Units, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		unit := examples.New(name)
		if unit == nil {
			return nil, fmt.Errorf("unknown unit: %s (available: %v)", name, examples.Names())
		}
		if _, err := h.Load(unit); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
	}

	localHost = h
	return interactive.NewLocalSession(h, store, level), nil
}

// resolveAddress determines the host address from flags, discovering
// via mDNS when no explicit address was given.
func resolveAddress() (string, error) {
	if config.Address != "" {
		return config.Address, nil
	}
	if !config.Discover && config.HostID == "" {
		return fmt.Sprintf("localhost:%d", transport.DefaultPort), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	browser := discovery.NewBrowser(discovery.BrowserConfig{})

	if config.HostID != "" {
		fmt.Printf("Looking for host %s...\n", config.HostID)
		svc, err := browser.FindHost(ctx, config.HostID, config.Timeout)
		if err != nil {
			return "", fmt.Errorf("host %s not found: %w", config.HostID, err)
		}
		return svc.Addr(), nil
	}

	fmt.Println("Discovering hosts...")
	hosts, err := browser.FindHosts(ctx, config.Timeout)
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w", err)
	}
	if len(hosts) == 0 {
		return "", fmt.Errorf("no hosts found")
	}

	for _, h := range hosts {
		fmt.Printf("  %s (%d units) at %s\n", h.HostID, h.UnitCount, h.Addr())
	}
	fmt.Printf("Connecting to %s\n", hosts[0].HostID)
	return hosts[0].Addr(), nil
}
