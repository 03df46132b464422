package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the host configuration.
type Config struct {
	ConfigFile string `yaml:"-"`
	HostID     string `yaml:"host-id"`
	Port       int    `yaml:"port"`
	Units      string `yaml:"units"`
	OptionsDir string `yaml:"options-dir"`
	EventLog   string `yaml:"event-log"`
	WriteToken string `yaml:"write-token"`
	LogLevel   string `yaml:"log-level"`
	MDNS       bool   `yaml:"mdns"`
	Interface  string `yaml:"interface"`
}

// mergeConfigFile overlays file values onto cfg for every flag the user
// did not set on the command line. Command-line flags always win.
func mergeConfigFile(cfg *Config, fs *flag.FlagSet) error {
	if cfg.ConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// MDNS uses a pointer so an absent key does not override the default.
	var fileCfg struct {
		HostID     string `yaml:"host-id"`
		Port       int    `yaml:"port"`
		Units      string `yaml:"units"`
		OptionsDir string `yaml:"options-dir"`
		EventLog   string `yaml:"event-log"`
		WriteToken string `yaml:"write-token"`
		LogLevel   string `yaml:"log-level"`
		MDNS       *bool  `yaml:"mdns"`
		Interface  string `yaml:"interface"`
	}
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	if !set["host-id"] && fileCfg.HostID != "" {
		cfg.HostID = fileCfg.HostID
	}
	if !set["port"] && fileCfg.Port != 0 {
		cfg.Port = fileCfg.Port
	}
	if !set["units"] && fileCfg.Units != "" {
		cfg.Units = fileCfg.Units
	}
	if !set["options-dir"] && fileCfg.OptionsDir != "" {
		cfg.OptionsDir = fileCfg.OptionsDir
	}
	if !set["event-log"] && fileCfg.EventLog != "" {
		cfg.EventLog = fileCfg.EventLog
	}
	if !set["write-token"] && fileCfg.WriteToken != "" {
		cfg.WriteToken = fileCfg.WriteToken
	}
	if !set["log-level"] && fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if !set["mdns"] && fileCfg.MDNS != nil {
		cfg.MDNS = *fileCfg.MDNS
	}
	if !set["interface"] && fileCfg.Interface != "" {
		cfg.Interface = fileCfg.Interface
	}

	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", cfg.Port)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", cfg.LogLevel)
	}
	return nil
}
