package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/luca-patrignani/pow-ledger/consensus"
)

const defaultPort = 5000

// Config holds the settings of a ledger process. Every flag falls back to an
// environment variable, then to a default.
type Config struct {
	Host        string
	Port        uint16
	PortRange   uint16
	Difficulty  uint32
	Workers     int
	MineTimeout time.Duration
	TLS         bool
	Interactive bool
	Debug       bool
}

func loadConfig(args []string, getenv func(string) string, output io.Writer) (Config, error) {
	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	fs := flag.NewFlagSet("pow-ledger", flag.ContinueOnError)
	fs.SetOutput(output)
	addr := fs.String("addr", env("LEDGER_ADDR", "0.0.0.0"), "listen address, host or host:port (LEDGER_ADDR)")
	portRange := fs.String("port-range", env("LEDGER_PORT_RANGE", "0"), "extra ports to try after the first one (LEDGER_PORT_RANGE)")
	difficulty := fs.String("difficulty", env("LEDGER_DIFFICULTY", "4"), "leading zeros required in a puzzle digest (LEDGER_DIFFICULTY)")
	workers := fs.String("workers", env("LEDGER_WORKERS", "0"), "mining goroutines, 0 for one per CPU (LEDGER_WORKERS)")
	mineTimeout := fs.String("mine-timeout", env("LEDGER_MINE_TIMEOUT", "60s"), "maximum duration of a mining request (LEDGER_MINE_TIMEOUT)")
	useTLS := fs.String("tls", env("LEDGER_TLS", "false"), "serve HTTPS with a self-signed certificate (LEDGER_TLS)")
	interactive := fs.String("interactive", env("LEDGER_INTERACTIVE", "true"), "prompt for transactions before serving (LEDGER_INTERACTIVE)")
	debug := fs.String("debug", env("LEDGER_DEBUG", "false"), "enable debug logs (LEDGER_DEBUG)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var cfg Config
	var err error
	if cfg.Host, cfg.Port, err = splitHostPort(*addr, defaultPort); err != nil {
		return Config{}, fmt.Errorf("addr: %w", err)
	}
	r, err := strconv.ParseUint(*portRange, 10, 16)
	if err != nil {
		return Config{}, fmt.Errorf("port-range: %w", err)
	}
	cfg.PortRange = uint16(r)
	if uint32(cfg.Port)+uint32(cfg.PortRange) > 65535 {
		return Config{}, fmt.Errorf("port-range: %d ports after %d exceed 65535", cfg.PortRange, cfg.Port)
	}
	d, err := strconv.ParseUint(*difficulty, 10, 32)
	if err != nil {
		return Config{}, fmt.Errorf("difficulty: %w", err)
	}
	if d < 1 || d > consensus.MaxDifficulty {
		return Config{}, fmt.Errorf("difficulty: %d not in 1-%d", d, consensus.MaxDifficulty)
	}
	cfg.Difficulty = uint32(d)
	if cfg.Workers, err = strconv.Atoi(*workers); err != nil || cfg.Workers < 0 {
		return Config{}, fmt.Errorf("workers: invalid value %q", *workers)
	}
	if cfg.MineTimeout, err = time.ParseDuration(*mineTimeout); err != nil {
		return Config{}, fmt.Errorf("mine-timeout: %w", err)
	}
	if cfg.MineTimeout <= 0 {
		return Config{}, fmt.Errorf("mine-timeout: must be positive")
	}
	if cfg.TLS, err = strconv.ParseBool(*useTLS); err != nil {
		return Config{}, fmt.Errorf("tls: %w", err)
	}
	if cfg.Interactive, err = strconv.ParseBool(*interactive); err != nil {
		return Config{}, fmt.Errorf("interactive: %w", err)
	}
	if cfg.Debug, err = strconv.ParseBool(*debug); err != nil {
		return Config{}, fmt.Errorf("debug: %w", err)
	}
	return cfg, nil
}
