package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/luca-patrignani/pow-ledger/consensus"
	"github.com/luca-patrignani/pow-ledger/ledger"
	"github.com/luca-patrignani/pow-ledger/network"
)

func main() {
	cfg, err := loadConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}

	ptermLogger := &pterm.DefaultLogger
	if cfg.Debug {
		ptermLogger = ptermLogger.WithLevel(pterm.LogLevelDebug)
	}
	// Create a new slog logger with the PTerm handler
	logger := slog.New(pterm.NewSlogHandler(ptermLogger))

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("PoW ", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("Ledger", pterm.FgDarkGray.ToStyle()),
	).Render()

	if err := run(cfg, logger); err != nil {
		logger.Error("ledger stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	bc := ledger.NewBlockchain(ledger.WithLogger(logger))
	miner, err := consensus.NewMiner(cfg.Difficulty,
		consensus.WithWorkers(cfg.Workers),
		consensus.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	node := consensus.NewNode(bc, miner, consensus.WithLogger(logger))

	genesis, err := bc.GetLatest()
	if err != nil {
		return err
	}
	pterm.Println(getBlockPanel(genesis))

	if cfg.Interactive {
		added, err := collectTransactions(ptermPrompter{}, bc)
		if err != nil {
			return fmt.Errorf("reading transactions: %w", err)
		}
		pterm.Success.Printfln("%d transaction(s) waiting to be mined", added)
		if added > 0 {
			table, err := getPoolTable(bc.Pending())
			if err != nil {
				return err
			}
			pterm.Println(table)
		}
	}

	scheme := "http"
	if cfg.TLS {
		scheme = "https"
	}
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Starting %s server on %s...", scheme, cfg.Host))
	l, err := network.Listen(cfg.Host, cfg.Port, cfg.Port+cfg.PortRange)
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}
	serverOpts := []network.ServerOption{
		network.WithMineTimeout(cfg.MineTimeout),
		network.WithLogger(logger),
	}
	var certPEM []byte
	if cfg.TLS {
		cert, pem, err := network.GenerateSelfSignedCert(l.Addr().String())
		if err != nil {
			spinner.Fail(err.Error())
			l.Close()
			return err
		}
		serverOpts = append(serverOpts, network.WithCertificate(cert))
		certPEM = pem
	}
	server := network.NewServer(bc, node, serverOpts...)
	spinner.Success(fmt.Sprintf("Listening on %s://%s (difficulty %d)", scheme, l.Addr().String(), cfg.Difficulty))

	if certPEM != nil {
		pterm.Info.Println("Self-signed certificate, trust it on clients:\n" + string(certPEM))
	}
	if tcp, ok := l.Addr().(*net.TCPAddr); ok {
		ifaceAddrs, err := net.InterfaceAddrs()
		if err != nil {
			logger.Warn("cannot list interface addresses", "error", err)
		}
		var items []pterm.BulletListItem
		for _, e := range clientEndpoints(tcp, ifaceAddrs) {
			items = append(items, pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("%s://%s on %s", scheme, e.addr, e.subnet.String())})
		}
		if len(items) > 0 {
			pterm.Info.Println("Reachable at:")
			pterm.DefaultBulletList.WithItems(items).Render()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := server.Start(l)
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Close(shutdownCtx); err != nil {
		return err
	}
	return <-errChan
}
