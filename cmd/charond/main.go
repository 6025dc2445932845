package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/styxlabs/charon/config"
	"github.com/styxlabs/charon/internal/dns/blocklist"
	"github.com/styxlabs/charon/internal/dns/codec"
	"github.com/styxlabs/charon/internal/dns/common/clock"
	"github.com/styxlabs/charon/internal/dns/common/log"
	"github.com/styxlabs/charon/internal/dns/domain"
	"github.com/styxlabs/charon/internal/dns/engine"
	"github.com/styxlabs/charon/internal/dns/forwarder"
	"github.com/styxlabs/charon/internal/dns/store"
)

const version = "0.1.0-dev"

func main() {
	var dbPath string
	flag.StringVar(&dbPath, "db", "", "path to a bbolt settings override database")
	flag.Parse()

	configPath := flag.Arg(0)

	cfg, err := config.Load(configPath, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := log.Configure(cfg.Env, cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "logging configuration error: %v\n", err)
		os.Exit(1)
	}
	logger := log.Named(log.GetLogger(), "charond")

	logger.Info(map[string]any{
		"version":        version,
		"env":            cfg.Env,
		"listen_addr":    cfg.ListenAddr,
		"listen_port":    cfg.ListenPort,
		"upstream":       cfg.Upstream,
		"control_socket": cfg.ControlSocket,
	}, "starting charon")

	e, err := buildEngine(cfg, logger)
	if err != nil {
		logger.Fatal(map[string]any{"error": err.Error()}, "failed to build engine")
	}
	defer e.Close()

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info(map[string]any{"signal": sig.String()}, "shutdown signal received")
		close(stop)
	}()

	if err := e.Run(stop); err != nil {
		logger.Fatal(map[string]any{"error": err.Error()}, "engine stopped with an error")
		os.Exit(1)
	}

	logger.Info(nil, "charon stopped gracefully")
}

func buildEngine(cfg *config.AppConfig, logger log.Logger) (*engine.Engine, error) {
	clk := clock.RealClock{}

	st, err := store.New(clk, cfg.MaxCacheEntries)
	if err != nil {
		return nil, fmt.Errorf("building store: %w", err)
	}

	primary, secondary, err := cfg.UpstreamAddrs()
	if err != nil {
		return nil, err
	}
	fwd := forwarder.New(primary, secondary, time.Duration(cfg.UpstreamTimeoutMS)*time.Millisecond)

	var bl blocklist.Blocklist
	if cfg.BlocklistDir != "" || cfg.BlocklistDB != "" {
		dbPath := cfg.BlocklistDB
		if dbPath == "" {
			dbPath = "/var/lib/charon/blocklist.db"
		}
		bl, err = blocklist.Open(blocklist.Options{DBPath: dbPath})
		if err != nil {
			return nil, fmt.Errorf("opening blocklist store: %w", err)
		}
		if cfg.BlocklistDir != "" {
			n, err := blocklist.LoadDir(bl, cfg.BlocklistDir, clk.Now())
			if err != nil {
				return nil, fmt.Errorf("loading blocklist directory %s: %w", cfg.BlocklistDir, err)
			}
			logger.Info(map[string]any{"blocklist_dir": cfg.BlocklistDir, "rules": n}, "blocklist directory loaded")
		}
	} else {
		bl = blocklist.Noop{}
	}

	blockRCode := domain.RCodeNXDomain
	if cfg.BlocklistStrategy == "refused" {
		blockRCode = domain.RCodeRefused
	}

	return engine.New(engine.Options{
		UDPAddr:       net.JoinHostPort(cfg.ListenAddr, fmt.Sprintf("%d", cfg.ListenPort)),
		ControlSocket: cfg.ControlSocket,
		ZoneFile:      cfg.ZoneFile,
		Store:         st,
		Codec:         codec.NewUDPCodec(logger),
		Forwarder:     fwd,
		Blocklist:     bl,
		Logger:        logger,
		BlockRCode:    blockRCode,
	})
}
