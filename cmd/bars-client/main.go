// Command bars-client drives a Client against a channel server: a
// minimal host loop demonstrating how an embedder (a UI, a timer)
// would wire the pieces together and call Tick.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	infraconfig "github.com/smilemakc/bars/internal/infrastructure/config"
	"github.com/smilemakc/bars/internal/infrastructure/logger"
	"github.com/smilemakc/bars/internal/infrastructure/monitoring"
	"github.com/smilemakc/bars/internal/ipc"

	"github.com/smilemakc/bars/internal/client"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML process settings file")
		addr       = flag.String("addr", "", "channel server address (overrides config)")
	)
	flag.Parse()

	cfg, err := infraconfig.Load(*configPath)
	if err != nil {
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ServerAddr = *addr
	}

	log := logger.Setup(cfg.LogLevel)
	log.Info().Str("addr", cfg.ServerAddr).Msg("starting bars client")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := ipc.Dial(ctx, cfg.ServerAddr, cfg.AuthToken, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to dial channel")
	}
	defer ch.Close()

	c := client.New(ch, log)
	c.AddObserver(monitoring.NewZerologObserver(log))

	for _, icao := range cfg.Aerodromes {
		icao = strings.TrimSpace(icao)
		if icao == "" {
			continue
		}
		if err := c.Track(icao, true); err != nil {
			log.Warn().Err(err).Str("icao", icao).Msg("failed to track aerodrome")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Tick(time.Now().Unix())
		case <-quit:
			log.Info().Msg("shutting down bars client")
			return
		}
	}
}
