package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"clobengine/internal/common"
	"clobengine/internal/config"
	"clobengine/internal/engine"
	"clobengine/internal/metrics"
	"clobengine/internal/wire"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "clob-server",
		Short: "Runs a single-market order-book matching server",
		RunE:  run,
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a config file (optional)")

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cmd *cobra.Command, args []string) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	eng, initialized, err := engine.InitMarket(
		common.NewIdentity("authority"),
		common.NewIdentity("base-mint"),
		common.NewIdentity("quote-mint"),
		cfg.Market.BaseLotSize,
		cfg.Market.QuoteTickSize,
	)
	if err != nil {
		return err
	}
	log.Info().
		Str("base_mint", initialized.BaseMint.String()).
		Str("quote_mint", initialized.QuoteMint.String()).
		Uint64("base_lot_size", initialized.BaseLotSize).
		Uint64("quote_tick_size", initialized.QuoteTickSize).
		Msg("market initialized")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector(eng)
	metricsServer := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: collector.Handler()}
	go func() {
		log.Info().Str("addr", cfg.Server.MetricsAddr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()

	srv := wire.New(cfg.Server.ListenAddr, eng, cfg.Server.Workers)
	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("wire server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
	srv.Shutdown()
	return metricsServer.Close()
}
