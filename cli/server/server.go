// Package server contains the command starting the oracle daemon.
package server

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shiporacle/shiporacle/pkg/blockfrost"
	"github.com/shiporacle/shiporacle/pkg/config"
	"github.com/shiporacle/shiporacle/pkg/crypto/keys"
	"github.com/shiporacle/shiporacle/pkg/oracle"
	"github.com/shiporacle/shiporacle/pkg/services/metrics"
	"github.com/shiporacle/shiporacle/pkg/services/tracker"
	"github.com/shiporacle/shiporacle/pkg/shippo"
	"github.com/shiporacle/shiporacle/pkg/trp"
)

// NewCommands returns the server command of the oracle daemon.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:   "node",
		Usage:  "start the shipping oracle daemon",
		Action: startOracle,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "config-path, c",
				Usage: "path to the daemon YAML configuration",
				Value: "oracle.yml",
			},
		},
	}}
}

// handleLoggingParams builds a zap logger from the logging configuration.
func handleLoggingParams(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("log setting Level is not a valid level: %w", err)
		}
	}

	cc := zap.NewProductionConfig()
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Encoding = "console"
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cc.Build()
}

func startOracle(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String("config-path"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	log, err := handleLoggingParams(cfg.Logging)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	key, err := keys.NewPrivateKeyFromHex(cfg.OracleKey)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid oracle key: %w", err), 1)
	}

	chain, err := blockfrost.New(cfg.Blockfrost.URL, blockfrost.Options{
		ProjectID:      cfg.Blockfrost.ProjectID,
		RequestTimeout: cfg.Blockfrost.RequestTimeout.Duration(),
	})
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid Blockfrost endpoint: %w", err), 1)
	}

	builder, err := trp.New(cfg.TRP.URL, trp.Options{
		APIKey:         cfg.TRP.APIKey,
		RequestTimeout: cfg.TRP.RequestTimeout.Duration(),
	})
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid TRP endpoint: %w", err), 1)
	}

	client, err := oracle.NewClient(oracle.Config{
		OracleAddress:      cfg.OracleAddress,
		OraclePKH:          cfg.OraclePKH,
		PaymentAddress:     cfg.PaymentAddress,
		ValidatorScriptRef: cfg.ValidatorScriptRef,
	}, oracle.NewSigner(key), chain, builder, chain)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	trackerSrv := tracker.New(tracker.Config{
		Log:       log,
		Shipments: client,
		Carrier: shippo.New(cfg.Shippo.APIKey, shippo.Options{
			RequestTimeout: cfg.Shippo.RequestTimeout.Duration(),
		}),
		PollInterval: cfg.PollInterval.Duration(),
	})

	metricsSrv := metrics.NewPrometheusService(cfg.Metrics, log)
	go metricsSrv.Start()
	trackerSrv.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", zap.String("signal", sig.String()))

	trackerSrv.Shutdown()
	metricsSrv.ShutDown()
	return nil
}
