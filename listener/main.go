// The listener decodes button presses from the configured burst source and
// publishes them: to the log, and to websocket subscribers on
// /events/stream for display collaborators to consume.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/derktes/ir-remote-decoder/config"
	"github.com/derktes/ir-remote-decoder/gpiopin"
	"github.com/derktes/ir-remote-decoder/ir"
	"github.com/derktes/ir-remote-decoder/logging"
	"github.com/derktes/ir-remote-decoder/pipeline"
	"github.com/derktes/ir-remote-decoder/serialsource"
	"github.com/derktes/ir-remote-decoder/stream"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logger, closeLog, err := logging.Setup(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	keymap := ir.DefaultKeymap.Clone()
	if cfg.KeymapFile != "" {
		learned, err := ir.LoadKeymap(cfg.KeymapFile)
		switch {
		case err == nil:
			keymap.Merge(learned)
			logger.Info("loaded keymap", "file", cfg.KeymapFile, "entries", len(learned))
		case errors.Is(err, os.ErrNotExist):
			logger.Info("keymap file missing, using built-in keymap", "file", cfg.KeymapFile)
		default:
			return err
		}
	}

	source, closeSource, err := openSource(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	decoder := ir.NewDecoder(decoderConfig(cfg.Decoder))
	p := pipeline.New(source, decoder, keymap, logger, pipeline.Config{EventPause: cfg.EventPause})

	srv := stream.New(keymap, logger)
	p.Subscribe(srv.Broadcast)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run(ctx, cfg.Listen)
	}()

	logger.Info("listening for remote presses", "source", cfg.Source)
	err = p.Run(ctx)
	stop()
	if srvErr := <-serverErr; err == nil {
		err = srvErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openSource(cfg *config.Config, logger *slog.Logger) (ir.BurstSource, func() error, error) {
	switch cfg.Source {
	case config.SourceSerial:
		src, err := serialsource.Open(serialsource.Config{Port: cfg.Serial.Port, Baud: cfg.Serial.Baud}, logger)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	default:
		pin, err := gpiopin.Open(cfg.Pin)
		if err != nil {
			return nil, nil, err
		}
		sampler := ir.NewSampler(pin, ir.NewSystemClock(), ir.SamplerConfig{
			PollInterval: time.Duration(cfg.PollIntervalUs) * time.Microsecond,
			WindowMicros: uint32(cfg.WindowUs),
		})
		return sampler, func() error { return nil }, nil
	}
}

func decoderConfig(d config.DecoderConfig) ir.DecoderConfig {
	return ir.DecoderConfig{
		LeaderMarkMin:  uint32(d.LeaderMarkMinUs),
		LeaderMarkMax:  uint32(d.LeaderMarkMaxUs),
		LeaderSpaceMin: uint32(d.LeaderSpaceMinUs),
		LeaderSpaceMax: uint32(d.LeaderSpaceMaxUs),
		BitThreshold:   uint32(d.BitThresholdUs),
	}
}
