// The learner runs an interactive session that maps each expected remote
// button to the NEC code it produces, then writes the finished keymap to a
// file the listener can load.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/derktes/ir-remote-decoder/config"
	"github.com/derktes/ir-remote-decoder/gpiopin"
	"github.com/derktes/ir-remote-decoder/ir"
	"github.com/derktes/ir-remote-decoder/logging"
	"github.com/derktes/ir-remote-decoder/serialsource"
)

// defaultButtons matches the 17-key remote bundled with HX1838 modules.
var defaultButtons = []string{
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"*", "#", "UP", "DOWN", "LEFT", "RIGHT", "OK",
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	out := flag.String("out", "keymap.json", "file to write the learned keymap to")
	buttons := flag.String("buttons", "", "comma-separated button names to learn (default: the 17-key remote)")
	flag.Parse()

	if err := run(*configPath, *out, *buttons); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, out, buttons string) error {
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

	names := defaultButtons
	if buttons != "" {
		names = nil
		for _, n := range strings.Split(buttons, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		if len(names) == 0 {
			return errors.New("no button names given")
		}
	}

	source, closeSource, err := openSource(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	decoder := ir.NewDecoder(decoderConfig(cfg.Decoder))
	session := ir.NewSession(names, ir.SessionConfig{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("learning session started", "buttons", len(names))
	keymap, err := session.Run(ctx, source, decoder, logger)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("learning session cancelled")
		}
		return err
	}

	if err := keymap.Save(out); err != nil {
		return err
	}
	logger.Info("keymap written", "file", out, "entries", len(keymap))
	for code, label := range keymap {
		fmt.Printf("%s: %s\n", label, code)
	}
	return nil
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
