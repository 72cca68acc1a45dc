// Package serialsource captures IR bursts relayed over a serial port by a
// microcontroller that does the edge timing itself. Each line on the port is
// one JSON frame of raw mark/space tick pairs; the source converts them into
// the same level-segment form the GPIO sampler produces, so the decoder does
// not care where a burst came from.
package serialsource

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tarm/serial"

	"github.com/derktes/ir-remote-decoder/ir"
)

// Config selects the serial port carrying timing frames.
type Config struct {
	Port string
	Baud int
}

// frameData mirrors the JSON emitted by the capture firmware: Data holds
// [mark, space] pairs measured in ticks of Resolution microseconds.
type frameData struct {
	Resolution int     `json:"resolution"`
	Data       [][]int `json:"data"`
}

// Source reads timing frames from a serial port and hands them out as
// Bursts. It implements ir.BurstSource.
type Source struct {
	port   *serial.Port
	logger *slog.Logger
	bursts chan ir.Burst
	errc   chan error
}

// Open opens the port and starts reading frames in the background.
func Open(cfg Config, logger *slog.Logger) (*Source, error) {
	if cfg.Baud == 0 {
		cfg.Baud = 9600
	}
	port, err := serial.OpenPort(&serial.Config{Name: cfg.Port, Baud: cfg.Baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Port, err)
	}
	logger.Info("opened serial port", "port", cfg.Port, "baud", cfg.Baud)
	s := &Source{
		port:   port,
		logger: logger,
		bursts: make(chan ir.Burst),
		errc:   make(chan error, 1),
	}
	go s.readLoop()
	return s, nil
}

// Close closes the serial port, unblocking any pending CaptureBurst.
func (s *Source) Close() error {
	return s.port.Close()
}

// CaptureBurst returns the next relayed burst, or ctx.Err once cancelled.
func (s *Source) CaptureBurst(ctx context.Context) (ir.Burst, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case burst, ok := <-s.bursts:
		if !ok {
			select {
			case err := <-s.errc:
				return nil, err
			default:
				return nil, io.EOF
			}
		}
		return burst, nil
	}
}

func (s *Source) readLoop() {
	defer close(s.bursts)
	scanner := bufio.NewScanner(s.port)
	for scanner.Scan() {
		burst, err := parseFrameLine(scanner.Bytes())
		if err != nil {
			s.logger.Debug("skipping frame line", "reason", err)
			continue
		}
		s.bursts <- burst
	}
	if err := scanner.Err(); err != nil {
		s.errc <- err
	}
}

// parseFrameLine converts one JSON frame line into a Burst of alternating
// low-mark and high-space segments.
func parseFrameLine(line []byte) (ir.Burst, error) {
	var frame frameData
	if err := json.Unmarshal(line, &frame); err != nil {
		return nil, fmt.Errorf("unmarshal frame: %w", err)
	}
	if frame.Resolution <= 0 {
		return nil, fmt.Errorf("bad resolution %d", frame.Resolution)
	}
	if len(frame.Data) == 0 {
		return nil, errors.New("empty frame")
	}
	burst := make(ir.Burst, 0, 2*len(frame.Data))
	for i, pair := range frame.Data {
		if len(pair) != 2 {
			return nil, fmt.Errorf("pair %d has %d values", i, len(pair))
		}
		burst = append(burst,
			ir.LevelSegment{Level: false, Duration: uint32(pair[0] * frame.Resolution)},
			ir.LevelSegment{Level: true, Duration: uint32(pair[1] * frame.Resolution)},
		)
	}
	return burst, nil
}
