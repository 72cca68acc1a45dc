// Package pipeline runs the capture -> decode -> resolve loop and emits one
// button event per successfully decoded frame.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/derktes/ir-remote-decoder/ir"
)

// Event describes one decoded remote-control frame. For repeat frames Label
// and Code carry the previously resolved press and Repeat is set.
type Event struct {
	Label  string  `json:"label,omitempty"`
	Code   ir.Code `json:"code"`
	Known  bool    `json:"known"`
	Repeat bool    `json:"repeat"`
}

// Handler consumes button events. Handlers run on the pipeline goroutine and
// must not block.
type Handler func(Event)

// DefaultEventPause is the settle time after a processed frame before the
// next capture, so one press is not picked up twice.
const DefaultEventPause = 200 * time.Millisecond

// Config tunes a Pipeline. A non-positive EventPause disables the pause.
type Config struct {
	EventPause time.Duration
}

// Pipeline wires a BurstSource, a Decoder and a Keymap into a sequential
// decode loop. Bursts are processed strictly in arrival order with no
// buffering: presses arriving while a frame is being handled are lost, which
// is acceptable for a human-interaction device.
type Pipeline struct {
	source  ir.BurstSource
	decoder *ir.Decoder
	keymap  ir.Keymap
	logger  *slog.Logger

	handlers []Handler
	pause    time.Duration
	sleep    func(time.Duration)

	last    Event
	hasLast bool
}

// New returns a Pipeline resolving codes against keymap.
func New(source ir.BurstSource, decoder *ir.Decoder, keymap ir.Keymap, logger *slog.Logger, cfg Config) *Pipeline {
	return &Pipeline{
		source:  source,
		decoder: decoder,
		keymap:  keymap,
		logger:  logger,
		pause:   cfg.EventPause,
		sleep:   time.Sleep,
	}
}

// Subscribe registers a handler for every emitted event. Must be called
// before Run.
func (p *Pipeline) Subscribe(h Handler) {
	p.handlers = append(p.handlers, h)
}

// Run captures and decodes bursts until ctx is cancelled or the source
// fails. Decode failures are logged and recovered locally; no frame-level
// condition is fatal.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		burst, err := p.source.CaptureBurst(ctx)
		if err != nil {
			return err
		}
		p.handleBurst(burst)
	}
}

func (p *Pipeline) handleBurst(burst ir.Burst) {
	res, err := p.decoder.Decode(burst)
	if err != nil {
		p.logger.Debug("undecodable burst", "reason", err, "segments", len(burst))
		p.dumpBurst(burst)
		return
	}

	var ev Event
	switch {
	case res.Repeat:
		if !p.hasLast {
			// Repeat with nothing to repeat, e.g. we started listening
			// mid-hold. Nothing to emit.
			return
		}
		ev = p.last
		ev.Repeat = true
	default:
		r := p.keymap.Resolve(res.Code)
		ev = Event{Label: r.Label, Code: r.Code, Known: r.Known}
		p.last = ev
		p.hasLast = true
	}

	if ev.Known {
		p.logger.Info("button pressed", "button", ev.Label, "code", ev.Code, "repeat", ev.Repeat)
	} else {
		p.logger.Info("unknown code", "code", ev.Code, "repeat", ev.Repeat)
	}
	for _, h := range p.handlers {
		h(ev)
	}
	if p.pause > 0 {
		p.sleep(p.pause)
	}
}

// dumpBurst logs the raw segment timings of an undecodable burst, one line
// per segment, for tuning thresholds against real captures.
func (p *Pipeline) dumpBurst(burst ir.Burst) {
	if !p.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i, seg := range burst {
		p.logger.Debug("segment", "index", i, "segment", seg.String())
	}
}
