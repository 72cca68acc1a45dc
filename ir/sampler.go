package ir

import (
	"context"
	"time"
)

// Pin reads the current logic level of the IR receiver output. True is high
// (idle), false is low (active mark).
type Pin interface {
	Read() bool
}

// BurstSource produces one Burst per IR transmission attempt. Implemented by
// Sampler for directly attached receivers and by serialsource.Source for
// frames relayed from a microcontroller.
type BurstSource interface {
	CaptureBurst(ctx context.Context) (Burst, error)
}

const (
	// DefaultPollInterval is the pin sampling period. Short enough not to
	// miss the ~560us NEC marks, long enough not to spin the CPU flat out.
	DefaultPollInterval = 30 * time.Microsecond

	// DefaultWindowMicros bounds one capture after the burst starts. An NEC
	// frame is ~68ms; 200ms leaves room for trailing repeat frames.
	DefaultWindowMicros = 200000
)

// SamplerConfig tunes a Sampler. Zero values select the defaults.
type SamplerConfig struct {
	PollInterval time.Duration
	WindowMicros uint32
}

func (c *SamplerConfig) setDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.WindowMicros == 0 {
		c.WindowMicros = DefaultWindowMicros
	}
}

// Sampler polls an IR receiver pin and turns level transitions into Bursts.
type Sampler struct {
	pin   Pin
	clock Clock
	cfg   SamplerConfig
	sleep func(time.Duration)
}

// NewSampler returns a Sampler reading pin against clock.
func NewSampler(pin Pin, clock Clock, cfg SamplerConfig) *Sampler {
	cfg.setDefaults()
	return &Sampler{
		pin:   pin,
		clock: clock,
		cfg:   cfg,
		sleep: time.Sleep,
	}
}

// CaptureBurst blocks until the pin falls from its idle-high level, then
// records level segments until the capture window elapses. The wait for the
// initial falling edge is unbounded; ctx is the only way out when no remote
// is in range. The returned Burst always contains at least the final,
// possibly partial, segment. A Burst far too short to decode is a normal
// outcome for a corrupted or truncated frame, not an error.
func (s *Sampler) CaptureBurst(ctx context.Context) (Burst, error) {
	for s.pin.Read() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.sleep(s.cfg.PollInterval)
	}

	burst := make(Burst, 0, 80)
	last := false
	start := s.clock.NowMicros()
	lastChange := start

	for MicrosDiff(s.clock.NowMicros(), start) < int32(s.cfg.WindowMicros) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if v := s.pin.Read(); v != last {
			now := s.clock.NowMicros()
			burst = append(burst, LevelSegment{Level: last, Duration: uint32(MicrosDiff(now, lastChange))})
			last = v
			lastChange = now
		}
		s.sleep(s.cfg.PollInterval)
	}

	// Close out whatever level was in progress when the window expired.
	burst = append(burst, LevelSegment{Level: last, Duration: uint32(MicrosDiff(s.clock.NowMicros(), lastChange))})
	return burst, nil
}
