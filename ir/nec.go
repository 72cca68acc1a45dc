package ir

import (
	"errors"
	"fmt"
)

// Decode failure reasons. All are recoverable; the caller just captures the
// next burst.
var (
	ErrTooShort   = errors.New("burst too short")
	ErrBadLeader  = errors.New("bad NEC leader")
	ErrIncomplete = errors.New("incomplete NEC frame")
)

// Result is the outcome of decoding one Burst. When Repeat is set the frame
// was the NEC repeat sentinel and Code carries no button identity.
type Result struct {
	Repeat bool
	Code   Code
}

// DecoderConfig holds the NEC timing tolerances in microseconds. Zero values
// select the defaults, which are deliberately wide: cheap receivers and
// software polling both smear the nominal timings.
type DecoderConfig struct {
	// Leader mark (~9000us nominal) and space (~4500us nominal) bounds,
	// inclusive on both ends.
	LeaderMarkMin  uint32
	LeaderMarkMax  uint32
	LeaderSpaceMin uint32
	LeaderSpaceMax uint32

	// BitThreshold discriminates bit spaces: strictly above decodes as 1.
	// Nominal spaces are ~560us for 0 and ~1690us for 1.
	BitThreshold uint32
}

func (c *DecoderConfig) setDefaults() {
	if c.LeaderMarkMin == 0 {
		c.LeaderMarkMin = 7000
	}
	if c.LeaderMarkMax == 0 {
		c.LeaderMarkMax = 10000
	}
	if c.LeaderSpaceMin == 0 {
		c.LeaderSpaceMin = 3500
	}
	if c.LeaderSpaceMax == 0 {
		c.LeaderSpaceMax = 5000
	}
	if c.BitThreshold == 0 {
		c.BitThreshold = 1200
	}
}

// Decoder decodes NEC frames from captured Bursts.
type Decoder struct {
	cfg DecoderConfig
}

// NewDecoder returns a Decoder with the given tolerances.
func NewDecoder(cfg DecoderConfig) *Decoder {
	cfg.setDefaults()
	return &Decoder{cfg: cfg}
}

// Decode validates the NEC leader, walks the remaining segments as
// (mark, space) pairs and packs 32 bits MSB-first. A pair whose levels do
// not match the expected low-then-high pattern advances the walk by a single
// segment, so one spurious or missing transition does not sink the whole
// frame.
func (d *Decoder) Decode(burst Burst) (Result, error) {
	if len(burst) < 4 {
		return Result{}, fmt.Errorf("%w: %d segments", ErrTooShort, len(burst))
	}

	leadMark, leadSpace := burst[0], burst[1]
	if leadMark.Level || leadMark.Duration < d.cfg.LeaderMarkMin || leadMark.Duration > d.cfg.LeaderMarkMax {
		return Result{}, fmt.Errorf("%w: leader mark %s", ErrBadLeader, leadMark)
	}
	if !leadSpace.Level || leadSpace.Duration < d.cfg.LeaderSpaceMin || leadSpace.Duration > d.cfg.LeaderSpaceMax {
		return Result{}, fmt.Errorf("%w: leader space %s", ErrBadLeader, leadSpace)
	}

	var value uint32
	bits := 0
	i := 2
	for i+1 < len(burst) && bits < 32 {
		mark, space := burst[i], burst[i+1]
		if mark.Level || !space.Level {
			// Misaligned pair, likely a glitch. Resync on the next segment.
			i++
			continue
		}
		value <<= 1
		if space.Duration > d.cfg.BitThreshold {
			value |= 1
		}
		bits++
		i += 2
	}
	if bits < 32 {
		return Result{}, fmt.Errorf("%w: got %d of 32 bits", ErrIncomplete, bits)
	}

	if Code(value) == RepeatCode {
		return Result{Repeat: true}, nil
	}
	return Result{Code: Code(value)}, nil
}
