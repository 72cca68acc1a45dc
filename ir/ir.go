// Package ir captures and decodes NEC infrared remote-control signals.
//
// A demodulating IR receiver (HX1838 or similar) idles at logic high and
// pulls its output low while a 38kHz carrier is present. The Sampler polls
// such a pin and records each contiguous logic level together with how long
// it persisted; the Decoder interprets the recorded timings as an NEC frame
// and yields a 32-bit code; a Keymap resolves the code to a button label.
package ir

import (
	"fmt"
	"strconv"
)

// LevelSegment is one contiguous period during which the receiver pin held a
// constant logic level. Level is true for high (idle), false for low (mark).
// Duration is in microseconds.
type LevelSegment struct {
	Level    bool
	Duration uint32
}

func (s LevelSegment) String() string {
	lvl := 0
	if s.Level {
		lvl = 1
	}
	return fmt.Sprintf("lvl=%d %6dus", lvl, s.Duration)
}

// Burst is the ordered sequence of level segments captured for a single IR
// transmission attempt, starting at the falling edge that begins it.
type Burst []LevelSegment

// Code is a 32-bit NEC code, packed MSB-first from the decoded bits.
type Code uint32

// RepeatCode is the NEC repeat sentinel. It is sent while a button is held
// and never identifies a button by itself.
const RepeatCode Code = 0xFFFFFFFF

func (c Code) String() string {
	return fmt.Sprintf("0x%08X", uint32(c))
}

// MarshalText encodes the code as a hex string such as "0xFF9867". Keymap
// files and event payloads rely on this for an exact code<->label round trip.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses the hex form produced by MarshalText. Plain decimal
// is accepted too.
func (c *Code) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 0, 32)
	if err != nil {
		return fmt.Errorf("parse code %q: %w", text, err)
	}
	*c = Code(v)
	return nil
}
