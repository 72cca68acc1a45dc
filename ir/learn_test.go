package ir

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestSession(buttons []string) (*Session, *time.Time) {
	s := NewSession(buttons, SessionConfig{})
	now := time.Unix(0, 0)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestSessionRejectsDuplicateCodes(t *testing.T) {
	s, now := newTestSession([]string{"PLAY", "STOP", "MUTE"})

	offers := []struct {
		code    Code
		button  string
		outcome Outcome
	}{
		{0xFF9867, "PLAY", OutcomeAccepted},
		{0xFF9867, "", OutcomeRejected},
		{0xFFA25D, "STOP", OutcomeAccepted},
		{0xFF629D, "MUTE", OutcomeAccepted},
	}
	for i, o := range offers {
		*now = now.Add(time.Second)
		button, outcome := s.Offer(o.code)
		if outcome != o.outcome || button != o.button {
			t.Fatalf("offer %d: got (%q, %s), want (%q, %s)", i, button, outcome, o.button, o.outcome)
		}
	}

	if !s.Done() {
		t.Fatal("session should be complete")
	}
	if s.Next() != "" {
		t.Fatalf("Next after completion = %q, want empty", s.Next())
	}
	km := s.Keymap()
	if len(km) != 3 {
		t.Fatalf("keymap has %d entries, want 3", len(km))
	}
	if km[0xFF9867] != "PLAY" || km[0xFFA25D] != "STOP" || km[0xFF629D] != "MUTE" {
		t.Fatalf("unexpected keymap %v", km)
	}
}

func TestSessionMinAcceptDelay(t *testing.T) {
	s, now := newTestSession([]string{"PLAY", "STOP"})

	if _, outcome := s.Offer(0xFF9867); outcome != OutcomeAccepted {
		t.Fatalf("first offer = %s, want accepted", outcome)
	}

	// A fresh code arriving right behind an accepted one is a held button
	// still repeating, not the next press.
	*now = now.Add(100 * time.Millisecond)
	if _, outcome := s.Offer(0xFFA25D); outcome != OutcomeIgnored {
		t.Fatalf("hasty offer = %s, want ignored", outcome)
	}

	*now = now.Add(500 * time.Millisecond)
	if _, outcome := s.Offer(0xFFA25D); outcome != OutcomeAccepted {
		t.Fatalf("delayed offer = %s, want accepted", outcome)
	}
}

func TestSessionIgnoresOffersOnceDone(t *testing.T) {
	s, now := newTestSession([]string{"PLAY"})
	s.Offer(0xFF9867)
	*now = now.Add(time.Second)
	if _, outcome := s.Offer(0xFFA25D); outcome != OutcomeIgnored {
		t.Fatalf("offer after completion = %s, want ignored", outcome)
	}
	if len(s.Keymap()) != 1 {
		t.Fatalf("keymap grew after completion: %v", s.Keymap())
	}
}

// scriptedSource replays canned bursts.
type scriptedSource struct {
	bursts []Burst
}

func (s *scriptedSource) CaptureBurst(ctx context.Context) (Burst, error) {
	if len(s.bursts) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	b := s.bursts[0]
	s.bursts = s.bursts[1:]
	return b, nil
}

func TestSessionRun(t *testing.T) {
	src := &scriptedSource{bursts: []Burst{
		necBurst(0xFF18E7),
		necBurst(0xFFFFFFFF),           // repeat, ignored
		{{Level: false, Duration: 80}}, // garbage, ignored
		necBurst(0xFF18E7),             // duplicate, rejected
		necBurst(0xFF4AB5),
	}}
	s := NewSession([]string{"UP", "DOWN"}, SessionConfig{MinAcceptDelay: time.Nanosecond})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	km, err := s.Run(context.Background(), src, NewDecoder(DecoderConfig{}), logger)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(km) != 2 || km[0xFF18E7] != "UP" || km[0xFF4AB5] != "DOWN" {
		t.Fatalf("unexpected keymap %v", km)
	}
}

func TestSessionRunSourceFailure(t *testing.T) {
	src := &scriptedSource{}
	s := NewSession([]string{"UP"}, SessionConfig{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := s.Run(context.Background(), src, NewDecoder(DecoderConfig{}), logger); err != io.ErrUnexpectedEOF {
		t.Fatalf("got %v, want ErrUnexpectedEOF", err)
	}
}
