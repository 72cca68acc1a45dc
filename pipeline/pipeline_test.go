package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/derktes/ir-remote-decoder/ir"
)

func necBurst(code uint32) ir.Burst {
	burst := ir.Burst{
		{Level: false, Duration: 8900},
		{Level: true, Duration: 4400},
	}
	for i := 31; i >= 0; i-- {
		space := uint32(560)
		if code>>uint(i)&1 == 1 {
			space = 1690
		}
		burst = append(burst,
			ir.LevelSegment{Level: false, Duration: 560},
			ir.LevelSegment{Level: true, Duration: space},
		)
	}
	return append(burst, ir.LevelSegment{Level: false, Duration: 560})
}

type scriptedSource struct {
	bursts []ir.Burst
}

func (s *scriptedSource) CaptureBurst(ctx context.Context) (ir.Burst, error) {
	if len(s.bursts) == 0 {
		return nil, io.EOF
	}
	b := s.bursts[0]
	s.bursts = s.bursts[1:]
	return b, nil
}

func runPipeline(t *testing.T, bursts []ir.Burst) []Event {
	t.Helper()
	src := &scriptedSource{bursts: bursts}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := New(src, ir.NewDecoder(ir.DecoderConfig{}), ir.DefaultKeymap, logger, Config{EventPause: -1})

	var events []Event
	p.Subscribe(func(ev Event) { events = append(events, ev) })

	if err := p.Run(context.Background()); err != io.EOF {
		t.Fatalf("Run: got %v, want io.EOF", err)
	}
	return events
}

func TestPipelineEmitsResolvedEvents(t *testing.T) {
	events := runPipeline(t, []ir.Burst{
		necBurst(0xFF9867),              // "0"
		necBurst(0xFFFFFFFF),            // repeat of "0"
		{{Level: false, Duration: 120}}, // undecodable, no event
		necBurst(0x12345678),            // unknown code
	})

	want := []Event{
		{Label: "0", Code: 0xFF9867, Known: true},
		{Label: "0", Code: 0xFF9867, Known: true, Repeat: true},
		{Code: 0x12345678},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, w := range want {
		if events[i] != w {
			t.Fatalf("event %d = %+v, want %+v", i, events[i], w)
		}
	}
}

func TestPipelineIgnoresRepeatBeforeAnyCode(t *testing.T) {
	events := runPipeline(t, []ir.Burst{
		necBurst(0xFFFFFFFF),
		necBurst(0xFF38C7), // "OK"
	})

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1: %+v", len(events), events)
	}
	if events[0].Repeat || events[0].Label != "OK" {
		t.Fatalf("event = %+v", events[0])
	}
}

func TestPipelineStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &scriptedSource{bursts: []ir.Burst{necBurst(0xFF9867)}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := New(src, ir.NewDecoder(ir.DecoderConfig{}), ir.DefaultKeymap, logger, Config{EventPause: -1})

	if err := p.Run(ctx); err != context.Canceled {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
