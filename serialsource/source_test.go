package serialsource

import (
	"testing"

	"github.com/derktes/ir-remote-decoder/ir"
)

func TestParseFrameLine(t *testing.T) {
	line := []byte(`{"resolution":20,"data":[[450,225],[28,28],[28,84]]}`)
	burst, err := parseFrameLine(line)
	if err != nil {
		t.Fatalf("parseFrameLine: %v", err)
	}

	want := ir.Burst{
		{Level: false, Duration: 9000},
		{Level: true, Duration: 4500},
		{Level: false, Duration: 560},
		{Level: true, Duration: 560},
		{Level: false, Duration: 560},
		{Level: true, Duration: 1680},
	}
	if len(burst) != len(want) {
		t.Fatalf("got %d segments, want %d: %v", len(burst), len(want), burst)
	}
	for i, w := range want {
		if burst[i] != w {
			t.Fatalf("segment %d = %v, want %v", i, burst[i], w)
		}
	}
}

func TestParseFrameLineRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", "Decoded NEC: Value:FF9867"},
		{"zero resolution", `{"resolution":0,"data":[[450,225]]}`},
		{"empty data", `{"resolution":20,"data":[]}`},
		{"ragged pair", `{"resolution":20,"data":[[450]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFrameLine([]byte(tt.line)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
