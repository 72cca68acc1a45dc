package ir

import (
	"encoding/json"
	"fmt"
	"os"
)

// Keymap maps NEC codes to button labels. Codes are unique; insertion order
// is irrelevant.
type Keymap map[Code]string

// Resolution is the outcome of a code lookup. Code is always the raw code so
// unknown presses can be reported (and learned) by value.
type Resolution struct {
	Label string
	Known bool
	Code  Code
}

func (r Resolution) String() string {
	if r.Known {
		return r.Label
	}
	return "unknown " + r.Code.String()
}

// Resolve looks up code. Repeat results are the caller's business and must
// never be passed in as a code.
func (k Keymap) Resolve(code Code) Resolution {
	label, ok := k[code]
	return Resolution{Label: label, Known: ok, Code: code}
}

// HasCode reports whether any label is already bound to code.
func (k Keymap) HasCode(code Code) bool {
	_, ok := k[code]
	return ok
}

// Clone returns a copy that can be extended without touching the original.
func (k Keymap) Clone() Keymap {
	out := make(Keymap, len(k))
	for c, l := range k {
		out[c] = l
	}
	return out
}

// Merge copies every entry of other into k, overriding existing codes.
func (k Keymap) Merge(other Keymap) {
	for c, l := range other {
		k[c] = l
	}
}

// LoadKeymap reads a keymap persisted by Save. The file is a JSON object of
// hex code strings to labels, e.g. {"0xFF9867": "0"}.
func LoadKeymap(path string) (Keymap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keymap: %w", err)
	}
	var k Keymap
	if err := json.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("parse keymap %s: %w", path, err)
	}
	return k, nil
}

// Save writes the keymap as JSON, suitable for LoadKeymap.
func (k Keymap) Save(path string) error {
	data, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return fmt.Errorf("encode keymap: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write keymap: %w", err)
	}
	return nil
}

// DefaultKeymap covers the 17-key remote commonly bundled with HX1838
// receiver modules.
var DefaultKeymap = Keymap{
	0xFF9867: "0",
	0xFFA25D: "1",
	0xFF629D: "2",
	0xFFE21D: "3",
	0xFF22DD: "4",
	0xFF02FD: "5",
	0xFFC23D: "6",
	0xFFE01F: "7",
	0xFFA857: "8",
	0xFF906F: "9",
	0xFF6897: "*",
	0xFFB04F: "#",
	0xFF18E7: "UP",
	0xFF4AB5: "DOWN",
	0xFF10EF: "LEFT",
	0xFF5AA5: "RIGHT",
	0xFF38C7: "OK",
}
