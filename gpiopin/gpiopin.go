// Package gpiopin reads an IR receiver pin through periph.io on Linux
// boards. Pins are addressed by their BCM numbers.
package gpiopin

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pin is a GPIO-backed ir.Pin. Receiver modules hold the line high through
// their internal pull-up and pull it low on carrier, so the pin is
// configured with a pull-up to match the idle state when nothing drives it.
type Pin struct {
	pin gpio.PinIO
}

// Open initialises the periph host and configures the BCM pin as a pulled-up
// input. host.Init is safe to call more than once.
func Open(bcm int) (*Pin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init gpio host: %w", err)
	}
	name := fmt.Sprintf("GPIO%d", bcm)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio pin %s not found", name)
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure %s as input: %w", name, err)
	}
	return &Pin{pin: p}, nil
}

// Read reports whether the pin is at logic high.
func (p *Pin) Read() bool {
	return p.pin.Read() == gpio.High
}
