//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/sweeney/radio-buttons/internal/buttons"
)

// RPIOReader samples buttons through the memory-mapped BCM2835 registers.
// Only one may be open per process.
type RPIOReader struct {
	wiring Wiring
	keys   []rpio.Pin
	ptt    []rpio.Pin
	sel    rpio.Pin
	hasSel bool

	keyLevels []int
	pttLevels []int
}

// NewRPIOReader maps the GPIO registers and configures the wired pins.
func NewRPIOReader(w Wiring) (*RPIOReader, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open rpio: %w", err)
	}

	r := &RPIOReader{
		wiring:    w,
		keyLevels: make([]int, len(w.Keys)),
		pttLevels: make([]int, len(w.PTT)),
	}
	for _, k := range w.Keys {
		pin := rpio.Pin(k.Offset)
		pin.Input()
		pin.PullDown()
		r.keys = append(r.keys, pin)
	}
	for _, off := range w.PTT {
		pin := rpio.Pin(off)
		pin.Input()
		pin.PullUp()
		r.ptt = append(r.ptt, pin)
	}
	if w.Select >= 0 {
		r.sel = rpio.Pin(w.Select)
		r.sel.Input()
		r.sel.PullOff()
		r.hasSel = true
	}
	return r, nil
}

// Sample reads the keys with the select line driven high, then PTT.
func (r *RPIOReader) Sample() (buttons.Mask, error) {
	if r.hasSel {
		r.sel.Output()
		r.sel.High()
		time.Sleep(r.wiring.Settle)
	}

	for i, pin := range r.keys {
		r.keyLevels[i] = levelOf(pin.Read())
	}

	if r.hasSel {
		r.sel.Input()
		r.sel.PullOff()
	}

	for i, pin := range r.ptt {
		r.pttLevels[i] = levelOf(pin.Read())
	}

	return r.wiring.decode(r.keyLevels, r.pttLevels), nil
}

func levelOf(s rpio.State) int {
	if s == rpio.High {
		return 1
	}
	return 0
}

// Close returns the select pin to an input and unmaps the registers.
func (r *RPIOReader) Close() error {
	if r.hasSel {
		r.sel.Input()
		r.sel.PullDown()
	}
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close rpio: %w", err)
	}
	return nil
}
