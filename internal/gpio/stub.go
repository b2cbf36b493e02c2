//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/radio-buttons/internal/buttons"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(chipName string, w Wiring) (*RealReader, error) {
	return nil, errUnsupported
}

// Sample is not implemented on non-Linux platforms.
func (r *RealReader) Sample() (buttons.Mask, error) {
	return buttons.None, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}

// RPIOReader is not available on non-Linux platforms.
type RPIOReader struct{}

// NewRPIOReader returns an error on non-Linux platforms.
func NewRPIOReader(w Wiring) (*RPIOReader, error) {
	return nil, errUnsupported
}

// Sample is not implemented on non-Linux platforms.
func (r *RPIOReader) Sample() (buttons.Mask, error) {
	return buttons.None, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RPIOReader) Close() error {
	return nil
}
