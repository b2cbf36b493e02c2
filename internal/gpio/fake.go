package gpio

import (
	"errors"

	"github.com/sweeney/radio-buttons/internal/buttons"
)

// FakeReader is a test double that returns scripted raw masks.
type FakeReader struct {
	// Samples contains scripted masks to return.
	// Each call to Sample() consumes the next one.
	Samples []buttons.Mask

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Sample()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []buttons.Mask) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Sample returns the next scripted mask.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Sample() (buttons.Mask, error) {
	if f.ReadError != nil {
		return buttons.None, f.ReadError
	}

	if len(f.Samples) == 0 {
		return buttons.None, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
