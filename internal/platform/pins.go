package platform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Pins maps line names to GPIO offsets (BCM numbering on a Pi).
type Pins map[string]int

// DefaultPins returns the offsets of the reference wiring.
func DefaultPins() Pins {
	return Pins{
		LineD5:     21,
		LineD6:     20,
		LineD7:     16,
		LineRow2:   12,
		LinePTT:    26,
		LinePTTExt: 19,
	}
}

// Offset returns the GPIO offset for a line.
func (p Pins) Offset(line string) (int, error) {
	off, ok := p[line]
	if !ok {
		return 0, fmt.Errorf("no pin configured for line %s", line)
	}
	return off, nil
}

// ParsePins parses "NAME=OFFSET" pairs, overriding defaults.
func ParsePins(pairs []string) (Pins, error) {
	p := DefaultPins()
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("pin %q: want NAME=OFFSET", pair)
		}
		off, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || off < 0 {
			return nil, fmt.Errorf("pin %q: invalid offset", pair)
		}
		p[strings.ToUpper(strings.TrimSpace(name))] = off
	}
	return p, nil
}

// Check reports a missing pin for any line the layout uses.
func (p Pins) Check(l Layout) error {
	var missing []string
	need := append([]string(nil), l.PTTLines...)
	for _, k := range l.Keys {
		need = append(need, k.Line)
	}
	if l.Select != "" {
		need = append(need, l.Select)
	}
	for _, line := range need {
		if _, ok := p[line]; !ok {
			missing = append(missing, line)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("no pin configured for %s", strings.Join(missing, ", "))
	}
	return nil
}
