// Package buttons classifies raw modifier-key samples into press, release,
// short, long and extra-long events.
// This package has NO hardware dependencies. Samples arrive through the
// Sampler interface and elapsed time through the Countdowns table.
package buttons

import (
	"fmt"
	"strings"
)

// Mask is a set of button bits. A raw sample only carries key and PTT
// levels; a classified mask also carries the short/long/extra-long bits.
type Mask uint32

const (
	SK1    Mask = 1 << 0
	SK2    Mask = 1 << 1
	Orange Mask = 1 << 2
	PTT    Mask = 1 << 3

	SK1ShortUp       Mask = 1 << 4
	SK1LongDown      Mask = 1 << 5
	SK1ExtraLongDown Mask = 1 << 6

	SK2ShortUp       Mask = 1 << 7
	SK2LongDown      Mask = 1 << 8
	SK2ExtraLongDown Mask = 1 << 9

	OrangeShortUp       Mask = 1 << 10
	OrangeLongDown      Mask = 1 << 11
	OrangeExtraLongDown Mask = 1 << 12

	None Mask = 0
)

// RawKeys is the set of bits a Sampler may report.
const RawKeys = SK1 | SK2 | Orange | PTT

var maskNames = []struct {
	bit  Mask
	name string
}{
	{SK1, "SK1"},
	{SK2, "SK2"},
	{Orange, "ORANGE"},
	{PTT, "PTT"},
	{SK1ShortUp, "SK1_SHORT_UP"},
	{SK1LongDown, "SK1_LONG_DOWN"},
	{SK1ExtraLongDown, "SK1_EXTRA_LONG_DOWN"},
	{SK2ShortUp, "SK2_SHORT_UP"},
	{SK2LongDown, "SK2_LONG_DOWN"},
	{SK2ExtraLongDown, "SK2_EXTRA_LONG_DOWN"},
	{OrangeShortUp, "ORANGE_SHORT_UP"},
	{OrangeLongDown, "ORANGE_LONG_DOWN"},
	{OrangeExtraLongDown, "ORANGE_EXTRA_LONG_DOWN"},
}

// Has reports whether every bit of b is set in m.
func (m Mask) Has(b Mask) bool {
	return b != 0 && m&b == b
}

// Names returns the names of the set bits in declaration order.
func (m Mask) Names() []string {
	var out []string
	for _, n := range maskNames {
		if m&n.bit != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

func (m Mask) String() string {
	if m == None {
		return "NONE"
	}
	return strings.Join(m.Names(), "|")
}

// ParseKey converts a raw key name (SK1, SK2, ORANGE, PTT) to its bit.
func ParseKey(name string) (Mask, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SK1":
		return SK1, nil
	case "SK2":
		return SK2, nil
	case "ORANGE":
		return Orange, nil
	case "PTT":
		return PTT, nil
	}
	return None, fmt.Errorf("unknown key %q", name)
}

// Modifier identifies one of the side/top modifier keys.
type Modifier int

const (
	ModOrange Modifier = iota
	ModSK1
	ModSK2

	numModifiers
)

// AllModifiers lists every modifier in classification order.
var AllModifiers = []Modifier{ModOrange, ModSK1, ModSK2}

type modifierBits struct {
	key       Mask
	shortUp   Mask
	long      Mask
	extraLong Mask
}

var modifierTable = [numModifiers]modifierBits{
	ModOrange: {Orange, OrangeShortUp, OrangeLongDown, OrangeExtraLongDown},
	ModSK1:    {SK1, SK1ShortUp, SK1LongDown, SK1ExtraLongDown},
	ModSK2:    {SK2, SK2ShortUp, SK2LongDown, SK2ExtraLongDown},
}

// Key returns the raw key bit for the modifier.
func (m Modifier) Key() Mask { return modifierTable[m].key }

// ShortUp returns the short-release pulse bit for the modifier.
func (m Modifier) ShortUp() Mask { return modifierTable[m].shortUp }

// LongDown returns the long-press level bit for the modifier.
func (m Modifier) LongDown() Mask { return modifierTable[m].long }

// ExtraLongDown returns the extra-long-press level bit for the modifier.
func (m Modifier) ExtraLongDown() Mask { return modifierTable[m].extraLong }

func (m Modifier) String() string {
	switch m {
	case ModOrange:
		return "ORANGE"
	case ModSK1:
		return "SK1"
	case ModSK2:
		return "SK2"
	}
	return fmt.Sprintf("Modifier(%d)", int(m))
}

// ModifierForKey returns the modifier owning a raw key bit.
func ModifierForKey(key Mask) (Modifier, bool) {
	for _, m := range AllModifiers {
		if m.Key() == key {
			return m, true
		}
	}
	return 0, false
}

// Phase is the press state of one modifier.
type Phase int

const (
	Released Phase = iota
	PressedShort
	PressedLong
	PressedExtraLong
)

func (p Phase) String() string {
	switch p {
	case Released:
		return "RELEASED"
	case PressedShort:
		return "PRESSED"
	case PressedLong:
		return "LONG"
	case PressedExtraLong:
		return "EXTRA_LONG"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Event summarises whether the observable button state changed.
type Event int

const (
	EventNone Event = iota
	EventChange
)

func (e Event) String() string {
	if e == EventChange {
		return "CHANGE"
	}
	return "NONE"
}

// ModifierCounts tracks completed gestures for one modifier.
type ModifierCounts struct {
	Short     int
	Long      int
	ExtraLong int
}

// EventCounts tracks classifier output since initialisation.
type EventCounts struct {
	Changes   int
	Modifiers [numModifiers]ModifierCounts
}

// For returns the counts for a single modifier.
func (c EventCounts) For(m Modifier) ModifierCounts {
	return c.Modifiers[m]
}
