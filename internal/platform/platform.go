// Package platform maps physical button lines to logical keys for each
// supported radio variant.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/sweeney/radio-buttons/internal/buttons"
)

// Line names used by the built-in layouts.
const (
	LineD5     = "D5"
	LineD6     = "D6"
	LineD7     = "D7"
	LineRow2   = "ROW2"
	LinePTT    = "PTT"
	LinePTTExt = "PTT_EXT"
)

// KeyLine binds one input line to a modifier key name (SK1, SK2, ORANGE).
type KeyLine struct {
	Line string `yaml:"line" toml:"line"`
	Key  string `yaml:"key" toml:"key"`
}

// Layout describes the button wiring of one radio variant.
type Layout struct {
	Name string    `yaml:"name" toml:"name"`
	Keys []KeyLine `yaml:"keys" toml:"keys"`
	// PTTLines are active low; any one asserted sets PTT.
	PTTLines []string `yaml:"ptt_lines" toml:"ptt_lines"`
	// Select is driven high while the key lines are read. Empty means none.
	Select string `yaml:"select" toml:"select"`
}

// Binding is a validated KeyLine.
type Binding struct {
	Line string
	Key  buttons.Mask
}

var builtin = map[string]Layout{
	"MD-UV380": {
		Name:     "MD-UV380",
		Keys:     []KeyLine{{LineD7, "SK1"}, {LineD6, "SK2"}},
		PTTLines: []string{LinePTT, LinePTTExt},
		Select:   LineRow2,
	},
	"MD-380": {
		Name:     "MD-380",
		Keys:     []KeyLine{{LineD7, "SK2"}, {LineD6, "SK1"}},
		PTTLines: []string{LinePTT, LinePTTExt},
		Select:   LineRow2,
	},
	"DM-1701": {
		Name:     "DM-1701",
		Keys:     []KeyLine{{LineD5, "ORANGE"}, {LineD6, "SK2"}, {LineD7, "SK1"}},
		PTTLines: []string{LinePTT, LinePTTExt},
		Select:   LineRow2,
	},
	"MD-2017": {
		Name:     "MD-2017",
		Keys:     []KeyLine{{LineD5, "ORANGE"}, {LineD6, "SK2"}, {LineD7, "SK1"}},
		PTTLines: []string{LinePTT, LinePTTExt},
		Select:   LineRow2,
	},
	"RD-5R": {
		Name:     "RD-5R",
		Keys:     []KeyLine{{LineD7, "SK1"}, {LineD6, "SK2"}},
		PTTLines: []string{LinePTT, LinePTTExt},
		Select:   LineRow2,
	},
}

// Default is the layout used when none is configured.
const Default = "MD-UV380"

func normalize(name string) string {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, "-", "")
}

// Lookup returns a built-in layout by name. Dashes, underscores and case
// are ignored, so "mduv380" finds "MD-UV380".
func Lookup(name string) (Layout, error) {
	want := normalize(name)
	for key, l := range builtin {
		if normalize(key) == want {
			return l.clone(), nil
		}
	}
	return Layout{}, fmt.Errorf("unknown platform %q (known: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the built-in layouts in sorted order.
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Load reads a layout from a YAML (.yaml, .yml) or TOML (.toml) file.
func Load(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}

	var l Layout
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &l)
	case ".toml":
		err = toml.Unmarshal(data, &l)
	default:
		return Layout{}, fmt.Errorf("layout %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return Layout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}

	if l.Name == "" {
		l.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := l.Validate(); err != nil {
		return Layout{}, fmt.Errorf("layout %s: %w", path, err)
	}
	return l, nil
}

// Resolve loads file when set, otherwise looks up name.
func Resolve(name, file string) (Layout, error) {
	if file != "" {
		return Load(file)
	}
	if name == "" {
		name = Default
	}
	return Lookup(name)
}

// Validate checks that every key is a known modifier bound once and every
// line is used once.
func (l Layout) Validate() error {
	_, err := l.Bindings()
	return err
}

// Bindings returns the validated key bindings.
func (l Layout) Bindings() ([]Binding, error) {
	if len(l.Keys) == 0 {
		return nil, errors.New("no keys defined")
	}

	lines := make(map[string]bool)
	var keys buttons.Mask
	out := make([]Binding, 0, len(l.Keys))
	for _, kl := range l.Keys {
		if kl.Line == "" {
			return nil, fmt.Errorf("key %q has no line", kl.Key)
		}
		key, err := buttons.ParseKey(kl.Key)
		if err != nil {
			return nil, err
		}
		if _, ok := buttons.ModifierForKey(key); !ok {
			return nil, fmt.Errorf("key %q is not a modifier", kl.Key)
		}
		if keys&key != 0 {
			return nil, fmt.Errorf("key %s bound twice", key)
		}
		if lines[kl.Line] {
			return nil, fmt.Errorf("line %s bound twice", kl.Line)
		}
		keys |= key
		lines[kl.Line] = true
		out = append(out, Binding{Line: kl.Line, Key: key})
	}

	ptt := make(map[string]bool)
	for _, p := range l.PTTLines {
		if lines[p] {
			return nil, fmt.Errorf("PTT line %s is also a key line", p)
		}
		ptt[p] = true
	}
	if l.Select != "" && (lines[l.Select] || ptt[l.Select]) {
		return nil, fmt.Errorf("select line %s is also an input line", l.Select)
	}
	return out, nil
}

// Modifiers returns the modifiers present in the layout. An invalid layout
// has none; the result is never nil, which the classifier would read as all.
func (l Layout) Modifiers() []buttons.Modifier {
	out := []buttons.Modifier{}
	bindings, err := l.Bindings()
	if err != nil {
		return out
	}
	for _, m := range buttons.AllModifiers {
		for _, b := range bindings {
			if b.Key == m.Key() {
				out = append(out, m)
			}
		}
	}
	return out
}

// HasOrange reports whether the layout has an orange key.
func (l Layout) HasOrange() bool {
	for _, m := range l.Modifiers() {
		if m == buttons.ModOrange {
			return true
		}
	}
	return false
}

func (l Layout) clone() Layout {
	c := l
	c.Keys = append([]KeyLine(nil), l.Keys...)
	c.PTTLines = append([]string(nil), l.PTTLines...)
	return c
}
