// Package units converts between metric and imperial units with short
// commands such as !km 26 or !c 100.
package units

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"butler/internal/plugins"
	"butler/internal/transport"
)

const troubleMessage = "I had some trouble with that :("

type dimension int

const (
	length dimension = iota
	mass
	temperature
)

// Unit converts to and from its dimension's base unit (metre, kilogram,
// kelvin).
type Unit struct {
	symbol   string
	dim      dimension
	toBase   func(float64) float64
	fromBase func(float64) float64
}

func linear(symbol string, dim dimension, factor float64) *Unit {
	return &Unit{
		symbol:   symbol,
		dim:      dim,
		toBase:   func(v float64) float64 { return v * factor },
		fromBase: func(v float64) float64 { return v / factor },
	}
}

var (
	metre      = linear("m", length, 1)
	kilometre  = linear("km", length, 1000)
	mile       = linear("mi", length, 1609.344)
	kilogram   = linear("kg", mass, 1)
	gram       = linear("g", mass, 0.001)
	pound      = linear("lbs", mass, 0.45359237)
	celsius    = &Unit{symbol: "°C", dim: temperature, toBase: func(v float64) float64 { return v + 273.15 }, fromBase: func(v float64) float64 { return v - 273.15 }}
	fahrenheit = &Unit{symbol: "°F", dim: temperature, toBase: func(v float64) float64 { return (v-32)*5/9 + 273.15 }, fromBase: func(v float64) float64 { return (v-273.15)*9/5 + 32 }}
	kelvin     = linear("K", temperature, 1)
)

// names maps everything a user may type after the number.
var names = map[string]*Unit{
	"m": metre, "metre": metre, "metres": metre, "meter": metre, "meters": metre,
	"km": kilometre, "kilometre": kilometre, "kilometres": kilometre, "kilometer": kilometre, "kilometers": kilometre,
	"mi": mile, "mile": mile, "miles": mile,
	"kg": kilogram, "kilo": kilogram, "kilos": kilogram, "kilogram": kilogram, "kilograms": kilogram,
	"g": gram, "gram": gram, "grams": gram,
	"lb": pound, "lbs": pound, "pound": pound, "pounds": pound,
	"c": celsius, "°c": celsius, "celsius": celsius,
	"f": fahrenheit, "°f": fahrenheit, "fahrenheit": fahrenheit,
	"k": kelvin, "kelvin": kelvin,
}

// Shortcut converts its argument to Target. A bare number is read in
// Default.
type Shortcut struct {
	Triggers []string
	Target   *Unit
	Default  *Unit
}

// DefaultShortcuts are !km, !mi, !c, !f, !kg and !lbs.
func DefaultShortcuts() []Shortcut {
	return []Shortcut{
		{Triggers: []string{"km"}, Target: kilometre, Default: mile},
		{Triggers: []string{"mi", "mile"}, Target: mile, Default: kilometre},
		{Triggers: []string{"c"}, Target: celsius, Default: fahrenheit},
		{Triggers: []string{"f"}, Target: fahrenheit, Default: celsius},
		{Triggers: []string{"kg"}, Target: kilogram, Default: pound},
		{Triggers: []string{"lb", "lbs", "pound"}, Target: pound, Default: kilogram},
	}
}

// Plugin is the unit conversion plugin.
type Plugin struct {
	shortcuts map[string]Shortcut
	order     []string
}

// New creates the plugin.
func New(shortcuts []Shortcut) *Plugin {
	p := &Plugin{shortcuts: make(map[string]Shortcut)}
	for _, sc := range shortcuts {
		for _, trigger := range sc.Triggers {
			p.shortcuts[strings.ToLower(trigger)] = sc
		}
		p.order = append(p.order, "!"+sc.Triggers[0])
	}
	return p
}

func (p *Plugin) Name() string { return "units" }

func (p *Plugin) Help() []plugins.HelpEntry {
	return []plugins.HelpEntry{
		{Command: strings.Join(p.order, " / ") + " AMOUNT [UNIT]", Description: "Convert AMOUNT to the unit of the command, e.g. !km 26 or !c 451 f."},
	}
}

func (p *Plugin) Handle(_ context.Context, msg transport.Message) (*plugins.Reply, error) {
	if msg.Kind != transport.KindPrivmsg {
		return nil, nil
	}
	trigger, args, ok := plugins.ParseCommand(msg.Text)
	if !ok {
		return nil, nil
	}
	sc, ok := p.shortcuts[trigger]
	if !ok || args == "" {
		return nil, nil
	}
	text, err := Convert(args, sc.Default, sc.Target)
	if err != nil {
		return plugins.Text(troubleMessage), nil
	}
	return plugins.Text(text), nil
}

// Convert reads "AMOUNT [UNIT]" (UNIT defaulting to from) and renders the
// amount in to, e.g. "26 mi = 41.84 km".
func Convert(input string, from, to *Unit) (string, error) {
	amount, rest := splitAmount(strings.TrimSpace(input))
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return "", fmt.Errorf("bad amount %q: %w", amount, err)
	}
	if rest != "" {
		u, ok := names[strings.ToLower(rest)]
		if !ok {
			return "", fmt.Errorf("unknown unit %q", rest)
		}
		from = u
	}
	if from.dim != to.dim {
		return "", fmt.Errorf("cannot convert %s to %s", from.symbol, to.symbol)
	}
	result := to.fromBase(from.toBase(value))
	shown := strconv.FormatFloat(value, 'f', -1, 64)
	return fmt.Sprintf("%s %s = %s %s", shown, from.symbol, format(result), to.symbol), nil
}

// splitAmount separates a leading number from the unit that follows it,
// with or without a space ("10km", "10 km").
func splitAmount(s string) (amount, rest string) {
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	return s[:end], strings.TrimSpace(s[end:])
}

func format(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
