// Package query turns the argument text of a !games command into a
// structured Query.
package query

import (
	"strings"
)

// TimeFilter selects games by status or kickoff time.
type TimeFilter int

const (
	SlidingWindow TimeFilter = iota
	Today
	Tomorrow
	Yesterday
	Finished
	Live
	Upcoming
)

func (f TimeFilter) String() string {
	switch f {
	case SlidingWindow:
		return "sliding_window"
	case Today:
		return "today"
	case Tomorrow:
		return "tomorrow"
	case Yesterday:
		return "yesterday"
	case Finished:
		return "finished"
	case Live:
		return "live"
	case Upcoming:
		return "upcoming"
	default:
		return "unknown"
	}
}

// DisplayOrder selects how matching games are laid out.
type DisplayOrder int

const (
	// CountryCompetition keeps the provider's grouping.
	CountryCompetition DisplayOrder = iota
	// ByTime sorts all games by kickoff.
	ByTime
)

func (o DisplayOrder) String() string {
	if o == ByTime {
		return "time"
	}
	return "country_competition"
}

// Query is the parsed form of a games command. Empty Country or
// Competition means no constraint.
type Query struct {
	Terms       []string
	Country     string
	Competition string
	Time        TimeFilter
	Order       DisplayOrder
}

// Text returns the free terms joined by spaces.
func (q Query) Text() string {
	return strings.Join(q.Terms, " ")
}

// modifiers maps @-tokens (lower case) to the setting they change.
var modifiers = map[string]func(*Query){
	"@today":     func(q *Query) { q.Time = Today },
	"@now":       func(q *Query) { q.Time = Live },
	"@live":      func(q *Query) { q.Time = Live },
	"@tomorrow":  func(q *Query) { q.Time = Tomorrow },
	"@yesterday": func(q *Query) { q.Time = Yesterday },
	"@yday":      func(q *Query) { q.Time = Yesterday },
	"@finished":  func(q *Query) { q.Time = Finished },
	"@past":      func(q *Query) { q.Time = Finished },
	"@done":      func(q *Query) { q.Time = Finished },
	"@upcoming":  func(q *Query) { q.Time = Upcoming },
	"@soon":      func(q *Query) { q.Time = Upcoming },
	"@bytime":    func(q *Query) { q.Order = ByTime },
}

type captureMode int

const (
	captureNone captureMode = iota
	captureCountry
	captureCompetition
)

// Parser builds queries. Its shortcut table is fixed at construction and
// read-only afterwards.
type Parser struct {
	shortcuts    []Shortcut
	defaultTime  TimeFilter
	defaultOrder DisplayOrder
}

// Option configures a Parser.
type Option func(*Parser)

// WithDefaultTime sets the time filter used when no @-modifier is given.
func WithDefaultTime(f TimeFilter) Option {
	return func(p *Parser) { p.defaultTime = f }
}

// WithDefaultOrder sets the display order used when nothing forces one.
func WithDefaultOrder(o DisplayOrder) Option {
	return func(p *Parser) { p.defaultOrder = o }
}

// NewParser creates a parser over the given shortcuts. Defaults are a
// sliding time window grouped by country and competition.
func NewParser(shortcuts []Shortcut, opts ...Option) *Parser {
	p := &Parser{
		shortcuts:    shortcuts,
		defaultTime:  SlidingWindow,
		defaultOrder: CountryCompetition,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads whitespace separated tokens left to right.
//
// --country and --competition start capturing the following tokens into
// that field until the next directive. @-modifiers may appear anywhere and
// the last one wins. Outside a capture, tokens are matched against the
// shortcut table and otherwise kept as free terms.
func (p *Parser) Parse(args string) Query {
	q := Query{Time: p.defaultTime, Order: p.defaultOrder}
	mode := captureNone

	for _, token := range strings.Fields(args) {
		lower := strings.ToLower(token)

		switch lower {
		case "--country":
			mode = captureCountry
			q.Country = ""
			continue
		case "--competition":
			mode = captureCompetition
			q.Competition = ""
			continue
		}

		if apply, ok := modifiers[lower]; ok {
			apply(&q)
			continue
		}

		switch mode {
		case captureCountry:
			q.Country = appendWord(q.Country, token)
			continue
		case captureCompetition:
			q.Competition = appendWord(q.Competition, token)
			continue
		}

		if sc, ok := p.match(token); ok {
			q.Terms = append(q.Terms, sc.Expansion...)
			q.Country = sc.Country
			q.Competition = sc.Competition
			if sc.ForceOrder {
				q.Order = sc.Order
			}
			continue
		}
		q.Terms = append(q.Terms, token)
	}
	return q
}

func (p *Parser) match(token string) (Shortcut, bool) {
	for _, sc := range p.shortcuts {
		if sc.Pattern.MatchString(token) {
			return sc, true
		}
	}
	return Shortcut{}, false
}

func appendWord(field, word string) string {
	if field == "" {
		return word
	}
	return field + " " + word
}
