package games

import (
	"strings"
	"time"

	"butler/internal/query"
)

// Window is the sliding time filter: games kicking off between Before ago
// and After from now.
type Window struct {
	Before time.Duration
	After  time.Duration
}

// DefaultWindow covers last night's late games and the rest of today.
var DefaultWindow = Window{Before: 10 * time.Hour, After: 16 * time.Hour}

// Filter applies queries relative to a point in time. Calendar day filters
// use Location, UTC when nil.
type Filter struct {
	Now      time.Time
	Location *time.Location
	Window   Window
}

// Apply returns the subtree matching q. Sibling order is preserved and
// competitions or countries left without games are dropped.
func (f Filter) Apply(tree Tree, q query.Query) Tree {
	terms := make([]string, len(q.Terms))
	for i, term := range q.Terms {
		terms[i] = strings.ToLower(term)
	}
	country := strings.ToLower(q.Country)
	competition := strings.ToLower(q.Competition)

	var out Tree
	for _, c := range tree.Countries {
		if country != "" && !strings.Contains(strings.ToLower(c.Name), country) {
			continue
		}
		var comps []Competition
		for _, comp := range c.Competitions {
			if competition != "" && !strings.Contains(strings.ToLower(comp.Name), competition) {
				continue
			}
			var kept []Game
			for _, g := range comp.Games {
				if matchesTerms(g, terms) && f.matchesTime(g, q.Time) {
					kept = append(kept, g)
				}
			}
			if len(kept) > 0 {
				comps = append(comps, Competition{Name: comp.Name, Games: kept})
			}
		}
		if len(comps) > 0 {
			out.Countries = append(out.Countries, Country{Name: c.Name, Competitions: comps})
		}
	}
	return out
}

// matchesTerms reports whether every term occurs in the team names.
// Country and competition names are never searched.
func matchesTerms(g Game, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	label := strings.ToLower(g.Home + " " + g.Away)
	for _, term := range terms {
		if !strings.Contains(label, term) {
			return false
		}
	}
	return true
}

func (f Filter) matchesTime(g Game, tf query.TimeFilter) bool {
	switch tf {
	case query.Live:
		return g.Status == Ongoing
	case query.Finished:
		return g.Status == Ended
	case query.Upcoming:
		return g.Status == Upcoming
	case query.Today:
		return f.dayOffset(g.Start) == 0
	case query.Tomorrow:
		return f.dayOffset(g.Start) == 1
	case query.Yesterday:
		return f.dayOffset(g.Start) == -1
	default:
		from := f.Now.Add(-f.Window.Before)
		to := f.Now.Add(f.Window.After)
		return !g.Start.Before(from) && !g.Start.After(to)
	}
}

// dayOffset returns the number of calendar days between now and t.
func (f Filter) dayOffset(t time.Time) int {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	ny, nm, nd := f.Now.In(loc).Date()
	ty, tm, td := t.In(loc).Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	day := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(day.Sub(today).Hours() / 24)
}
