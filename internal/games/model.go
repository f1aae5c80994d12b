// Package games models football fixtures as a Country > Competition > Game
// tree and filters it for queries.
package games

import (
	"sort"
	"time"

	"butler/internal/query"
)

// Status is the state of a game.
type Status int

const (
	Upcoming Status = iota
	Ongoing
	Ended
	Postponed
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Upcoming:
		return "upcoming"
	case Ongoing:
		return "ongoing"
	case Ended:
		return "ended"
	case Postponed:
		return "postponed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Game is a single fixture. Scores are nil until the game has started.
type Game struct {
	Home      string
	Away      string
	HomeScore *int
	AwayScore *int
	Start     time.Time
	Status    Status
	// Elapsed is the match clock for ongoing games, e.g. "67'" or "HT".
	Elapsed string
}

// Competition is an ordered list of games in provider order.
type Competition struct {
	Name  string
	Games []Game
}

// Country groups competitions. Tournaments such as the Champions League
// appear as their own country.
type Country struct {
	Name         string
	Competitions []Competition
}

// Tree is a full fixtures snapshot.
type Tree struct {
	Countries []Country
}

// Row is a game together with the labels of its parents.
type Row struct {
	Country     string
	Competition string
	Game        Game
}

// Count returns the number of games in the tree.
func (t Tree) Count() int {
	n := 0
	for _, country := range t.Countries {
		for _, competition := range country.Competitions {
			n += len(competition.Games)
		}
	}
	return n
}

// Empty reports whether the tree has no countries.
func (t Tree) Empty() bool {
	return len(t.Countries) == 0
}

// CountryNames returns the country names in tree order.
func (t Tree) CountryNames() []string {
	names := make([]string, 0, len(t.Countries))
	for _, country := range t.Countries {
		names = append(names, country.Name)
	}
	return names
}

// Rows flattens the tree. ByTime sorts by kickoff with a stable sort so
// games starting together keep their grouping order.
func (t Tree) Rows(order query.DisplayOrder) []Row {
	rows := make([]Row, 0, t.Count())
	for _, country := range t.Countries {
		for _, competition := range country.Competitions {
			for _, game := range competition.Games {
				rows = append(rows, Row{Country: country.Name, Competition: competition.Name, Game: game})
			}
		}
	}
	if order == query.ByTime {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Game.Start.Before(rows[j].Game.Start)
		})
	}
	return rows
}

// Score returns a pointer to v, for building games with scores.
func Score(v int) *int {
	return &v
}
