package chatfmt

import (
	"fmt"
	"strings"
	"time"

	"butler/internal/games"
	"butler/internal/query"
)

// zeroWidthJoiner is inserted into names so that chat clients do not
// highlight the person being listed.
const zeroWidthJoiner = "\u200d"

// Clock carries the reference time and zone used for relative formatting.
type Clock struct {
	Now      time.Time
	Location *time.Location
}

func (c Clock) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// FormatGame renders one game on a single line.
func FormatGame(g games.Game, clock Clock) string {
	switch g.Status {
	case games.Ended:
		return fmt.Sprintf("(FT) %s %s %s", g.Home, score(g), g.Away)
	case games.Ongoing:
		return fmt.Sprintf("(%s) %s %s %s", g.Elapsed, g.Home, score(g), g.Away)
	case games.Postponed:
		return fmt.Sprintf("(postp.) %s - %s", g.Home, g.Away)
	case games.Cancelled:
		return fmt.Sprintf("(cancld) %s - %s", g.Home, g.Away)
	default:
		start := g.Start.In(clock.loc())
		layout := "02/01 15:04"
		if sameDay(start, clock.Now.In(clock.loc())) {
			layout = "15:04"
		}
		return fmt.Sprintf("(%s) %s - %s", start.Format(layout), g.Home, g.Away)
	}
}

func score(g games.Game) string {
	return fmt.Sprintf("%s-%s", scoreValue(g.HomeScore), scoreValue(g.AwayScore))
}

func scoreValue(v *int) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprint(*v)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// RenderGames renders at most maxItems games of tree in the given order.
// Country and competition headers are printed only when they change. The
// notice is non-empty when games were left out.
func RenderGames(tree games.Tree, order query.DisplayOrder, maxItems int, clock Clock) (notice, body string) {
	rows := tree.Rows(order)
	if maxItems > 0 && len(rows) > maxItems {
		notice = TooManyNotice("games", len(rows), maxItems)
		rows = rows[:maxItems]
	}

	var b strings.Builder
	var prevCountry, prevCompetition string
	for i, row := range rows {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i == 0 || row.Country != prevCountry {
			fmt.Fprintf(&b, "<%s> ", row.Country)
		}
		if i == 0 || row.Competition != prevCompetition || row.Country != prevCountry {
			fmt.Fprintf(&b, "[%s] ", row.Competition)
		}
		b.WriteString(FormatGame(row.Game, clock))
		prevCountry, prevCompetition = row.Country, row.Competition
	}
	return notice, b.String()
}

// TooManyNotice is the line sent ahead of a truncated listing.
func TooManyNotice(what string, total, shown int) string {
	return fmt.Sprintf("Too many %s (%d). Showing first %d.", what, total, shown)
}

// JoinItems joins rendered items with "; " behind an optional prefix.
func JoinItems(prefix string, items []string) string {
	return prefix + strings.Join(items, "; ")
}

// PreventHighlight inserts a zero-width joiner after the first character
// of name.
func PreventHighlight(name string) string {
	for i := range name {
		if i > 0 {
			return name[:i] + zeroWidthJoiner + name[i:]
		}
	}
	return name
}
