// Package soccerway scrapes league standings from soccerway.com table pages.
package soccerway

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"butler/internal/core"
	"butler/internal/httpclient"
)

const source = "soccerway"

// rowSelector matches the body rows of a standings table.
const rowSelector = "table.leaguetable tbody tr"

// Row is one team in a standings table.
type Row struct {
	Position     int
	Team         string
	Played       int
	Win          int
	Draw         int
	Lose         int
	GoalsFor     int
	GoalsAgainst int
	GoalDiff     int
	Points       int
}

// Rank implements ranking.Entry.
func (r Row) Rank() int { return r.Position }

// Label implements ranking.Entry.
func (r Row) Label() string { return r.Team }

func (r Row) String() string {
	return fmt.Sprintf("%d. %s %dpts (%d, %+d)", r.Position, r.Team, r.Points, r.Played, r.GoalDiff)
}

// Table fetches one standings page.
type Table struct {
	fetcher *httpclient.Fetcher
	url     string
	memo    httpclient.ParseMemo[[]Row]
}

// NewTable creates a provider for the table at url.
func NewTable(url string, fetcher *httpclient.Fetcher) *Table {
	return &Table{fetcher: fetcher, url: url}
}

// Fetch implements core.Provider.
func (t *Table) Fetch(ctx context.Context) ([]Row, error) {
	raw, err := t.fetcher.Get(ctx, t.url, nil)
	if err != nil {
		return nil, err
	}
	return t.memo.Parse(raw, Parse)
}

// Parse extracts the standings from a table page. Cells are, in order:
// rank, team crest, team, played, won, drawn, lost, goals for, goals
// against, goal difference, points. Rows with fewer cells (e.g. expanded
// form rows) are skipped.
func Parse(raw []byte) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, core.NewParseError(source, "invalid html", err)
	}

	var (
		rows     []Row
		parseErr error
	)
	doc.Find(rowSelector).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		tds := tr.Find("td")
		if tds.Length() < 11 {
			return true
		}
		get := func(i int) string { return strings.TrimSpace(tds.Eq(i).Text()) }

		var nums [9]int
		for j, col := range []int{0, 3, 4, 5, 6, 7, 8, 9, 10} {
			n, err := strconv.Atoi(strings.TrimPrefix(get(col), "+"))
			if err != nil {
				parseErr = core.NewParseError(source, fmt.Sprintf("row %d column %d: %q is not a number", i+1, col, get(col)), err)
				return false
			}
			nums[j] = n
		}
		rows = append(rows, Row{
			Position:     nums[0],
			Team:         get(2),
			Played:       nums[1],
			Win:          nums[2],
			Draw:         nums[3],
			Lose:         nums[4],
			GoalsFor:     nums[5],
			GoalsAgainst: nums[6],
			GoalDiff:     nums[7],
			Points:       nums[8],
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(rows) == 0 {
		return nil, core.NewParseError(source, "no standings table found", nil)
	}
	return rows, nil
}
