package soccerway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"butler/internal/core"
	"butler/internal/httpclient"
)

func tableHTML(rows ...string) string {
	return `<html><body>
<table class="leaguetable sortable table detailed-table">
<thead><tr><th>#</th><th></th><th>Team</th><th>MP</th></tr></thead>
<tbody>` + strings.Join(rows, "\n") + `</tbody>
</table></body></html>`
}

func row(rank int, team string, p, w, d, l, gf, ga int, gd string, pts int) string {
	return fmt.Sprintf(`<tr class="odd">
<td class="rank">%d</td><td class="flag"><img src="x.png"/></td><td class="team"><a href="/teams/x">%s</a></td>
<td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%s</td><td class="points">%d</td>
</tr>`, rank, team, p, w, d, l, gf, ga, gd, pts)
}

func TestParse(t *testing.T) {
	html := tableHTML(
		row(1, "Belgium", 3, 2, 1, 0, 5, 1, "+4", 7),
		`<tr class="subtable"><td colspan="11">form</td></tr>`,
		row(2, "Russia", 3, 1, 0, 2, 2, 7, "-5", 3),
	)

	rows, err := Parse([]byte(html))

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Position: 1, Team: "Belgium", Played: 3, Win: 2, Draw: 1, Lose: 0, GoalsFor: 5, GoalsAgainst: 1, GoalDiff: 4, Points: 7}, rows[0])
	assert.Equal(t, -5, rows[1].GoalDiff)
	assert.Equal(t, "Russia", rows[1].Label())
}

func TestRow_String(t *testing.T) {
	r := Row{Position: 1, Team: "Genk", Points: 45, Played: 20, GoalDiff: 18}
	assert.Equal(t, "1. Genk 45pts (20, +18)", r.String())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("<html><body><p>maintenance</p></body></html>"))
	assert.True(t, core.IsParseError(err))

	_, err = Parse([]byte(tableHTML(row(1, "A", 1, 1, 0, 0, 1, 0, "x", 3))))
	assert.True(t, core.IsParseError(err))
}

func TestTable_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(tableHTML(row(1, "Genk", 1, 1, 0, 0, 2, 0, "+2", 3))))
	}))
	defer server.Close()

	rows, err := NewTable(server.URL, httpclient.NewFetcher(source, server.Client(), "")).Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Genk", rows[0].Team)
}
