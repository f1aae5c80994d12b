package ranking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	rank  int
	label string
}

func (r row) Rank() int { return r.rank }
func (r row) Label() string { return r.label }

func table(n int) []row {
	rows := make([]row, n)
	for i := range rows {
		rows[i] = row{rank: i + 1, label: fmt.Sprintf("Club %d", i+1)}
	}
	return rows
}

func ranks(rows []row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.rank
	}
	return out
}

func TestWindowAround(t *testing.T) {
	tests := []struct {
		name   string
		length int
		target int
		want   []int
	}{
		{name: "short table returned whole", length: 4, target: 3, want: []int{1, 2, 3, 4}},
		{name: "exactly window size", length: 6, target: 6, want: []int{1, 2, 3, 4, 5, 6}},
		{name: "top of table", length: 20, target: 1, want: []int{1, 2, 3, 4, 5, 6}},
		{name: "still within first half window", length: 20, target: 3, want: []int{1, 2, 3, 4, 5, 6}},
		{name: "centered", length: 20, target: 10, want: []int{7, 8, 9, 10, 11, 12}},
		{name: "first centered position", length: 20, target: 4, want: []int{1, 2, 3, 4, 5, 6}},
		{name: "near bottom", length: 20, target: 18, want: []int{15, 16, 17, 18, 19, 20}},
		{name: "second to last", length: 20, target: 19, want: []int{15, 16, 17, 18, 19, 20}},
		{name: "last", length: 20, target: 20, want: []int{15, 16, 17, 18, 19, 20}},
		{name: "large table middle", length: 620, target: 612, want: []int{609, 610, 611, 612, 613, 614}},
		{name: "large table tail", length: 620, target: 618, want: []int{615, 616, 617, 618, 619, 620}},
		{name: "zero clamps to top", length: 20, target: 0, want: []int{1, 2, 3, 4, 5, 6}},
		{name: "negative clamps to top", length: 20, target: -5, want: []int{1, 2, 3, 4, 5, 6}},
		{name: "past the end clamps to bottom", length: 20, target: 99, want: []int{15, 16, 17, 18, 19, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowAround(table(tt.length), tt.target, DefaultWindowSize)
			assert.Equal(t, tt.want, ranks(got))
		})
	}
}

func TestWindowAround_ContainsTargetForEveryRank(t *testing.T) {
	for _, length := range []int{1, 5, 6, 7, 12, 21, 620} {
		rows := table(length)
		for target := 1; target <= length; target++ {
			got := WindowAround(rows, target, DefaultWindowSize)
			require.Len(t, got, min(length, DefaultWindowSize), "length=%d target=%d", length, target)
			assert.Contains(t, ranks(got), target, "length=%d target=%d", length, target)
		}
	}
}

func TestWindowAround_AnySize(t *testing.T) {
	rows := table(20)
	for size := 1; size <= 7; size++ {
		for target := 1; target <= len(rows); target++ {
			got := WindowAround(rows, target, size)
			require.Len(t, got, size, "size=%d target=%d", size, target)
			assert.Contains(t, ranks(got), target, "size=%d target=%d", size, target)
		}
	}
}

func TestWindowAround_EmptyAndDefaultSize(t *testing.T) {
	assert.Empty(t, WindowAround([]row(nil), 3, 6))
	assert.Len(t, WindowAround(table(30), 15, 0), DefaultWindowSize)
}

func TestFindRankByLabel(t *testing.T) {
	rows := []row{
		{1, "Manchester City"},
		{2, "Liverpool"},
		{3, "Bayern"},
		{4, "Manchester United"},
	}

	rank, ok := FindRankByLabel(rows, "manchester")
	require.True(t, ok)
	assert.Equal(t, 1, rank)

	rank, ok = FindRankByLabel(rows, "UNITED")
	require.True(t, ok)
	assert.Equal(t, 4, rank)

	rank, ok = FindRankByLabel(rows, "Genk")
	assert.False(t, ok)
	assert.Zero(t, rank)
}

func TestSearch(t *testing.T) {
	rows := []row{{1, "Real Madrid"}, {2, "Atletico Madrid"}, {3, "Barcelona"}}

	assert.Equal(t, []int{1, 2}, ranks(Search(rows, "madrid")))
	assert.Empty(t, Search(rows, "porto"))
}

func TestTopAndPositionOf(t *testing.T) {
	rows := table(30)
	assert.Len(t, Top(rows, 15), 15)
	assert.Len(t, Top(rows[:3], 15), 3)

	tied := []row{{1, "A"}, {2, "B"}, {2, "C"}, {4, "D"}}
	pos, ok := PositionOf(tied, 4)
	require.True(t, ok)
	assert.Equal(t, 4, pos)
	_, ok = PositionOf(tied, 3)
	assert.False(t, ok)
}
