package clubelo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"butler/internal/core"
	"butler/internal/httpclient"
	"butler/internal/ranking"
)

const sample = `Rank,Club,Country,Level,Elo,From,To
1,Man City,ENG,1,2051.38,2024-03-08,2024-03-10
2,Real Madrid,ESP,1,1983.5,2024-03-08,2024-03-10
3,Bayern,GER,1,1956.49,2024-03-08,2024-03-10

None,La Fiorita,SMR,1,1012.7,2024-03-08,2024-03-10
`

func TestParse(t *testing.T) {
	entries, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, Entry{Position: 1, Club: "Man City", Country: "ENG", Level: 1, Elo: 2051.38, From: "2024-03-08", To: "2024-03-10"}, entries[0])
	assert.Equal(t, 4, entries[3].Position, "rank comes from row order")
	assert.Equal(t, "La Fiorita", entries[3].Club)
}

func TestEntry_String(t *testing.T) {
	assert.Equal(t, "1. Man City 2051pts", Entry{Position: 1, Club: "Man City", Elo: 2051.38}.String())
	assert.Equal(t, "2. Real Madrid 1984pts", Entry{Position: 2, Club: "Real Madrid", Elo: 1983.6}.String())
}

func TestEntry_IsRankingEntry(t *testing.T) {
	entries, err := Parse([]byte(sample))
	require.NoError(t, err)

	rank, ok := ranking.FindRankByLabel(entries, "madrid")
	require.True(t, ok)
	assert.Equal(t, 2, rank)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":       "",
		"header only": "Rank,Club,Country,Level,Elo,From,To\n",
		"short row":   "Rank,Club,Country,Level,Elo,From,To\n1,Genk,BEL\n",
		"bad elo":     "Rank,Club,Country,Level,Elo,From,To\n1,Genk,BEL,1,lots,a,b\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.True(t, core.IsParseError(err), "got %v", err)
		})
	}
}

func TestProvider_Fetch(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(sample))
	}))
	defer server.Close()

	p := New(server.URL+"/", httpclient.NewFetcher(source, server.Client(), ""))
	p.now = func() time.Time { return time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC) }

	entries, err := p.Fetch(context.Background())

	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.Equal(t, "/2024-03-09", gotPath)
}

func TestProvider_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL, httpclient.NewFetcher(source, server.Client(), "")).Fetch(context.Background())

	assert.True(t, core.IsFetchError(err))
}
