//go:build contract

package contract

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"

	"butler/internal/httpclient"
)

type replayRoute struct {
	statusCode  int
	contentType string
	body        []byte
}

// replayTransport answers requests from recorded routes. Routes are keyed
// by "METHOD host/path?query", "METHOD host/path" or "METHOD host/*",
// tried in that order, so feeds with date parameters can be replayed.
type replayTransport struct {
	t      *testing.T
	routes map[string]replayRoute

	mu   sync.Mutex
	hits []string
}

func (rt *replayTransport) lookup(req *http.Request) (replayRoute, string, bool) {
	candidates := []string{
		req.Method + " " + req.URL.Host + req.URL.RequestURI(),
		req.Method + " " + req.URL.Host + req.URL.Path,
		req.Method + " " + req.URL.Host + "/*",
	}
	for _, key := range candidates {
		if route, ok := rt.routes[key]; ok {
			return route, key, true
		}
	}
	return replayRoute{}, candidates[0], false
}

func (rt *replayTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	route, key, ok := rt.lookup(req)

	rt.mu.Lock()
	rt.hits = append(rt.hits, key)
	rt.mu.Unlock()

	if !ok {
		route = replayRoute{
			statusCode:  http.StatusNotFound,
			contentType: "text/plain",
			body:        []byte(fmt.Sprintf("missing replay route: %s", key)),
		}
	}

	statusCode := route.statusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	contentType := route.contentType
	if contentType == "" {
		contentType = "application/json"
	}

	return &http.Response{
		StatusCode: statusCode,
		Status:     fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
		Header: http.Header{
			"Content-Type": []string{contentType},
		},
		Body:    io.NopCloser(bytes.NewReader(route.body)),
		Request: req,
	}, nil
}

func (rt *replayTransport) requests() []string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]string(nil), rt.hits...)
}

// newReplayFetcher returns a fetcher for source whose requests are served
// from routes.
func newReplayFetcher(t *testing.T, source string, routes map[string]replayRoute) (*httpclient.Fetcher, *replayTransport) {
	t.Helper()
	rt := &replayTransport{t: t, routes: routes}
	return httpclient.NewFetcher(source, &http.Client{Transport: rt}, "butler-contract"), rt
}

func fixtureRoute(t *testing.T, path, contentType string) replayRoute {
	t.Helper()
	return replayRoute{
		statusCode:  http.StatusOK,
		contentType: contentType,
		body:        loadFixture(t, path),
	}
}
