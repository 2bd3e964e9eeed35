package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coursecatalog/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coursesJSON = `[
 {"id":"a","title":"Go Concurrency","price":29.99,"is_paid":true,"topics":["go"],"created_at":"2024-03-01T00:00:00Z"},
 {"id":"b","title":"Python Intro","price":0,"is_paid":false,"topics":["python"],"created_at":"2024-02-01T00:00:00Z"},
 {"id":"c","title":"Advanced Go","price":49,"is_paid":true,"topics":["go"],"created_at":"2024-01-01T00:00:00Z"}
]`

func newClient(t *testing.T) *catalog.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/courses":
			_, _ = w.Write([]byte(coursesJSON))
		case "/courses/c":
			_, _ = w.Write([]byte(`{"id":"c","title":"Advanced Go","price":49,"is_paid":true,"created_at":"2024-01-01T00:00:00Z"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return catalog.NewClient(srv.URL, srv.Client())
}

func rows(out string) []string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	ids := make([]string, 0, len(lines))
	for _, l := range lines[1:] {
		ids = append(ids, strings.Fields(l)[0])
	}
	return ids
}

func TestRunFiltersAndSorts(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), newClient(t), options{paid: "true", topics: "go", sort: "price_desc"}, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, rows(out.String()))
	assert.Contains(t, out.String(), "49.00")
}

func TestRunSingleCourse(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), newClient(t), options{id: "c"}, &out))
	assert.Equal(t, []string{"c"}, rows(out.String()))

	err := run(context.Background(), newClient(t), options{id: "zzz"}, &out)
	assert.ErrorContains(t, err, "not found")
}

func TestParseOptionsRejectsBadInput(t *testing.T) {
	_, _, err := parseOptions(options{paid: "maybe"})
	assert.Error(t, err)
	_, _, err = parseOptions(options{minPrice: "cheap"})
	assert.Error(t, err)
	_, _, err = parseOptions(options{sort: "random"})
	assert.Error(t, err)

	f, s, err := parseOptions(options{paid: "free", maxPrice: "10", sort: ""})
	require.NoError(t, err)
	assert.Equal(t, catalog.SortNewest, s)
	assert.False(t, *f.Paid)
	assert.Equal(t, "10", f.MaxPrice.String())
}
