// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/citekit/internal/httputil"
	"github.com/pdiddy/citekit/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const kuhnJSON = `{
  "type": "book",
  "title": "The Structure of Scientific Revolutions",
  "author": [{"family": "Kuhn", "given": "Thomas S.", "sequence": "first", "affiliation": []}],
  "issued": {"date-parts": [[1962]]},
  "publisher": "University of Chicago Press",
  "DOI": "10.7208/chicago/9780226458106.001.0001"
}`

const godelJSON = `{
  "type": "article-journal",
  "title": "Über formal unentscheidbare Sätze",
  "container-title": "Monatshefte für Mathematik und Physik",
  "author": [{"family": "Gödel", "given": "Kurt"}],
  "issued": {"date-parts": [[1931, 12]]},
  "volume": 38,
  "issue": "1",
  "page": "173-198"
}`

// resolver serves CSL-JSON for known DOIs and records the Accept header.
func resolver(t *testing.T, docs map[string]string) (*httptest.Server, *[]string) {
	t.Helper()
	var accepts []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accepts = append(accepts, r.Header.Get("Accept"))
		doc, ok := docs[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", cslJSONType)
		w.Write([]byte(doc))
	}))
	t.Cleanup(ts.Close)
	return ts, &accepts
}

func client(t *testing.T, ts *httptest.Server) *Client {
	return New(WithHTTPClient(ts.Client()), WithBaseURL(ts.URL), WithLogger(zaptest.NewLogger(t)), WithMaxRetries(2))
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"10.1145/1234567.1234568", "10.1145/1234567.1234568", true},
		{" doi:10.1000/xyz ", "10.1000/xyz", true},
		{"https://doi.org/10.1000/xyz", "10.1000/xyz", true},
		{"HTTP://DX.DOI.ORG/10.1000/xyz", "10.1000/xyz", true},
		{"https://doi.org/10.1000/a%2Fb", "10.1000/a/b", true},
		{"10.12/short-registrant", "10.12/short-registrant", false},
		{"kuhn1962", "kuhn1962", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeDOI(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestFetch(t *testing.T) {
	ts, accepts := resolver(t, map[string]string{"10.7208/chicago/9780226458106.001.0001": kuhnJSON})

	r, err := client(t, ts).Fetch(context.Background(), "doi:10.7208/chicago/9780226458106.001.0001")
	require.NoError(t, err)
	assert.Equal(t, "kuhn1962", r.ID)
	assert.Equal(t, "book", r.Type)
	assert.Equal(t, "The Structure of Scientific Revolutions", r.Title.Main)
	assert.Equal(t, "Kuhn", r.Author[0].Family)
	assert.Equal(t, types.EDTF("1962"), r.Issued)
	assert.Equal(t, "10.7208/chicago/9780226458106.001.0001", r.DOI)
	assert.Equal(t, []string{cslJSONType}, *accepts)
}

func TestFetchErrors(t *testing.T) {
	ts, _ := resolver(t, map[string]string{"10.1000/broken": "{not json"})
	c := client(t, ts)

	_, err := c.Fetch(context.Background(), "10.1000/missing")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	_, err = c.Fetch(context.Background(), "10.1000/broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding metadata")

	_, err = c.Fetch(context.Background(), "not-a-doi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a DOI")
}

func TestFetchRetriesThrottled(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(kuhnJSON))
	}))
	defer ts.Close()

	r, err := client(t, ts).Fetch(context.Background(), "10.7208/x")
	require.NoError(t, err)
	assert.Equal(t, "kuhn1962", r.ID)
	assert.Equal(t, 2, calls)
}

func TestFetchAll(t *testing.T) {
	ts, _ := resolver(t, map[string]string{
		"10.1000/a": kuhnJSON,
		"10.1000/b": kuhnJSON,
		"10.1000/c": godelJSON,
	})

	var out bytes.Buffer
	bib, sum := client(t, ts).FetchAll(context.Background(), &out, "10.1000/a", "10.1000/missing", "10.1000/b", "10.1000/c")
	assert.Equal(t, Summary{Fetched: 3, Failed: 1}, sum)
	assert.Equal(t, []string{"kuhn1962", "kuhn1962b", "godel1931"}, bib.IDs())

	godel, _ := bib.Get("godel1931")
	assert.Equal(t, "38", godel.Volume)
	assert.Equal(t, "173-198", godel.Pages)

	text := out.String()
	assert.Contains(t, text, "fetched: 10.1000/b -> kuhn1962b")
	assert.Contains(t, text, "failed:  10.1000/missing")
	assert.Contains(t, text, "Fetch summary: 3 fetched, 1 failed (total: 4)")
}

func TestFetchAllCancelled(t *testing.T) {
	ts, _ := resolver(t, map[string]string{"10.1000/a": kuhnJSON})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	bib, sum := client(t, ts).FetchAll(ctx, &out, "10.1000/a")
	assert.Zero(t, bib.Len())
	assert.Equal(t, 1, sum.Failed)
}

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		ref  *types.Reference
		want string
	}{
		{
			name: "author and year",
			ref:  &types.Reference{Author: types.Contributor{{Family: "Kuhn"}}, Issued: "1962-05"},
			want: "kuhn1962",
		},
		{
			name: "accents fold",
			ref:  &types.Reference{Author: types.Contributor{{Family: "Gödel"}}, Issued: "1931"},
			want: "godel1931",
		},
		{
			name: "particle and punctuation",
			ref:  &types.Reference{Author: types.Contributor{{Family: "O'Neil-Smith"}}, Issued: "2001"},
			want: "oneilsmith2001",
		},
		{
			name: "literal organization",
			ref:  &types.Reference{Author: types.Contributor{{Literal: "World Health Organization"}}, Issued: "2020"},
			want: "world2020",
		},
		{
			name: "editor when no author",
			ref:  &types.Reference{Editor: types.Contributor{{Family: "Hacking"}}},
			want: "hacking",
		},
		{
			name: "no names",
			ref:  &types.Reference{Issued: "1999"},
			want: "anon1999",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.ref))
		})
	}
}

func TestFetchUserAgent(t *testing.T) {
	var agent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Write([]byte(kuhnJSON))
	}))
	defer ts.Close()

	c := New(WithHTTPClient(ts.Client()), WithBaseURL(ts.URL), WithMailto("editor@example.org"))
	_, err := c.Fetch(context.Background(), "10.1000/a")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(agent, "citekit/"))
	assert.True(t, strings.HasSuffix(agent, " mailto:editor@example.org"))
}
