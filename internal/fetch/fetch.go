// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch resolves DOIs to references through DOI content
// negotiation: the resolver answers a CSL-JSON request with the
// registration agency's metadata for the work.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/citekit/internal/httputil"
	"github.com/pdiddy/citekit/internal/refs"
	"github.com/pdiddy/citekit/pkg/types"
)

const (
	defaultBaseURL = "https://doi.org/"
	defaultTimeout = 30 * time.Second
	cslJSONType    = "application/vnd.citationstyles.csl+json"
	userAgent      = "citekit/0.1 (+https://github.com/pdiddy/citekit)"

	// maxBody bounds a metadata response.
	maxBody = 4 << 20
)

// ErrNotFound is returned when the resolver does not know a DOI.
var ErrNotFound = errors.New("doi not found")

// doiPattern matches a bare DOI: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"doi:",
}

// NormalizeDOI strips resolver URL and "doi:" prefixes and reports
// whether the rest is a DOI.
func NormalizeDOI(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, p := range doiPrefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			s = s[len(p):]
			break
		}
	}
	if unescaped, err := url.PathUnescape(s); err == nil {
		s = unescaped
	}
	return s, doiPattern.MatchString(s)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.http.Timeout = d }
}

// WithBaseURL sets the DOI resolver, e.g. an httptest server in tests.
func WithBaseURL(u string) Option {
	return func(cl *Client) { cl.baseURL = strings.TrimSuffix(u, "/") + "/" }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithMailto adds a contact address to the User-Agent, which Crossref
// uses to route requests to its polite pool.
func WithMailto(addr string) Option {
	return func(cl *Client) { cl.mailto = addr }
}

// WithMaxRetries sets how often a throttled request is retried.
func WithMaxRetries(n int) Option {
	return func(cl *Client) { cl.maxRetries = n }
}

// Client fetches reference metadata by DOI.
type Client struct {
	http       *http.Client
	baseURL    string
	logger     *zap.Logger
	maxRetries int
	mailto     string
}

// New returns a Client for the public DOI resolver.
func New(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		baseURL: defaultBaseURL,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch resolves doi to a reference. The reference id is the key Key
// derives from it.
func (c *Client) Fetch(ctx context.Context, doi string) (*types.Reference, error) {
	bare, ok := NormalizeDOI(doi)
	if !ok {
		return nil, fmt.Errorf("%q is not a DOI", doi)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+bare, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", cslJSONType)
	ua := userAgent
	if c.mailto != "" {
		ua += " mailto:" + c.mailto
	}
	req.Header.Set("User-Agent", ua)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries, c.logger)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", bare, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", bare, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: HTTP %d", bare, resp.StatusCode)
	}

	var item refs.CSLItem
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&item); err != nil {
		return nil, fmt.Errorf("decoding metadata for %s: %w", bare, err)
	}
	if item.DOI == "" {
		item.DOI = bare
	}
	r := refs.ToReference(item)
	r.ID = Key(r)
	c.logger.Debug("doi resolved", zap.String("doi", bare), zap.String("id", r.ID), zap.String("type", r.Type))
	return r, nil
}

// Summary counts the outcome of a FetchAll run.
type Summary struct {
	Fetched int
	Failed  int
}

// FetchAll resolves each DOI in turn, writing a progress line per DOI to
// w. Keys that collide with an earlier reference get a letter suffix.
// Failures are reported and counted; the references that resolved are
// returned.
func (c *Client) FetchAll(ctx context.Context, w io.Writer, dois ...string) (*types.Bibliography, Summary) {
	bib := types.NewBibliography()
	var sum Summary
	for _, doi := range dois {
		if ctx.Err() != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", doi, ctx.Err())
			sum.Failed++
			continue
		}
		r, err := c.Fetch(ctx, doi)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", doi, err)
			c.logger.Warn("doi fetch failed", zap.String("doi", doi), zap.Error(err))
			sum.Failed++
			continue
		}
		r.ID = unique(bib, r.ID)
		bib.Add(r)
		sum.Fetched++
		fmt.Fprintf(w, "fetched: %s -> %s\n", doi, r.ID)
	}
	fmt.Fprintf(w, "\nFetch summary: %d fetched, %d failed (total: %d)\n", sum.Fetched, sum.Failed, sum.Fetched+sum.Failed)
	return bib, sum
}

func unique(bib *types.Bibliography, id string) string {
	if _, ok := bib.Get(id); !ok {
		return id
	}
	for c := 'b'; c <= 'z'; c++ {
		if _, ok := bib.Get(id + string(c)); !ok {
			return id + string(c)
		}
	}
	return fmt.Sprintf("%s-%d", id, bib.Len())
}

// Key derives a citation key from the first author's family name and the
// issued year, e.g. "kuhn1962". Accents are folded and anything outside
// [a-z0-9] is dropped.
func Key(r *types.Reference) string {
	name := "anon"
	for _, role := range []types.ContributorRole{types.RoleAuthor, types.RoleEditor} {
		if c := r.Contributor(role); len(c) > 0 {
			n := c[0].Family
			if n == "" {
				n = c[0].Literal
			}
			if f := strings.Fields(n); len(f) > 0 {
				name = f[0]
			}
			break
		}
	}
	return fold(name) + r.Issued.Parse().YearString()
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "anon"
	}
	return b.String()
}
