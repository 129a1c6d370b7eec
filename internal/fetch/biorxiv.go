// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-tracker/internal/httputil"
	"github.com/pdiddy/paper-tracker/internal/topic"
	"github.com/pdiddy/paper-tracker/pkg/types"
)

// biorxivAPIBase is the shared bulk details endpoint for the bioRxiv and
// medRxiv servers. Declared as a var so tests can substitute an httptest
// server.
var biorxivAPIBase = "https://api.biorxiv.org/details"

// biorxivPageSize is the page size requested from the bulk listing.
const biorxivPageSize = 100

// BiorxivSource fetches the bulk window listing for one preprint server and
// filters it locally against the topic's preprint queries. The server has
// no per-query search, so one invocation covers all queries.
type BiorxivSource struct {
	Client *http.Client
	Cfg    types.FetchConfig

	// Variant selects the server: SourceBiorxiv or SourceMedrxiv.
	Variant types.PaperSource
}

// Name returns the catalog identifier.
func (s *BiorxivSource) Name() string { return string(s.Variant) }

// Fetch downloads the window listing once and keeps records whose title or
// abstract matches any preprint query, case-insensitively. Records without
// a DOI are dropped: the DOI is the server's native key. Network and schema
// failures are logged and yield an empty result.
func (s *BiorxivSource) Fetch(ctx context.Context, window Window, profile topic.Profile, w io.Writer) ([]types.Paper, error) {
	records, err := s.listWindow(ctx, window)
	if err != nil {
		fmt.Fprintf(w, "  warning: %s fetch: %v\n", s.Variant, err)
		return nil, nil
	}
	fmt.Fprintf(w, "  retrieved %d recent preprint(s)\n", len(records))

	var papers []types.Paper
	for _, rec := range records {
		doi := strings.TrimSpace(rec.DOI)
		if doi == "" {
			continue
		}
		if !matchesAnyQuery(rec.Title, rec.Abstract, profile.PreprintQueries) {
			continue
		}

		papers = append(papers, types.Paper{
			ID:            string(s.Variant) + ":" + doi,
			Source:        s.Variant,
			Title:         strings.TrimSpace(rec.Title),
			Authors:       splitAuthors(rec.Authors),
			Abstract:      rec.Abstract,
			Journal:       string(s.Variant) + " (preprint)",
			PublishedDate: rec.Date,
			URL:           "https://doi.org/" + doi,
			DOI:           doi,
		})
	}
	fmt.Fprintf(w, "  matched %d relevant preprint(s)\n", len(papers))
	return papers, nil
}

// biorxivResponse is the JSON envelope of the bulk details endpoint.
type biorxivResponse struct {
	Collection []biorxivRecord `json:"collection"`
}

type biorxivRecord struct {
	DOI      string `json:"doi"`
	Title    string `json:"title"`
	Authors  string `json:"authors"`
	Abstract string `json:"abstract"`
	Date     string `json:"date"`
}

// listWindow fetches one page of the window listing.
func (s *BiorxivSource) listWindow(ctx context.Context, window Window) ([]biorxivRecord, error) {
	if s.Cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*s.Cfg.Timeout)
		defer cancel()
	}

	reqURL := fmt.Sprintf("%s/%s/%s/%s/0/%d",
		biorxivAPIBase, s.Variant,
		window.From.Format("2006-01-02"), window.To.Format("2006-01-02"),
		biorxivPageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("bulk listing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bulk listing returned HTTP %d", resp.StatusCode)
	}

	var br biorxivResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("parsing bulk listing: %w", err)
	}
	return br.Collection, nil
}

// matchesAnyQuery reports whether any query is a case-insensitive substring
// of the title or abstract.
func matchesAnyQuery(title, abstract string, queries []string) bool {
	searchable := strings.ToLower(title + " " + abstract)
	for _, q := range queries {
		if strings.Contains(searchable, strings.ToLower(q)) {
			return true
		}
	}
	return false
}

// splitAuthors converts the server's semicolon-delimited author string into
// a name list.
func splitAuthors(raw string) []string {
	var authors []string
	for _, part := range strings.Split(raw, ";") {
		if name := strings.TrimSpace(part); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}
