// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/paper-tracker/internal/httputil"
	"github.com/pdiddy/paper-tracker/internal/topic"
	"github.com/pdiddy/paper-tracker/pkg/types"
)

// NCBI E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	pubmedSearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// fetchBatchSize is the number of PMIDs per efetch call.
const fetchBatchSize = 20

// PubMedSource queries PubMed through the two-phase E-utilities API: a
// date-bounded search per query string returning PMIDs, then batched
// metadata fetches for PMIDs the store has not seen.
type PubMedSource struct {
	Client *http.Client
	Cfg    types.FetchConfig

	// Registry filters out PMIDs already stored before the expensive
	// efetch round trips.
	Registry Registry
}

// Name returns the catalog identifier.
func (s *PubMedSource) Name() string { return string(types.SourcePubMed) }

// Fetch searches every configured PubMed query over the window, collects
// unseen PMIDs, and fetches their records in batches of 20 with a fixed
// delay between calls. Per-query and per-batch failures are logged and
// yield empty results.
func (s *PubMedSource) Fetch(ctx context.Context, window Window, profile topic.Profile, w io.Writer) ([]types.Paper, error) {
	seen := make(map[string]bool)
	var pmids []string

	for i, query := range profile.PubMedQueries {
		if i > 0 {
			s.pause(ctx)
		}

		ids, err := s.search(ctx, query, window)
		if err != nil {
			fmt.Fprintf(w, "  warning: PubMed search %q: %v\n", query, err)
			continue
		}
		fmt.Fprintf(w, "  query %q: %d result(s)\n", query, len(ids))

		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			pmids = append(pmids, id)
		}
	}

	// Drop PMIDs the store already holds before fetching details.
	var fresh []string
	for _, pmid := range pmids {
		known, err := s.Registry.Exists(ctx, "pubmed:"+pmid)
		if err != nil {
			return nil, fmt.Errorf("checking known PMIDs: %w", err)
		}
		if !known {
			fresh = append(fresh, pmid)
		}
	}
	fmt.Fprintf(w, "  %d unique new PMID(s)\n", len(fresh))

	var papers []types.Paper
	for start := 0; start < len(fresh); start += fetchBatchSize {
		end := start + fetchBatchSize
		if end > len(fresh) {
			end = len(fresh)
		}
		if start > 0 {
			s.pause(ctx)
		}

		batch, err := s.fetchDetails(ctx, fresh[start:end], w)
		if err != nil {
			fmt.Fprintf(w, "  warning: PubMed fetch: %v\n", err)
			continue
		}
		papers = append(papers, batch...)
	}
	return papers, nil
}

// pause waits the configured inter-request delay, or returns early when the
// context is cancelled.
func (s *PubMedSource) pause(ctx context.Context) {
	if s.Cfg.RequestDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.Cfg.RequestDelay):
	}
}

// esearchResponse is the JSON envelope of the esearch endpoint.
type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// search issues one date-bounded esearch call and returns the PMID list.
func (s *PubMedSource) search(ctx context.Context, query string, window Window) ([]string, error) {
	maxResults := s.Cfg.MaxPerQuery
	if maxResults <= 0 {
		maxResults = fetchBatchSize
	}

	params := url.Values{
		"db":       {"pubmed"},
		"term":     {query},
		"retmax":   {fmt.Sprintf("%d", maxResults)},
		"sort":     {"date"},
		"datetype": {"pdat"},
		"mindate":  {window.From.Format("2006/01/02")},
		"maxdate":  {window.To.Format("2006/01/02")},
		"retmode":  {"json"},
	}
	if s.Cfg.NCBIAPIKey != "" {
		params.Set("api_key", s.Cfg.NCBIAPIKey)
	}

	body, err := s.get(ctx, pubmedSearchBase+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var er esearchResponse
	if err := json.NewDecoder(body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	return er.ESearchResult.IDList, nil
}

// fetchDetails retrieves full records for one batch of PMIDs and assembles
// Paper values. A record missing its PMID or title is skipped with a
// warning; other missing fields degrade to empty strings.
func (s *PubMedSource) fetchDetails(ctx context.Context, pmids []string, w io.Writer) ([]types.Paper, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"xml"},
	}
	if s.Cfg.NCBIAPIKey != "" {
		params.Set("api_key", s.Cfg.NCBIAPIKey)
	}

	body, err := s.get(ctx, pubmedFetchBase+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var set pubmedArticleSet
	if err := xml.NewDecoder(body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}

	var papers []types.Paper
	for _, article := range set.Articles {
		p, ok := assemblePubmedPaper(article)
		if !ok {
			fmt.Fprintf(w, "  warning: skipping malformed PubMed record\n")
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// get performs one GET with the configured timeout, retrying on 429.
func (s *PubMedSource) get(ctx context.Context, reqURL string) (io.ReadCloser, error) {
	if s.Cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("E-utilities request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("E-utilities returned HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// assemblePubmedPaper converts one parsed article into a Paper. Returns
// false when the record lacks the PMID or title needed to identify it.
func assemblePubmedPaper(a pubmedArticle) (types.Paper, bool) {
	pmid := strings.TrimSpace(a.MedlineCitation.PMID)
	title := strings.TrimSpace(a.MedlineCitation.Article.Title)
	if pmid == "" || title == "" {
		return types.Paper{}, false
	}

	p := types.Paper{
		ID:      "pubmed:" + pmid,
		Source:  types.SourcePubMed,
		Title:   title,
		Journal: strings.TrimSpace(a.MedlineCitation.Article.Journal.Title),
		URL:     "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/",
	}

	for _, author := range a.MedlineCitation.Article.AuthorList.Authors {
		last := strings.TrimSpace(author.LastName)
		if last == "" {
			continue
		}
		name := strings.TrimSpace(strings.TrimSpace(author.ForeName) + " " + last)
		p.Authors = append(p.Authors, name)
	}

	var parts []string
	for _, section := range a.MedlineCitation.Article.Abstract.Sections {
		text := strings.TrimSpace(section.Text)
		if section.Label != "" {
			parts = append(parts, section.Label+": "+text)
		} else if text != "" {
			parts = append(parts, text)
		}
	}
	p.Abstract = strings.Join(parts, " ")

	date := a.MedlineCitation.DateCompleted
	if date.Year == "" {
		date = a.MedlineCitation.DateRevised
	}
	if date.Year != "" {
		p.PublishedDate = fmt.Sprintf("%s-%s-%s", date.Year, pad2(date.Month), pad2(date.Day))
	}

	for _, id := range a.PubmedData.ArticleIDs {
		if id.Type == "doi" {
			p.DOI = strings.TrimSpace(id.Value)
			break
		}
	}
	return p, true
}

// pad2 left-pads a date component to two digits, defaulting to "01".
func pad2(s string) string {
	if s == "" {
		return "01"
	}
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// PubMed efetch XML structures.
type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation pubmedMedlineCitation `xml:"MedlineCitation"`
	PubmedData      pubmedData            `xml:"PubmedData"`
}

type pubmedMedlineCitation struct {
	PMID          string           `xml:"PMID"`
	Article       pubmedArticleElt `xml:"Article"`
	DateCompleted pubmedDate       `xml:"DateCompleted"`
	DateRevised   pubmedDate       `xml:"DateRevised"`
}

type pubmedArticleElt struct {
	Title      string           `xml:"ArticleTitle"`
	Journal    pubmedJournal    `xml:"Journal"`
	Abstract   pubmedAbstract   `xml:"Abstract"`
	AuthorList pubmedAuthorList `xml:"AuthorList"`
}

type pubmedJournal struct {
	Title string `xml:"Title"`
}

type pubmedAbstract struct {
	Sections []pubmedAbstractText `xml:"AbstractText"`
}

type pubmedAbstractText struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",chardata"`
}

type pubmedAuthorList struct {
	Authors []pubmedAuthor `xml:"Author"`
}

type pubmedAuthor struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

type pubmedDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

type pubmedData struct {
	ArticleIDs []pubmedArticleID `xml:"ArticleIdList>ArticleId"`
}

type pubmedArticleID struct {
	Type  string `xml:"IdType,attr"`
	Value string `xml:",chardata"`
}
