package coinmarketcap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/pkg/httputil"
	"github.com/wonny/tokenscout/pkg/logger"
)

// Client scrapes the CoinMarketCap "new listings" page
// ⭐ SSOT: CoinMarketCap 스크래핑은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new CoinMarketCap scraper
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://coinmarketcap.com"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("source", pipelineconfig.SourceCoinMarketCap),
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

// WithClock overrides the clock used to resolve "N hours ago" listing ages
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// Source returns the adapter name
func (c *Client) Source() string {
	return pipelineconfig.SourceCoinMarketCap
}

// Fetch scrapes recently added tokens and keeps those inside the range
func (c *Client) Fetch(ctx context.Context, rng pipelineconfig.MarketCapRange, opts pipelineconfig.Options) ([]contracts.Candidate, error) {
	rows, err := c.newListings(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []contracts.Candidate
	for _, cand := range rows {
		if cand.MarketCap <= 0 || !rng.Contains(cand.MarketCap) {
			continue
		}
		if !opts.ChainAllowed(cand.Chain) {
			continue
		}
		candidates = append(candidates, cand)
	}

	c.logger.WithFields(map[string]interface{}{
		"rows":     len(rows),
		"in_range": len(candidates),
	}).Debug("Scraped coinmarketcap new listings")

	return candidates, nil
}

// FetchSingle scans the same listing table for a symbol or name match.
// Returns nil when the token is not listed there.
func (c *Client) FetchSingle(ctx context.Context, query string) (*contracts.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	rows, err := c.newListings(ctx)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if strings.EqualFold(rows[i].Symbol, query) || strings.EqualFold(rows[i].Name, query) {
			cand := rows[i]
			return &cand, nil
		}
	}
	return nil, nil
}

func (c *Client) newListings(ctx context.Context) ([]contracts.Candidate, error) {
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/new/")
	if err != nil {
		return nil, fmt.Errorf("coinmarketcap new listings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coinmarketcap new listings: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read coinmarketcap page: %w", err)
	}

	rows, err := parseListings(string(body), c.now())
	if err != nil {
		return nil, fmt.Errorf("parse coinmarketcap page: %w", err)
	}
	return rows, nil
}
