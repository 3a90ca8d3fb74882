package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/pkg/httputil"
	"github.com/wonny/tokenscout/pkg/logger"
)

// Client handles communication with the CoinGecko API
// ⭐ SSOT: CoinGecko 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	perPage    int
}

// NewClient creates a new CoinGecko client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("source", pipelineconfig.SourceCoinGecko),
		baseURL:    strings.TrimRight(baseURL, "/"),
		perPage:    250,
	}
}

// Source returns the adapter name
func (c *Client) Source() string {
	return pipelineconfig.SourceCoinGecko
}

// sectorCategories maps sectors to CoinGecko category ids
var sectorCategories = map[contracts.Sector]string{
	contracts.SectorAI:     "artificial-intelligence",
	contracts.SectorMeme:   "meme-token",
	contracts.SectorDeFi:   "decentralized-finance-defi",
	contracts.SectorGaming: "gaming",
	contracts.SectorRWA:    "real-world-assets-rwa",
	contracts.SectorInfra:  "layer-1",
}

// Fetch lists coins by volume and keeps those inside the market-cap range
func (c *Client) Fetch(ctx context.Context, rng pipelineconfig.MarketCapRange, opts pipelineconfig.Options) ([]contracts.Candidate, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", "volume_desc")
	params.Set("per_page", fmt.Sprintf("%d", c.perPage))
	params.Set("page", "1")
	params.Set("price_change_percentage", "24h")
	if category, ok := sectorCategories[opts.Sector]; ok {
		params.Set("category", category)
	}

	var markets []marketCoin
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/coins/markets?"+params.Encode(), &markets); err != nil {
		return nil, fmt.Errorf("coingecko markets: %w", err)
	}

	candidates := make([]contracts.Candidate, 0, len(markets))
	for _, m := range markets {
		cand := m.toCandidate(opts.Sector)
		if cand.MarketCap <= 0 || !rng.Contains(cand.MarketCap) {
			continue
		}
		candidates = append(candidates, cand)
	}

	c.logger.WithFields(map[string]interface{}{
		"received": len(markets),
		"in_range": len(candidates),
	}).Debug("Fetched coingecko markets")

	return candidates, nil
}

// FetchSingle resolves a symbol, name or id through /search and loads the
// full coin detail. Returns nil when nothing matches.
func (c *Client) FetchSingle(ctx context.Context, query string) (*contracts.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	var search searchResponse
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/search?query="+url.QueryEscape(query), &search); err != nil {
		return nil, fmt.Errorf("coingecko search: %w", err)
	}

	id := search.bestMatch(query)
	if id == "" {
		return nil, nil
	}

	detailURL := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&market_data=true&community_data=true&developer_data=true&sparkline=false",
		c.baseURL, url.PathEscape(id))

	var detail coinDetail
	if err := c.httpClient.GetJSON(ctx, detailURL, &detail); err != nil {
		return nil, fmt.Errorf("coingecko coin %s: %w", id, err)
	}

	cand := detail.toCandidate()
	return &cand, nil
}
