package dexscreener

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/pkg/httputil"
	"github.com/wonny/tokenscout/pkg/logger"
)

// maxAddressesPerCall is the DexScreener batch limit for /tokens/v1
const maxAddressesPerCall = 30

// Client handles communication with the DexScreener API
// ⭐ SSOT: DexScreener 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new DexScreener client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.dexscreener.com"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("source", pipelineconfig.SourceDexScreener),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Source returns the adapter name
func (c *Client) Source() string {
	return pipelineconfig.SourceDexScreener
}

// Fetch reads the latest token profiles, resolves their pairs per chain and
// keeps tokens whose market cap falls in range.
func (c *Client) Fetch(ctx context.Context, rng pipelineconfig.MarketCapRange, opts pipelineconfig.Options) ([]contracts.Candidate, error) {
	var profiles []tokenProfile
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/token-profiles/latest/v1", &profiles); err != nil {
		return nil, fmt.Errorf("dexscreener profiles: %w", err)
	}

	// chain → addresses, preserving profile order
	byChain := make(map[string][]string)
	var chainOrder []string
	profileByKey := make(map[string]tokenProfile)
	for _, p := range profiles {
		chain := contracts.CanonicalChain(p.ChainID)
		if p.TokenAddress == "" || !opts.ChainAllowed(chain) {
			continue
		}
		key := strings.ToLower(p.TokenAddress)
		if _, seen := profileByKey[key]; seen {
			continue
		}
		profileByKey[key] = p
		if _, ok := byChain[p.ChainID]; !ok {
			chainOrder = append(chainOrder, p.ChainID)
		}
		byChain[p.ChainID] = append(byChain[p.ChainID], p.TokenAddress)
	}

	var candidates []contracts.Candidate
	for _, chainID := range chainOrder {
		addrs := byChain[chainID]
		for start := 0; start < len(addrs); start += maxAddressesPerCall {
			end := start + maxAddressesPerCall
			if end > len(addrs) {
				end = len(addrs)
			}

			pairs, err := c.fetchPairs(ctx, chainID, addrs[start:end])
			if err != nil {
				// Partial results are still useful; stop only on cancellation
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				c.logger.WithError(err).WithField("chain", chainID).Warn("Failed to fetch dexscreener pairs")
				continue
			}

			for _, pair := range bestPairs(pairs) {
				cand := pair.toCandidate()
				if p, ok := profileByKey[strings.ToLower(pair.BaseToken.Address)]; ok {
					p.enrich(&cand)
				}
				if cand.MarketCap <= 0 || !rng.Contains(cand.MarketCap) {
					continue
				}
				candidates = append(candidates, cand)
			}
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"profiles": len(profiles),
		"in_range": len(candidates),
	}).Debug("Fetched dexscreener tokens")

	return candidates, nil
}

// FetchSingle searches pairs by symbol or address and returns the most
// liquid match. Returns nil when nothing matches.
func (c *Client) FetchSingle(ctx context.Context, query string) (*contracts.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	var resp searchResponse
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/latest/dex/search?q="+url.QueryEscape(query), &resp); err != nil {
		return nil, fmt.Errorf("dexscreener search: %w", err)
	}

	var best *pair
	for i := range resp.Pairs {
		p := &resp.Pairs[i]
		if !strings.EqualFold(p.BaseToken.Symbol, query) && !strings.EqualFold(p.BaseToken.Address, query) {
			continue
		}
		if best == nil || p.liquidityUSD() > best.liquidityUSD() {
			best = p
		}
	}
	if best == nil {
		return nil, nil
	}

	cand := best.toCandidate()
	return &cand, nil
}

func (c *Client) fetchPairs(ctx context.Context, chainID string, addresses []string) ([]pair, error) {
	endpoint := fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, url.PathEscape(chainID), strings.Join(addresses, ","))

	var pairs []pair
	if err := c.httpClient.GetJSON(ctx, endpoint, &pairs); err != nil {
		return nil, err
	}
	return pairs, nil
}

// bestPairs keeps the most liquid pair per base token, in first-seen order
func bestPairs(pairs []pair) []pair {
	index := make(map[string]int)
	var out []pair
	for _, p := range pairs {
		key := strings.ToLower(p.BaseToken.Address)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			if p.liquidityUSD() > out[i].liquidityUSD() {
				out[i] = p
			}
			continue
		}
		index[key] = len(out)
		out = append(out, p)
	}
	return out
}

func msToTime(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}
