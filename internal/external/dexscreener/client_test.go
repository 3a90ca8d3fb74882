package dexscreener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/pkg/httputil"
	"github.com/wonny/tokenscout/pkg/logger"
)

const profilesFixture = `[
  {"chainId":"solana","tokenAddress":"So1aAAA","description":"Agent swarm on Solana","links":[{"type":"twitter","url":"https://x.com/swarm"},{"label":"Website","url":"https://swarm.ai"}]},
  {"chainId":"bsc","tokenAddress":"0xBbB","description":"","links":[]},
  {"chainId":"solana","tokenAddress":"So1aAAA","description":"duplicate"}
]`

const solanaPairsFixture = `[
  {"chainId":"solana","pairAddress":"P1","baseToken":{"address":"So1aAAA","name":"Swarm AI","symbol":"swarm"},
   "priceUsd":"0.0042","volume":{"h24":250000},"priceChange":{"h24":35.5},"liquidity":{"usd":80000},
   "marketCap":420000,"fdv":450000,"pairCreatedAt":1767225600000,
   "info":{"websites":[],"socials":[{"type":"telegram","url":"https://t.me/swarm"}]}},
  {"chainId":"solana","pairAddress":"P2","baseToken":{"address":"So1aAAA","name":"Swarm AI","symbol":"swarm"},
   "priceUsd":"0.0041","liquidity":{"usd":1000},"marketCap":410000}
]`

const bscPairsFixture = `[
  {"chainId":"bsc","pairAddress":"P3","baseToken":{"address":"0xBbB","name":"Big Cap","symbol":"BIG"},
   "priceUsd":"2","liquidity":{"usd":5000000},"marketCap":90000000}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.NewNop()
	return NewClient(httputil.New(log).DisableRetry(), server.URL, log)
}

func TestFetch(t *testing.T) {
	var pairCalls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/token-profiles/latest/v1":
			_, _ = w.Write([]byte(profilesFixture))
		case strings.HasPrefix(r.URL.Path, "/tokens/v1/solana/"):
			pairCalls = append(pairCalls, r.URL.Path)
			_, _ = w.Write([]byte(solanaPairsFixture))
		case strings.HasPrefix(r.URL.Path, "/tokens/v1/bsc/"):
			pairCalls = append(pairCalls, r.URL.Path)
			_, _ = w.Write([]byte(bscPairsFixture))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	rng, _ := pipelineconfig.BucketRange(pipelineconfig.BucketUltra)
	candidates, err := client.Fetch(context.Background(), rng, pipelineconfig.Defaults())
	require.NoError(t, err)

	assert.Equal(t, []string{"/tokens/v1/solana/So1aAAA", "/tokens/v1/bsc/0xBbB"}, pairCalls)
	require.Len(t, candidates, 1, "big cap bsc token is out of the ultra range")

	c := candidates[0]
	assert.Equal(t, "SWARM", c.Symbol)
	assert.Equal(t, "solana", c.Chain)
	assert.Equal(t, 80000.0, c.Liquidity, "most liquid pair wins")
	assert.Equal(t, 0.0042, c.Price)
	assert.Equal(t, 35.5, c.PriceChange24h)
	assert.Equal(t, "https://t.me/swarm", c.Links.Telegram)
	assert.Equal(t, "https://x.com/swarm", c.Links.Twitter)
	assert.Equal(t, "https://swarm.ai", c.Links.Website)
	assert.Equal(t, "Agent swarm on Solana", c.Description)
	require.NotNil(t, c.ListedAt)
	assert.Equal(t, 2026, c.ListedAt.Year())
}

func TestFetch_ChainAllowList(t *testing.T) {
	var pairCalls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token-profiles/latest/v1" {
			_, _ = w.Write([]byte(profilesFixture))
			return
		}
		pairCalls++
		_, _ = w.Write([]byte(bscPairsFixture))
	})

	opts := pipelineconfig.Defaults()
	opts.Chains = []string{"bsc"}

	candidates, err := client.Fetch(context.Background(), pipelineconfig.MarketCapRange{Max: 1e12}, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, pairCalls)
	require.Len(t, candidates, 1)
	assert.Equal(t, "bsc", candidates[0].Chain)
}

func TestFetch_ProfilesError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	candidates, err := client.Fetch(context.Background(), pipelineconfig.MarketCapRange{Max: 1e12}, pipelineconfig.Defaults())
	assert.Error(t, err)
	assert.Empty(t, candidates)
}

func TestFetchSingle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/search", r.URL.Path)
		assert.Equal(t, "swarm", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"pairs":` + solanaPairsFixture + `}`))
	})

	cand, err := client.FetchSingle(context.Background(), "swarm")
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, "So1aAAA", cand.Address)
	assert.Equal(t, 80000.0, cand.Liquidity)
}

func TestFetchSingle_NoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pairs":[]}`))
	})

	cand, err := client.FetchSingle(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Nil(t, cand)
}

func TestPair_FDVFallback(t *testing.T) {
	fdv := 123456.0
	p := pair{FDV: &fdv}
	p.BaseToken.Symbol = "x"

	c := p.toCandidate()
	assert.Equal(t, fdv, c.MarketCap)
}
