package s1_discovery

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/metrics"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/pkg/cache"
	"github.com/wonny/tokenscout/pkg/logger"
)

type fakeAdapter struct {
	name    string
	fetched []contracts.Candidate
	single  *contracts.Candidate
	err     error
	calls   int32
}

func (f *fakeAdapter) Source() string { return f.name }

func (f *fakeAdapter) Fetch(_ context.Context, _ pipelineconfig.MarketCapRange, _ pipelineconfig.Options) ([]contracts.Candidate, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.fetched, nil
}

func (f *fakeAdapter) FetchSingle(_ context.Context, _ string) (*contracts.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.single, nil
}

func cand(symbol, address, chain string, sector contracts.Sector, source string) contracts.Candidate {
	return contracts.Candidate{
		Symbol:    symbol,
		Name:      symbol + " token",
		Address:   address,
		Chain:     chain,
		Sector:    sector,
		MarketCap: 2_000_000,
		Source:    source,
	}
}

func newCoordinator(store cache.Store, adapters ...Adapter) *Coordinator {
	return NewCoordinator(adapters, store, metrics.New(), logger.NewNop())
}

func TestDiscover_MergesInSourceOrderFirstWins(t *testing.T) {
	gecko := &fakeAdapter{name: "coingecko", fetched: []contracts.Candidate{
		cand("AAA", "0xaaa", "ethereum", contracts.SectorDeFi, "coingecko"),
		cand("BBB", "", "", contracts.SectorAI, "coingecko"),
	}}
	dex := &fakeAdapter{name: "dexscreener", fetched: []contracts.Candidate{
		cand("aaa", "0xAAA", "ethereum", contracts.SectorDeFi, "dexscreener"),
		cand("CCC", "So1CCC", "solana", contracts.SectorMeme, "dexscreener"),
	}}
	c := newCoordinator(nil, gecko, dex)

	opts := pipelineconfig.Defaults()
	opts.Sources = []string{"coingecko", "dexscreener"}

	res := c.Discover(context.Background(), opts)

	require.Equal(t, 3, res.Count)
	assert.Equal(t, "AAA", res.Candidates[0].Symbol)
	assert.Equal(t, "coingecko", res.Candidates[0].Source, "first occurrence wins")
	assert.Equal(t, "BBB", res.Candidates[1].Symbol)
	assert.Equal(t, "CCC", res.Candidates[2].Symbol)
	assert.Equal(t, map[string]int{"coingecko": 2, "dexscreener": 2}, res.PerSource)
	assert.Empty(t, res.Errors)
}

func TestDiscover_SourceFailureIsSettled(t *testing.T) {
	gecko := &fakeAdapter{name: "coingecko", err: errors.New("rate limited")}
	dex := &fakeAdapter{name: "dexscreener", fetched: []contracts.Candidate{
		cand("CCC", "So1CCC", "solana", contracts.SectorMeme, "dexscreener"),
	}}
	c := newCoordinator(nil, gecko, dex)

	opts := pipelineconfig.Defaults()
	opts.Sources = []string{"coingecko", "dexscreener", "coinmarketcap"}

	res := c.Discover(context.Background(), opts)

	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "rate limited", res.Errors["coingecko"])
	assert.Contains(t, res.Errors["coinmarketcap"], "no adapter")
	assert.Equal(t, 0, res.PerSource["coingecko"])
}

func TestDiscover_Filters(t *testing.T) {
	withCategory := cand("GGG", "0xggg", "bsc", contracts.SectorOther, "coingecko")
	withCategory.Categories = []string{"Web3 Gaming Guilds"}

	gecko := &fakeAdapter{name: "coingecko", fetched: []contracts.Candidate{
		cand("AAA", "0xaaa", "ethereum", contracts.SectorGaming, "coingecko"),
		cand("BBB", "0xbbb", "bsc", contracts.SectorDeFi, "coingecko"),
		withCategory,
		cand("NOC", "", "", contracts.SectorGaming, "coingecko"),
	}}
	c := newCoordinator(nil, gecko)

	opts := pipelineconfig.Defaults()
	opts.Sources = []string{"coingecko"}
	opts.Sector = contracts.SectorGaming
	opts.Chains = []string{"bsc"}

	res := c.Discover(context.Background(), opts)

	var symbols []string
	for _, c := range res.Candidates {
		symbols = append(symbols, c.Symbol)
	}
	assert.Equal(t, []string{"GGG", "NOC"}, symbols, "category substring and empty chain pass")
}

func TestDiscover_Truncates(t *testing.T) {
	var many []contracts.Candidate
	for _, s := range []string{"A1", "A2", "A3", "A4", "A5"} {
		many = append(many, cand(s, "", "", contracts.SectorOther, "coingecko"))
	}
	c := newCoordinator(nil, &fakeAdapter{name: "coingecko", fetched: many})

	opts := pipelineconfig.Defaults()
	opts.Sources = []string{"coingecko"}
	opts.MaxCandidates = 2

	res := c.Discover(context.Background(), opts)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "A2", res.Candidates[1].Symbol)
}

func TestDiscover_CacheHitSkipsNetwork(t *testing.T) {
	gecko := &fakeAdapter{name: "coingecko", fetched: []contracts.Candidate{
		cand("AAA", "0xaaa", "ethereum", contracts.SectorDeFi, "coingecko"),
	}}
	c := newCoordinator(cache.NewMemory(), gecko)

	opts := pipelineconfig.Defaults()
	opts.Sources = []string{"coingecko"}

	first := c.Discover(context.Background(), opts)
	second := c.Discover(context.Background(), opts)

	assert.Equal(t, int32(1), atomic.LoadInt32(&gecko.calls))
	assert.Equal(t, first.Count, second.Count)

	opts.MarketCap = pipelineconfig.BucketUltra
	c.Discover(context.Background(), opts)
	assert.Equal(t, int32(2), atomic.LoadInt32(&gecko.calls), "different bucket misses the cache")
}

func TestDiscover_BreakerOpensAfterFailures(t *testing.T) {
	gecko := &fakeAdapter{name: "coingecko", err: errors.New("down")}
	c := newCoordinator(nil, gecko)

	opts := pipelineconfig.Defaults()
	opts.Sources = []string{"coingecko"}

	for i := 0; i < 5; i++ {
		res := c.Discover(context.Background(), opts)
		assert.NotEmpty(t, res.Errors["coingecko"])
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&gecko.calls))
}

// brokenAdapter writes to a nil map on every call
type brokenAdapter struct {
	name string
	seen map[string]int
}

func (b *brokenAdapter) Source() string { return b.name }

func (b *brokenAdapter) Fetch(_ context.Context, _ pipelineconfig.MarketCapRange, _ pipelineconfig.Options) ([]contracts.Candidate, error) {
	b.seen["fetch"]++
	return nil, nil
}

func (b *brokenAdapter) FetchSingle(_ context.Context, query string) (*contracts.Candidate, error) {
	b.seen[query]++
	return nil, nil
}

func TestDiscover_AdapterPanicIsSettled(t *testing.T) {
	broken := &brokenAdapter{name: "coingecko"}
	dex := &fakeAdapter{name: "dexscreener", fetched: []contracts.Candidate{
		cand("CCC", "So1CCC", "solana", contracts.SectorMeme, "dexscreener"),
	}}
	c := newCoordinator(nil, broken, dex)

	opts := pipelineconfig.Defaults()
	opts.Sources = []string{"coingecko", "dexscreener"}

	var res *DiscoverResult
	require.NotPanics(t, func() {
		res = c.Discover(context.Background(), opts)
	})

	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "CCC", res.Candidates[0].Symbol)
	assert.Contains(t, res.Errors["coingecko"], "adapter panic")
}

func TestFetchTokenData_AdapterPanicFallsThrough(t *testing.T) {
	hit := cand("PEP", "0xpep", "ethereum", contracts.SectorMeme, "coingecko")
	c := newCoordinator(nil,
		&brokenAdapter{name: "dexscreener"},
		&fakeAdapter{name: "coingecko", single: &hit},
	)

	var got *contracts.Candidate
	require.NotPanics(t, func() {
		got = c.FetchTokenData(context.Background(), "PEP")
	})
	require.NotNil(t, got)
	assert.Equal(t, "coingecko", got.Source)
}

func TestDiscover_ChainAliases(t *testing.T) {
	gecko := &fakeAdapter{name: "coingecko", fetched: []contracts.Candidate{
		cand("AAA", "0xaaa", "ethereum", contracts.SectorDeFi, "coingecko"),
		cand("BBB", "0xbbb", "bsc", contracts.SectorDeFi, "coingecko"),
		cand("CCC", "So1CCC", "solana", contracts.SectorMeme, "coingecko"),
	}}
	c := newCoordinator(nil, gecko)

	tests := []struct {
		name   string
		chains []string
		want   []string
	}{
		{"eth alias", []string{"eth"}, []string{"AAA"}},
		{"bnb alias", []string{"BNB"}, []string{"BBB"}},
		{"canonical names", []string{"ethereum", "solana"}, []string{"AAA", "CCC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := pipelineconfig.Defaults()
			opts.Sources = []string{"coingecko"}
			opts.Chains = tt.chains

			res := c.Discover(context.Background(), opts)

			var got []string
			for _, cand := range res.Candidates {
				got = append(got, cand.Symbol)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchTokenData_Priority(t *testing.T) {
	geckoHit := cand("pep", "0xpep", "ethereum", contracts.SectorMeme, "coingecko")
	dex := &fakeAdapter{name: "dexscreener", err: errors.New("timeout")}
	gecko := &fakeAdapter{name: "coingecko", single: &geckoHit}
	cmc := &fakeAdapter{name: "coinmarketcap", single: &contracts.Candidate{Symbol: "PEP", Source: "coinmarketcap"}}
	c := newCoordinator(nil, cmc, gecko, dex)

	got := c.FetchTokenData(context.Background(), "PEP")
	require.NotNil(t, got)
	assert.Equal(t, "coingecko", got.Source)
	assert.Equal(t, "PEP", got.Symbol)

	assert.Nil(t, c.FetchTokenData(context.Background(), "  "))
}

func TestFetchTokenData_NotFound(t *testing.T) {
	c := newCoordinator(nil, &fakeAdapter{name: "dexscreener"})
	assert.Nil(t, c.FetchTokenData(context.Background(), "NOPE"))
}

func TestCacheScope(t *testing.T) {
	opts := pipelineconfig.Defaults()
	assert.Equal(t, "all", cacheScope(opts))

	opts.Sector = contracts.SectorAI
	opts.Chains = []string{"Solana", "base"}
	assert.Equal(t, "ai+base,solana", cacheScope(opts))
}
