package coinmarketcap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/pkg/httputil"
	"github.com/wonny/tokenscout/pkg/logger"
)

const newListingsFixture = `<html><body>
<table class="cmc-table">
  <thead><tr>
    <th>#</th><th>Name</th><th>Price</th><th>1h %</th><th>24h %</th>
    <th>Fully Diluted Market Cap</th><th>Market Cap</th><th>Volume(24h)</th><th>Blockchain</th><th>Added</th>
  </tr></thead>
  <tbody>
    <tr>
      <td>1</td>
      <td><a href="/currencies/neural-swarm/"><p>Neural Swarm</p><p>NSWARM</p></a></td>
      <td>$0.004213</td><td>1.2%</td>
      <td><span class="icon-Caret-up"></span>42.10%</td>
      <td>$600,000</td><td>$450,000</td><td>$1.2M</td>
      <td>Solana</td><td>3 hours ago</td>
    </tr>
    <tr>
      <td>2</td>
      <td><a href="/currencies/frog-coin/"><p>Frog Coin</p><p>FROG</p></a></td>
      <td>$0.0000021</td><td>0.1%</td>
      <td><span class="icon-Caret-down"></span>12.50%</td>
      <td>--</td><td>$3.4M</td><td>$85,000</td>
      <td>BNB Smart Chain (BEP20)</td><td>2 days ago</td>
    </tr>
    <tr>
      <td>3</td>
      <td><a href="/currencies/nocap/"><p>No Cap</p><p>NOCAP</p></a></td>
      <td>$0.1</td><td>0%</td><td>0%</td><td>--</td><td>--</td><td>--</td>
      <td>Ethereum</td><td>1 day ago</td>
    </tr>
    <tr><td colspan="10">advertisement</td></tr>
  </tbody>
</table>
</body></html>`

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.NewNop()
	return NewClient(httputil.New(log).DisableRetry(), server.URL, log).
		WithClock(func() time.Time { return fixedNow })
}

func serveFixture(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/new/", r.URL.Path)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(newListingsFixture))
	}
}

func TestParseListings(t *testing.T) {
	rows, err := parseListings(newListingsFixture, fixedNow)
	require.NoError(t, err)
	require.Len(t, rows, 3, "rows without a ticker are skipped")

	first := rows[0]
	assert.Equal(t, "NSWARM", first.Symbol)
	assert.Equal(t, "Neural Swarm", first.Name)
	assert.Equal(t, "solana", first.Chain)
	assert.InDelta(t, 0.004213, first.Price, 1e-12)
	assert.Equal(t, 42.10, first.PriceChange24h)
	assert.Equal(t, 450000.0, first.MarketCap, "fully diluted column is not market cap")
	assert.Equal(t, 1.2e6, first.Volume24h)
	assert.Equal(t, contracts.SectorAI, first.Sector)
	require.NotNil(t, first.ListedAt)
	assert.Equal(t, fixedNow.Add(-3*time.Hour), *first.ListedAt)
	assert.JSONEq(t, `{"slug":"neural-swarm"}`, string(first.SourceData))

	second := rows[1]
	assert.Equal(t, "bsc", second.Chain)
	assert.Equal(t, -12.5, second.PriceChange24h, "caret-down marks a decline")
	assert.Equal(t, 3.4e6, second.MarketCap)

	assert.Zero(t, rows[2].MarketCap)
}

func TestParseListings_NoTable(t *testing.T) {
	_, err := parseListings("<html><body><p>blocked</p></body></html>", fixedNow)
	assert.Error(t, err)
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$1,234.56", 1234.56},
		{"$350K", 350000},
		{"$1.5B", 1.5e9},
		{"--", 0},
		{"", 0},
		{"$abc", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, parseMoney(tt.in), 1e-6)
		})
	}
}

func TestParseAgo(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"15 minutes ago", 15 * time.Minute, true},
		{"1 hour ago", time.Hour, true},
		{"2 days ago", 48 * time.Hour, true},
		{"1 week ago", 7 * 24 * time.Hour, true},
		{"yesterday", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseAgo(tt.in, fixedNow)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, fixedNow.Add(-tt.want), got)
			}
		})
	}
}

func TestFetch_FiltersRangeAndChain(t *testing.T) {
	client := newTestClient(t, serveFixture(t))

	rng, _ := pipelineconfig.BucketRange(pipelineconfig.BucketUltra)
	candidates, err := client.Fetch(context.Background(), rng, pipelineconfig.Defaults())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "NSWARM", candidates[0].Symbol)

	opts := pipelineconfig.Defaults()
	opts.Chains = []string{"ethereum"}
	candidates, err = client.Fetch(context.Background(), pipelineconfig.MarketCapRange{Max: 1e12}, opts)
	require.NoError(t, err)
	assert.Empty(t, candidates, "only the zero-cap row is on ethereum")
}

func TestFetch_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.Fetch(context.Background(), pipelineconfig.MarketCapRange{Max: 1e12}, pipelineconfig.Defaults())
	assert.Error(t, err)
}

func TestFetchSingle(t *testing.T) {
	client := newTestClient(t, serveFixture(t))

	cand, err := client.FetchSingle(context.Background(), "frog")
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, "Frog Coin", cand.Name)

	cand, err = client.FetchSingle(context.Background(), "Neural Swarm")
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, "NSWARM", cand.Symbol)

	cand, err = client.FetchSingle(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, cand)
}
