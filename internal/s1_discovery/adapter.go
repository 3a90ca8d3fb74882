package s1_discovery

import (
	"context"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
)

// Adapter is one market-data source.
// An error always means "no candidates from this source"; the coordinator
// logs it and carries on with the others.
type Adapter interface {
	Source() string
	Fetch(ctx context.Context, rng pipelineconfig.MarketCapRange, opts pipelineconfig.Options) ([]contracts.Candidate, error)
	FetchSingle(ctx context.Context, query string) (*contracts.Candidate, error)
}

// singlePriority is the FetchTokenData lookup order
var singlePriority = []string{
	pipelineconfig.SourceDexScreener,
	pipelineconfig.SourceCoinGecko,
	pipelineconfig.SourceCoinMarketCap,
}
