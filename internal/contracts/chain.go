package contracts

import "strings"

// chainAliases maps provider-specific chain names to canonical tags
var chainAliases = map[string]string{
	"eth":                     "ethereum",
	"ethereum":                "ethereum",
	"erc20":                   "ethereum",
	"bsc":                     "bsc",
	"bnb":                     "bsc",
	"bnb chain":               "bsc",
	"bnb smart chain":         "bsc",
	"bnb smart chain (bep20)": "bsc",
	"binance-smart-chain":     "bsc",
	"bep20":                   "bsc",
	"sol":                     "solana",
	"solana":                  "solana",
	"base":                    "base",
	"arbitrum":                "arbitrum",
	"arbitrum-one":            "arbitrum",
	"polygon":                 "polygon",
	"polygon-pos":             "polygon",
	"matic":                   "polygon",
	"optimism":                "optimism",
	"optimistic-ethereum":     "optimism",
	"avalanche":               "avalanche",
	"avax":                    "avalanche",
}

// CanonicalChain maps a provider chain name to its canonical tag.
// Unknown names are lower-cased and returned as-is.
func CanonicalChain(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if c, ok := chainAliases[n]; ok {
		return c
	}
	return n
}

// evmChainIDs are the numeric chain IDs used by EVM security providers
var evmChainIDs = map[string]string{
	"ethereum":  "1",
	"bsc":       "56",
	"polygon":   "137",
	"arbitrum":  "42161",
	"base":      "8453",
	"optimism":  "10",
	"avalanche": "43114",
}

// EVMChainID returns the numeric chain ID; ok is false for non-EVM chains
func EVMChainID(chain string) (string, bool) {
	id, ok := evmChainIDs[CanonicalChain(chain)]
	return id, ok
}
