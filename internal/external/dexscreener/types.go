package dexscreener

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
)

type link struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

type tokenProfile struct {
	ChainID      string `json:"chainId"`
	TokenAddress string `json:"tokenAddress"`
	Description  string `json:"description"`
	Links        []link `json:"links"`
}

// enrich fills description and links the pair payload lacks
func (p tokenProfile) enrich(c *contracts.Candidate) {
	if c.Description == "" {
		c.Description = strings.TrimSpace(p.Description)
	}
	for _, l := range p.Links {
		applyLink(&c.Links, l.Type, l.Label, l.URL)
	}
}

type pair struct {
	ChainID     string `json:"chainId"`
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD string `json:"priceUsd"`
	Volume   struct {
		H24 *float64 `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		H24 *float64 `json:"h24"`
	} `json:"priceChange"`
	Liquidity *struct {
		USD *float64 `json:"usd"`
	} `json:"liquidity"`
	FDV           *float64 `json:"fdv"`
	MarketCap     *float64 `json:"marketCap"`
	PairCreatedAt int64    `json:"pairCreatedAt"`
	Info          *struct {
		Websites []struct {
			URL string `json:"url"`
		} `json:"websites"`
		Socials []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"socials"`
	} `json:"info"`
}

type searchResponse struct {
	Pairs []pair `json:"pairs"`
}

func (p pair) liquidityUSD() float64 {
	if p.Liquidity == nil || p.Liquidity.USD == nil {
		return 0
	}
	return *p.Liquidity.USD
}

func (p pair) toCandidate() contracts.Candidate {
	price, _ := strconv.ParseFloat(p.PriceUSD, 64)

	cand := contracts.Candidate{
		Symbol:         p.BaseToken.Symbol,
		Name:           p.BaseToken.Name,
		Chain:          p.ChainID,
		Address:        p.BaseToken.Address,
		Price:          price,
		MarketCap:      num(p.MarketCap),
		FDV:            num(p.FDV),
		Volume24h:      num(p.Volume.H24),
		PriceChange24h: num(p.PriceChange.H24),
		Liquidity:      p.liquidityUSD(),
		ListedAt:       msToTime(p.PairCreatedAt),
		Source:         pipelineconfig.SourceDexScreener,
	}

	// Fresh pairs often report FDV only
	if cand.MarketCap <= 0 {
		cand.MarketCap = cand.FDV
	}

	if p.Info != nil {
		for _, w := range p.Info.Websites {
			if cand.Links.Website == "" {
				cand.Links.Website = w.URL
			}
		}
		for _, s := range p.Info.Socials {
			applyLink(&cand.Links, s.Type, "", s.URL)
		}
	}

	cand.SourceData, _ = json.Marshal(map[string]string{"pair_address": p.PairAddress})
	cand.Normalize()
	return cand
}

// applyLink sets the matching link slot when empty
func applyLink(links *contracts.Links, kind, label, target string) {
	if target == "" {
		return
	}
	switch strings.ToLower(kind) {
	case "twitter", "x":
		if links.Twitter == "" {
			links.Twitter = target
		}
	case "telegram":
		if links.Telegram == "" {
			links.Telegram = target
		}
	case "discord":
		if links.Discord == "" {
			links.Discord = target
		}
	case "github":
		if links.GitHub == "" {
			links.GitHub = target
		}
	case "":
		// Profile websites come untyped with a label
		if strings.EqualFold(label, "website") && links.Website == "" {
			links.Website = target
		}
	}
}

func num(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
