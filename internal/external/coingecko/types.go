package coingecko

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
)

// marketCoin is one row of /coins/markets. Every numeric field is optional.
type marketCoin struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	FullyDilutedValuation    *float64 `json:"fully_diluted_valuation"`
	TotalVolume              *float64 `json:"total_volume"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	CirculatingSupply        *float64 `json:"circulating_supply"`
	TotalSupply              *float64 `json:"total_supply"`
	MaxSupply                *float64 `json:"max_supply"`
}

func (m marketCoin) toCandidate(requested contracts.Sector) contracts.Candidate {
	cand := contracts.Candidate{
		Symbol:            m.Symbol,
		Name:              m.Name,
		Price:             num(m.CurrentPrice),
		MarketCap:         num(m.MarketCap),
		FDV:               num(m.FullyDilutedValuation),
		Volume24h:         num(m.TotalVolume),
		PriceChange24h:    num(m.PriceChangePercentage24h),
		CirculatingSupply: num(m.CirculatingSupply),
		TotalSupply:       num(m.TotalSupply),
		MaxSupply:         num(m.MaxSupply),
		Source:            pipelineconfig.SourceCoinGecko,
		SourceData:        rawID(m.ID),
	}
	// The markets endpoint has no categories; the requested category is
	// the only one known.
	if requested != "" {
		cand.Categories = []string{string(requested)}
		cand.Sector = requested
	}
	cand.Normalize()
	return cand
}

type searchResponse struct {
	Coins []struct {
		ID            string `json:"id"`
		Symbol        string `json:"symbol"`
		Name          string `json:"name"`
		MarketCapRank *int   `json:"market_cap_rank"`
	} `json:"coins"`
}

// bestMatch prefers exact symbol, then exact id/name, then the first hit
func (s searchResponse) bestMatch(query string) string {
	for _, c := range s.Coins {
		if strings.EqualFold(c.Symbol, query) {
			return c.ID
		}
	}
	for _, c := range s.Coins {
		if strings.EqualFold(c.ID, query) || strings.EqualFold(c.Name, query) {
			return c.ID
		}
	}
	if len(s.Coins) > 0 {
		return s.Coins[0].ID
	}
	return ""
}

type usdValue struct {
	USD *float64 `json:"usd"`
}

// coinDetail is the subset of /coins/{id} used for evaluation
type coinDetail struct {
	ID              string            `json:"id"`
	Symbol          string            `json:"symbol"`
	Name            string            `json:"name"`
	AssetPlatformID string            `json:"asset_platform_id"`
	Platforms       map[string]string `json:"platforms"`
	Categories      []string          `json:"categories"`
	GenesisDate     string            `json:"genesis_date"`
	Description     struct {
		EN string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage                  []string `json:"homepage"`
		BlockchainSite            []string `json:"blockchain_site"`
		ChatURL                   []string `json:"chat_url"`
		TwitterScreenName         string   `json:"twitter_screen_name"`
		TelegramChannelIdentifier string   `json:"telegram_channel_identifier"`
		ReposURL                  struct {
			GitHub []string `json:"github"`
		} `json:"repos_url"`
	} `json:"links"`
	MarketData struct {
		CurrentPrice             usdValue `json:"current_price"`
		MarketCap                usdValue `json:"market_cap"`
		FullyDilutedValuation    usdValue `json:"fully_diluted_valuation"`
		TotalVolume              usdValue `json:"total_volume"`
		PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
		CirculatingSupply        *float64 `json:"circulating_supply"`
		TotalSupply              *float64 `json:"total_supply"`
		MaxSupply                *float64 `json:"max_supply"`
	} `json:"market_data"`
	CommunityData struct {
		TwitterFollowers         *int `json:"twitter_followers"`
		TelegramChannelUserCount *int `json:"telegram_channel_user_count"`
	} `json:"community_data"`
	DeveloperData struct {
		CommitCount4Weeks *int `json:"commit_count_4_weeks"`
	} `json:"developer_data"`
}

func (d coinDetail) toCandidate() contracts.Candidate {
	md := d.MarketData
	cand := contracts.Candidate{
		Symbol:            d.Symbol,
		Name:              d.Name,
		Chain:             d.AssetPlatformID,
		Address:           d.Platforms[d.AssetPlatformID],
		Price:             num(md.CurrentPrice.USD),
		MarketCap:         num(md.MarketCap.USD),
		FDV:               num(md.FullyDilutedValuation.USD),
		Volume24h:         num(md.TotalVolume.USD),
		PriceChange24h:    num(md.PriceChangePercentage24h),
		CirculatingSupply: num(md.CirculatingSupply),
		TotalSupply:       num(md.TotalSupply),
		MaxSupply:         num(md.MaxSupply),
		Categories:        nonEmpty(d.Categories),
		Description:       strings.TrimSpace(d.Description.EN),
		Links: contracts.Links{
			Website:  first(d.Links.Homepage),
			GitHub:   first(d.Links.ReposURL.GitHub),
			Explorer: first(d.Links.BlockchainSite),
		},
		Community: contracts.Community{
			TwitterFollowers: intNum(d.CommunityData.TwitterFollowers),
			TelegramMembers:  intNum(d.CommunityData.TelegramChannelUserCount),
		},
		Development: contracts.Development{
			CommitCount4Weeks: intNum(d.DeveloperData.CommitCount4Weeks),
			Backers:           backers(d.Categories),
		},
		Source:     pipelineconfig.SourceCoinGecko,
		SourceData: rawID(d.ID),
	}

	if d.Links.TwitterScreenName != "" {
		cand.Links.Twitter = "https://twitter.com/" + d.Links.TwitterScreenName
	}
	if d.Links.TelegramChannelIdentifier != "" {
		cand.Links.Telegram = "https://t.me/" + d.Links.TelegramChannelIdentifier
	}
	for _, chat := range d.Links.ChatURL {
		if strings.Contains(chat, "discord") {
			cand.Links.Discord = chat
			break
		}
	}

	if d.GenesisDate != "" {
		if t, err := time.Parse("2006-01-02", d.GenesisDate); err == nil {
			cand.ListedAt = &t
		}
	}

	cand.Normalize()
	return cand
}

// backers extracts investor names from "<Fund> Portfolio" categories
func backers(categories []string) []string {
	var out []string
	for _, c := range categories {
		if strings.HasSuffix(c, " Portfolio") {
			out = append(out, strings.TrimSuffix(c, " Portfolio"))
		}
	}
	return out
}

func num(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intNum(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func first(list []string) string {
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func nonEmpty(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func rawID(id string) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"coingecko_id": id})
	return data
}
