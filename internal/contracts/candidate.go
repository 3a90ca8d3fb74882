package contracts

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"
)

// Sector classifies a token for heat and innovation scoring
type Sector string

const (
	SectorDeFi   Sector = "DeFi"
	SectorAI     Sector = "AI"
	SectorGaming Sector = "Gaming"
	SectorMeme   Sector = "Meme"
	SectorInfra  Sector = "Infra"
	SectorRWA    Sector = "RWA"
	SectorOther  Sector = "Other"
)

// AllSectors returns every sector value
func AllSectors() []Sector {
	return []Sector{SectorDeFi, SectorAI, SectorGaming, SectorMeme, SectorInfra, SectorRWA, SectorOther}
}

// ParseSector matches s case-insensitively; ok is false for unknown values
func ParseSector(s string) (Sector, bool) {
	for _, sector := range AllSectors() {
		if strings.EqualFold(string(sector), s) {
			return sector, true
		}
	}
	return "", false
}

// IsHot reports whether s is in the hot narrative tier (AI, RWA, Meme)
func (s Sector) IsHot() bool {
	return s == SectorAI || s == SectorRWA || s == SectorMeme
}

// IsMedium reports whether s is an established, less heated narrative
func (s Sector) IsMedium() bool {
	return s == SectorDeFi || s == SectorGaming || s == SectorInfra
}

// Candidate is the normalized token record flowing through all four stages
// ⭐ SSOT: 모든 프로바이더는 이 형태로 정규화
type Candidate struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	Chain   string `json:"chain,omitempty"`
	Address string `json:"address,omitempty"`

	// Market
	Price          float64 `json:"price"`
	MarketCap      float64 `json:"market_cap"`
	FDV            float64 `json:"fdv"`
	Volume24h      float64 `json:"volume_24h"`
	PriceChange24h float64 `json:"price_change_24h"`
	Liquidity      float64 `json:"liquidity"`

	// Supply (0 = unknown)
	CirculatingSupply float64 `json:"circulating_supply"`
	TotalSupply       float64 `json:"total_supply"`
	MaxSupply         float64 `json:"max_supply"`

	Holders int `json:"holders,omitempty"`

	Sector      Sector      `json:"sector"`
	Categories  []string    `json:"categories,omitempty"`
	Description string      `json:"description,omitempty"`
	Links       Links       `json:"links"`
	Community   Community   `json:"community"`
	Development Development `json:"development"`

	ListedAt *time.Time `json:"listed_at,omitempty"`

	// Provenance
	Source     string          `json:"source"`
	SourceData json.RawMessage `json:"source_data,omitempty"`

	// Pre-attached by external ingesters; skips live lookups when set
	Security   *SecurityReport `json:"security,omitempty"`
	AIDecision *AIDecision     `json:"ai_decision,omitempty"`

	// Embedded after S2
	Screening *ScreeningResult `json:"screening,omitempty"`
}

// Links holds the social and web presence of a project
type Links struct {
	Website  string `json:"website,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	Discord  string `json:"discord,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Explorer string `json:"explorer,omitempty"`
}

// Channels returns the number of distinct social/web channels present
func (l Links) Channels() int {
	n := 0
	for _, v := range []string{l.Website, l.Twitter, l.Telegram, l.Discord, l.GitHub} {
		if v != "" {
			n++
		}
	}
	return n
}

// HasSocials reports whether any social channel (not website) is present
func (l Links) HasSocials() bool {
	return l.Twitter != "" || l.Telegram != "" || l.Discord != ""
}

// Community holds audience size figures (0 = unknown)
type Community struct {
	TwitterFollowers int `json:"twitter_followers,omitempty"`
	TelegramMembers  int `json:"telegram_members,omitempty"`
}

// Total returns followers plus members
func (c Community) Total() int {
	return c.TwitterFollowers + c.TelegramMembers
}

// Development holds team and repository signals
type Development struct {
	CommitCount4Weeks int      `json:"commit_count_4_weeks,omitempty"`
	TeamDoxxed        bool     `json:"team_doxxed,omitempty"`
	Backers           []string `json:"backers,omitempty"`
}

// Key returns the identity key: lower-cased address, falling back to symbol
func (c *Candidate) Key() string {
	return IdentityKey(c.Address, c.Symbol)
}

// IdentityKey builds the identity key from raw parts
func IdentityKey(address, symbol string) string {
	if a := strings.TrimSpace(address); a != "" {
		return strings.ToLower(a)
	}
	return strings.ToLower(strings.TrimSpace(symbol))
}

// Matches reports whether identifier names this candidate by address or symbol
func (c *Candidate) Matches(identifier string) bool {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return false
	}
	if c.Address != "" && strings.EqualFold(c.Address, id) {
		return true
	}
	return strings.EqualFold(c.Symbol, id)
}

// Normalize enforces the candidate invariants: upper-case symbol and a
// populated sector.
func (c *Candidate) Normalize() {
	c.Symbol = strings.ToUpper(strings.TrimSpace(c.Symbol))
	c.Name = strings.TrimSpace(c.Name)
	c.Chain = CanonicalChain(c.Chain)
	c.Address = strings.TrimSpace(c.Address)
	if sector, ok := ParseSector(string(c.Sector)); ok && sector != SectorOther {
		c.Sector = sector
	} else {
		c.Sector = DetectSector(c.Name, c.Categories)
	}
}

// Age returns the time since listing; ok is false when unknown
func (c *Candidate) Age(now time.Time) (time.Duration, bool) {
	if c.ListedAt == nil || c.ListedAt.IsZero() {
		return 0, false
	}
	age := now.Sub(*c.ListedAt)
	if age < 0 {
		age = 0
	}
	return age, true
}

// Clone returns a deep copy; mutating the copy never reaches c.
func (c Candidate) Clone() Candidate {
	out := c
	out.Categories = append([]string(nil), c.Categories...)
	out.Development.Backers = append([]string(nil), c.Development.Backers...)
	out.ListedAt = clonePtr(c.ListedAt)
	if c.SourceData != nil {
		out.SourceData = append(json.RawMessage(nil), c.SourceData...)
	}
	if c.Security != nil {
		s := c.Security.Clone()
		out.Security = &s
	}
	if c.AIDecision != nil {
		d := *c.AIDecision
		d.Warnings = append([]string(nil), c.AIDecision.Warnings...)
		out.AIDecision = &d
	}
	if c.Screening != nil {
		s := *c.Screening
		s.Security = c.Screening.Security.Clone()
		s.RedFlags = append([]RedFlag(nil), c.Screening.RedFlags...)
		out.Screening = &s
	}
	return out
}

// sectorKeywords is checked in order; the first sector with a hit wins.
// Keywords are normalized: lower-case words separated by single spaces.
var sectorKeywords = []struct {
	sector   Sector
	keywords []string
}{
	{SectorAI, []string{"ai", "artificial intelligence", "agent", "agents", "gpt", "llm", "machine learning", "neural"}},
	{SectorMeme, []string{"meme", "memes", "doge", "pepe", "shib", "inu", "bonk", "wojak", "frog"}},
	{SectorRWA, []string{"rwa", "real world assets", "real world asset", "tokenized", "treasury", "real estate", "gold"}},
	{SectorGaming, []string{"gaming", "game", "games", "gamefi", "metaverse", "play to earn", "p2e", "nft"}},
	{SectorDeFi, []string{"defi", "decentralized finance", "dex", "lending", "yield", "swap", "amm", "staking", "liquid staking", "derivatives", "perpetuals"}},
	{SectorInfra, []string{"infrastructure", "layer 1", "layer 2", "l1", "l2", "oracle", "bridge", "interoperability", "storage", "zk", "rollup", "modular"}},
}

// DetectSector classifies by keyword matching over name and categories
func DetectSector(name string, categories []string) Sector {
	text := " " + normalizeWords(name+" "+strings.Join(categories, " ")) + " "
	for _, entry := range sectorKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, " "+kw+" ") {
				return entry.sector
			}
		}
	}
	return SectorOther
}

// normalizeWords lower-cases s and collapses every non-alphanumeric run
// into one space.
func normalizeWords(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}
