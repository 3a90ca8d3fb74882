package coinmarketcap

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
)

// column identifies a table column by its header text
type column int

const (
	colUnknown column = iota
	colName
	colPrice
	colChange24h
	colMarketCap
	colVolume
	colChain
	colAdded
)

// headerColumns maps lower-cased header prefixes to columns
var headerColumns = []struct {
	prefix string
	col    column
}{
	{"name", colName},
	{"price", colPrice},
	{"24h", colChange24h},
	{"fully diluted", colUnknown},
	{"market cap", colMarketCap},
	{"volume", colVolume},
	{"blockchain", colChain},
	{"added", colAdded},
}

var (
	agoRe    = regexp.MustCompile(`(?i)^(\d+)\s*(minute|min|hour|day|week|month)s?\s+ago$`)
	symbolRe = regexp.MustCompile(`^[A-Z0-9$.]{1,15}$`)
)

// parseListings reads the new-listings table. Columns are resolved from the
// header row so reordered layouts keep working.
func parseListings(html string, now time.Time) ([]contracts.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("listing table not found")
	}

	var columns []column
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		columns = append(columns, classifyHeader(th.Text()))
	})
	if !containsColumn(columns, colName) {
		return nil, fmt.Errorf("listing table has no name column")
	}

	var out []contracts.Candidate
	table.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		cand, ok := parseRow(row, columns, now)
		if ok {
			out = append(out, cand)
		}
	})

	return out, nil
}

func parseRow(row *goquery.Selection, columns []column, now time.Time) (contracts.Candidate, bool) {
	cand := contracts.Candidate{Source: pipelineconfig.SourceCoinMarketCap}

	row.Find("td").Each(func(i int, cell *goquery.Selection) {
		if i >= len(columns) {
			return
		}
		text := strings.TrimSpace(cell.Text())
		switch columns[i] {
		case colName:
			cand.Name, cand.Symbol = parseNameCell(cell)
			if href, ok := cell.Find("a").Attr("href"); ok {
				if slug := slugFromHref(href); slug != "" {
					cand.SourceData, _ = json.Marshal(map[string]string{"slug": slug})
				}
			}
		case colPrice:
			cand.Price = parseMoney(text)
		case colChange24h:
			cand.PriceChange24h = parsePercent(cell)
		case colMarketCap:
			cand.MarketCap = parseMoney(text)
		case colVolume:
			cand.Volume24h = parseMoney(text)
		case colChain:
			cand.Chain = text
		case colAdded:
			if t, ok := parseAgo(text, now); ok {
				cand.ListedAt = &t
			}
		}
	})

	if cand.Symbol == "" {
		return cand, false
	}
	cand.Normalize()
	return cand, true
}

func classifyHeader(text string) column {
	h := strings.ToLower(strings.TrimSpace(text))
	for _, hc := range headerColumns {
		if strings.HasPrefix(h, hc.prefix) {
			return hc.col
		}
	}
	return colUnknown
}

func containsColumn(columns []column, want column) bool {
	for _, c := range columns {
		if c == want {
			return true
		}
	}
	return false
}

// parseNameCell extracts the project name and ticker. The page renders
// them as sibling paragraphs; a plain "Name SYMBOL" cell is also accepted.
func parseNameCell(cell *goquery.Selection) (string, string) {
	var parts []string
	cell.Find("p").Each(func(i int, p *goquery.Selection) {
		if t := strings.TrimSpace(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})

	if len(parts) >= 2 {
		return parts[0], parts[1]
	}

	fields := strings.Fields(cell.Text())
	if len(fields) == 0 {
		return "", ""
	}
	last := fields[len(fields)-1]
	if len(fields) > 1 && symbolRe.MatchString(last) {
		return strings.Join(fields[:len(fields)-1], " "), last
	}
	return strings.Join(fields, " "), ""
}

func slugFromHref(href string) string {
	parts := strings.Split(strings.Trim(href, "/"), "/")
	if len(parts) >= 2 && parts[0] == "currencies" {
		return parts[1]
	}
	return ""
}

// parseMoney reads "$1,234.56", "$1.2M" or "--"
func parseMoney(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "--" || s == "-" {
		return 0
	}

	mult := 1.0
	switch strings.ToUpper(s[len(s)-1:]) {
	case "K":
		mult = 1e3
	case "M":
		mult = 1e6
	case "B":
		mult = 1e9
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v * mult
}

// parsePercent reads the change cell. The page signals direction with a
// caret icon class instead of a minus sign.
func parsePercent(cell *goquery.Selection) float64 {
	text := strings.TrimSpace(cell.Text())
	text = strings.TrimSuffix(text, "%")
	text = strings.ReplaceAll(text, ",", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0
	}

	if v > 0 && (cell.Find("[class*='down']").Length() > 0 || cell.HasClass("down")) {
		v = -v
	}
	return v
}

// parseAgo resolves "3 hours ago" style listing ages against now
func parseAgo(s string, now time.Time) (time.Time, bool) {
	m := agoRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}

	var unit time.Duration
	switch strings.ToLower(m[2]) {
	case "minute", "min":
		unit = time.Minute
	case "hour":
		unit = time.Hour
	case "day":
		unit = 24 * time.Hour
	case "week":
		unit = 7 * 24 * time.Hour
	case "month":
		unit = 30 * 24 * time.Hour
	}
	return now.Add(-time.Duration(n) * unit).UTC(), true
}
