package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEVMAddress    = "0x6982508145454Ce325dDbE47a25d4ec3d2311933"
	testSolanaAddress = "So11111111111111111111111111111111111111112"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"evm", testEVMAddress, false},
		{"evm upper prefix", "0X6982508145454CE325DDBE47A25D4EC3D2311933", false},
		{"solana wrapped sol", testSolanaAddress, false},
		{"solana system program", "11111111111111111111111111111111", false},
		{"empty", "  ", true},
		{"evm too short", "0x6982508145454Ce325dDbE47a25d4ec3d231193", true},
		{"evm non hex", "0x6982508145454Ce325dDbE47a25d4ec3d231193z", true},
		{"base58 bad alphabet", "O0IlO0IlO0IlO0IlO0IlO0IlO0IlO0Il", true},
		{"base58 wrong length", "3mJr7AoUXx2Wqd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.address)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAddress)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRiskScore(t *testing.T) {
	tests := []struct {
		name    string
		metrics *AlertMetrics
		want    int
	}{
		{"nil metrics", nil, 50},
		{"all unknown", &AlertMetrics{}, 50},
		{
			"safe token",
			&AlertMetrics{
				LiquidityUSD:     Float(100000),
				IsHoneypot:       Bool(false),
				BuyTaxPercent:    Float(0),
				SellTaxPercent:   Float(0),
				TopHolderPercent: Float(5),
				HolderCount:      Int(500),
			},
			0,
		},
		{
			"mid liquidity with concentrated holders",
			&AlertMetrics{
				LiquidityUSD:     Float(20000),
				IsHoneypot:       Bool(false),
				TopHolderPercent: Float(35),
				HolderCount:      Int(40),
			},
			25,
		},
		{
			"capped at 100",
			&AlertMetrics{
				LiquidityUSD:     Float(1000),
				IsHoneypot:       Bool(true),
				BuyTaxPercent:    Float(15),
				SellTaxPercent:   Float(20),
				TopHolderPercent: Float(50),
				HolderCount:      Int(10),
			},
			100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskScore(tt.metrics))
		})
	}
}

func TestParseAlert(t *testing.T) {
	raw := []byte(`{
		"type": "telegram_token_alert",
		"timestamp": "2026-10-18T09:00:00",
		"token": {
			"address": "` + testEVMAddress + `",
			"chain": "ethereum",
			"detected_at": "2026-10-18T08:59:00",
			"source": "telegram",
			"chat_name": "alpha calls",
			"source_message": "new token launched"
		},
		"metrics": {
			"price_usd": 0.0012,
			"market_cap_usd": 450000,
			"liquidity_usd": 60000,
			"volume_24h_usd": 90000,
			"is_honeypot": false,
			"buy_tax_percent": 1,
			"sell_tax_percent": 2,
			"holder_count": 320,
			"top_holder_percent": 12.5,
			"age_hours": 6
		},
		"ai_decision": {
			"decision": "BUY",
			"confidence": 0.72,
			"reasoning": "healthy liquidity",
			"risk_score": 20,
			"suggested_amount": 0.1,
			"warnings": ["new token"]
		}
	}`)

	p, err := ParseAlert(raw)
	require.NoError(t, err)
	require.NotNil(t, p.Metrics)
	require.NotNil(t, p.AIDecision)

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	c := p.ToCandidate(now)

	assert.Equal(t, "0X6982", c.Symbol)
	assert.Equal(t, "0X6982", c.Name)
	assert.Equal(t, "ethereum", c.Chain)
	assert.Equal(t, AlertSource, c.Source)
	assert.Equal(t, 450000.0, c.MarketCap)
	assert.Equal(t, 60000.0, c.Liquidity)
	assert.Equal(t, 320, c.Holders)
	require.NotNil(t, c.ListedAt)
	assert.Equal(t, now.Add(-6*time.Hour), *c.ListedAt)

	require.NotNil(t, c.Security)
	assert.True(t, c.Security.Verified)
	assert.False(t, c.Security.Honeypot())
	tax, ok := c.Security.MaxTax()
	assert.True(t, ok)
	assert.Equal(t, 2.0, tax)

	require.NotNil(t, c.AIDecision)
	assert.Equal(t, 0.72, c.AIDecision.Confidence)
	assert.Equal(t, []string{"new token"}, c.AIDecision.Warnings)
	assert.Contains(t, string(c.SourceData), "alpha calls")
}

func TestParseAlert_Rejects(t *testing.T) {
	t.Run("foreign type", func(t *testing.T) {
		_, err := ParseAlert([]byte(`{"type":"pong"}`))
		assert.ErrorIs(t, err, ErrUnsupportedAlert)
	})

	t.Run("bad address", func(t *testing.T) {
		_, err := ParseAlert([]byte(`{"type":"telegram_token_alert","token":{"address":"nope","chain":"bsc"}}`))
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ParseAlert([]byte(`{`))
		assert.Error(t, err)
	})
}

func TestAlertPayload_ToCandidateWithoutMetrics(t *testing.T) {
	p := AlertPayload{
		Type: AlertTypeToken,
		Token: AlertToken{
			Address:    testSolanaAddress,
			Chain:      "sol",
			Symbol:     "wsol",
			Name:       "Wrapped SOL",
			DetectedAt: "2026-10-18T08:00:00Z",
		},
	}

	c := p.ToCandidate(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, "WSOL", c.Symbol)
	assert.Equal(t, "solana", c.Chain)
	assert.Nil(t, c.Security)
	assert.Nil(t, c.AIDecision)
	require.NotNil(t, c.ListedAt)
	assert.Equal(t, 8, c.ListedAt.Hour())
	assert.Equal(t, testSolanaAddress, c.Address)
}
