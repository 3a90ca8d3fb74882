package goplus

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/pkg/breaker"
	"github.com/wonny/tokenscout/pkg/httputil"
	"github.com/wonny/tokenscout/pkg/logger"
)

// ProviderName is recorded on every report this client produces
const ProviderName = "goplus"

// Client fetches EVM token security data from GoPlus
// ⭐ SSOT: 컨트랙트 보안 조회는 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	cb         *gobreaker.CircuitBreaker
}

// NewClient creates a new GoPlus client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.gopluslabs.io/api/v1"
	}
	l := log.WithField("source", ProviderName)
	return &Client{
		httpClient: httpClient,
		logger:     l,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         breaker.New(ProviderName, breaker.DefaultSettings(), l),
	}
}

// FetchReport returns the security report for an EVM contract.
// Non-EVM chains, provider errors and an open breaker all yield an
// unverified report.
func (c *Client) FetchReport(ctx context.Context, address, chain string) contracts.SecurityReport {
	chainID, ok := contracts.EVMChainID(chain)
	if !ok || address == "" {
		return contracts.UnverifiedReport()
	}

	v, err := c.cb.Execute(func() (interface{}, error) {
		return c.fetch(ctx, chainID, address)
	})
	if err != nil {
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"chain":   chain,
			"address": address,
		}).Warn("Security lookup failed")
		return contracts.UnverifiedReport()
	}

	return v.(contracts.SecurityReport)
}

func (c *Client) fetch(ctx context.Context, chainID, address string) (contracts.SecurityReport, error) {
	endpoint := fmt.Sprintf("%s/token_security/%s?contract_addresses=%s",
		c.baseURL, chainID, url.QueryEscape(address))

	var resp tokenSecurityResponse
	if err := c.httpClient.GetJSON(ctx, endpoint, &resp); err != nil {
		return contracts.SecurityReport{}, err
	}
	if resp.Code != 1 {
		return contracts.SecurityReport{}, fmt.Errorf("goplus code %d: %s", resp.Code, resp.Message)
	}

	for addr, data := range resp.Result {
		if strings.EqualFold(addr, address) {
			return data.toReport(), nil
		}
	}

	// Unknown contract is not a provider failure
	return contracts.UnverifiedReport(), nil
}
