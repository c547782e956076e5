package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"brokerage/internal/models"
	"brokerage/internal/money"
)

var (
	ErrNotFound    = errors.New("symbol not found")
	ErrUnavailable = errors.New("quote service unavailable")
)

// Lookuper resolves a ticker symbol to a live quote.
type Lookuper interface {
	Lookup(ctx context.Context, symbol string) (models.Quote, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type quoteResponse struct {
	Symbol      string      `json:"symbol"`
	CompanyName string      `json:"companyName"`
	LatestPrice json.Number `json:"latestPrice"`
}

func (c *Client) Lookup(ctx context.Context, symbol string) (models.Quote, error) {
	endpoint := fmt.Sprintf("%s/stock/%s/quote?token=%s", c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Quote{}, ErrUnavailable
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("quote lookup failed")
		return models.Quote{}, ErrUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.Quote{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		log.Warn().Int("status", resp.StatusCode).Str("symbol", symbol).Msg("quote feed returned error status")
		return models.Quote{}, ErrUnavailable
	}

	var payload quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Quote{}, ErrUnavailable
	}
	if payload.Symbol == "" || payload.LatestPrice.String() == "" {
		return models.Quote{}, ErrNotFound
	}
	priceMinor, err := money.PriceToMinor(payload.LatestPrice.String())
	if err != nil || priceMinor <= 0 {
		return models.Quote{}, ErrUnavailable
	}
	return models.Quote{
		Symbol:     strings.ToUpper(payload.Symbol),
		Name:       payload.CompanyName,
		PriceMinor: priceMinor,
	}, nil
}
