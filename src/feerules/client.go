package feerules

// REST client for the external fee rules provider.
// RESTY ONLY + INTERNAL RETRY

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"quoteapi/src/calculator"
)

// discountRulesResponse is the provider wire format: ordered
// [threshold, rate] pairs with a -1 threshold marking the catch-all tier.
type discountRulesResponse struct {
	Tiers [][]decimal.Decimal `json:"tiers"`
}

// Client fetches the fee discount schedule from the fee rules provider.
type Client struct {
	baseURL   string
	rulesPath string
	http      *resty.Client
}

// NewClient builds a fee rules client from config. An empty base URL falls
// back to the config default so local runs keep working.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:3001"
		logger.Warnf("No fee rules base URL provided, using default: %s", baseURL)
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		AddRetryCondition(isRetryableResp)

	return &Client{
		baseURL:   baseURL,
		rulesPath: cfg.RulesPath,
		http:      httpClient,
	}
}

// isRetryableResp retries on transport errors, 5xx and 429.
func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	return r.StatusCode() >= http.StatusInternalServerError ||
		r.StatusCode() == http.StatusTooManyRequests
}

// FetchSchedule retrieves and parses the current discount schedule.
func (c *Client) FetchSchedule(ctx context.Context) (calculator.DiscountSchedule, error) {
	var payload discountRulesResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		Get(c.rulesPath)

	if err != nil {
		logger.WithError(err).Error("Failed to fetch fee discount rules")
		return nil, fmt.Errorf("fetch fee discount rules: %w", err)
	}

	if resp.IsError() {
		logger.WithFields(map[string]interface{}{
			"status": resp.StatusCode(),
			"body":   resp.String(),
		}).Error("Fee rules provider returned an error status")
		return nil, fmt.Errorf("fee rules provider status %d", resp.StatusCode())
	}

	schedule, err := calculator.ParseDiscountPairs(payload.Tiers)
	if err != nil {
		logger.WithError(err).Error("Fee rules provider returned a malformed discount table")
		return nil, fmt.Errorf("parse fee discount rules: %w", err)
	}

	logger.WithField("tiers", len(schedule)).Debug("Fetched fee discount schedule")
	return schedule, nil
}
