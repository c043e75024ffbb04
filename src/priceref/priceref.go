package priceref

import (
	"fmt"
	"net/http"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

// Source resolves a reference price for market orders that arrive without
// one. The exchange ticker is only a quoting aid, execution price discovery
// stays with the matching backend.
type Source struct {
	exchange goex.API
}

// NewBinanceSource builds a source backed by the Binance public ticker API.
func NewBinanceSource() *Source {
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}
	return &Source{exchange: binance.NewWithConfig(apiConfig)}
}

// NewSource wraps an arbitrary goex exchange, used by tests.
func NewSource(exchange goex.API) *Source {
	return &Source{exchange: exchange}
}

// LastPrice returns the last traded price for base/quote as a decimal.
func (s *Source) LastPrice(base, quote string) (decimal.Decimal, error) {
	pair := goex.NewCurrencyPair(goex.Currency{Symbol: base}, goex.Currency{Symbol: quote})

	ticker, err := s.exchange.GetTicker(pair)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"base":  base,
			"quote": quote,
		}).WithError(err).Error("Failed to fetch reference ticker")
		return decimal.Zero, fmt.Errorf("fetch reference ticker %s/%s: %w", base, quote, err)
	}

	if ticker.Last <= 0 {
		return decimal.Zero, fmt.Errorf("reference ticker %s/%s returned non-positive last price", base, quote)
	}

	price := decimal.NewFromFloat(ticker.Last)

	logger.WithFields(map[string]interface{}{
		"base":  base,
		"quote": quote,
		"price": price.String(),
	}).Debug("Reference price resolved")

	return price, nil
}
