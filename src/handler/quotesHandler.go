package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"quoteapi/src/auth"
	"quoteapi/src/calculator"
	"quoteapi/src/model"
)

type marketFinder interface {
	FindBySymbol(ctx context.Context, symbol string) (*model.Market, error)
}

type discountSource interface {
	Schedule(ctx context.Context) calculator.DiscountSchedule
}

type priceSource interface {
	LastPrice(base, quote string) (decimal.Decimal, error)
}

type quoteRecorder interface {
	Create(ctx context.Context, quote *model.Quote) error
}

// QuoteRequestPayload is the POST /quotes body. Numeric fields arrive as
// strings so no precision is lost on the wire.
type QuoteRequestPayload struct {
	MarketID       string `json:"marketId"`
	Side           string `json:"side"`
	OrderType      string `json:"orderType"`
	Price          string `json:"price"`
	Amount         string `json:"amount"`
	IsMargin       bool   `json:"isMargin"`
	Leverage       string `json:"leverage"`
	HotTokenAmount string `json:"hotTokenAmount"`
}

// QuoteResponse wraps the calculated result with the persisted quote ID.
type QuoteResponse struct {
	ID       string                 `json:"id"`
	MarketID string                 `json:"marketId"`
	Result   calculator.TradeResult `json:"result"`
}

// BuildQuoteHandler returns a handler that prices a trade against a
// configured market. Numeric validation happens here, the calculator
// itself assumes well formed input.
func BuildQuoteHandler(
	markets marketFinder,
	discounts discountSource,
	prices priceSource,
	quotes quoteRecorder,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload QuoteRequestPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid quote payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		side := calculator.Side(payload.Side)
		if side != calculator.SideBuy && side != calculator.SideSell {
			http.Error(w, "invalid side", http.StatusBadRequest)
			return
		}

		orderType := calculator.OrderType(payload.OrderType)
		if orderType != calculator.OrderTypeLimit && orderType != calculator.OrderTypeMarket {
			http.Error(w, "invalid orderType", http.StatusBadRequest)
			return
		}

		amount, err := decimal.NewFromString(payload.Amount)
		if err != nil || amount.LessThanOrEqual(decimal.Zero) {
			http.Error(w, "invalid amount", http.StatusBadRequest)
			return
		}

		price := decimal.Zero
		if payload.Price != "" {
			price, err = decimal.NewFromString(payload.Price)
			if err != nil || price.LessThan(decimal.Zero) {
				http.Error(w, "invalid price", http.StatusBadRequest)
				return
			}
		}
		if orderType == calculator.OrderTypeLimit && price.LessThanOrEqual(decimal.Zero) {
			http.Error(w, "invalid price", http.StatusBadRequest)
			return
		}

		leverage := decimal.New(1, 0)
		if payload.Leverage != "" {
			leverage, err = decimal.NewFromString(payload.Leverage)
			if err != nil || leverage.LessThan(decimal.New(1, 0)) {
				http.Error(w, "invalid leverage", http.StatusBadRequest)
				return
			}
		}

		hotTokenAmount := decimal.Zero
		if payload.HotTokenAmount != "" {
			hotTokenAmount, err = decimal.NewFromString(payload.HotTokenAmount)
			if err != nil || hotTokenAmount.LessThan(decimal.Zero) {
				http.Error(w, "invalid hotTokenAmount", http.StatusBadRequest)
				return
			}
		}

		market, err := markets.FindBySymbol(r.Context(), payload.MarketID)
		if err != nil {
			logger.WithError(err).Error("failed to load market")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if market == nil {
			http.Error(w, "market not found", http.StatusNotFound)
			return
		}

		if payload.IsMargin {
			if !market.MarginEnabled {
				http.Error(w, "margin not enabled for market", http.StatusUnprocessableEntity)
				return
			}
			if leverage.GreaterThan(market.MaxLeverage) {
				http.Error(w, "leverage above market maximum", http.StatusUnprocessableEntity)
				return
			}
		}

		// Market orders may arrive without a price. The reference ticker
		// fills the gap so the base estimate and liquidation math have
		// something to work with.
		if orderType == calculator.OrderTypeMarket && price.IsZero() {
			refPrice, refErr := prices.LastPrice(market.BaseTokenSymbol, market.QuoteTokenSymbol)
			if refErr != nil {
				logger.WithError(refErr).Warn("reference price unavailable for market order")
				http.Error(w, "reference price unavailable", http.StatusUnprocessableEntity)
				return
			}
			price = refPrice
		}

		result := calculator.Calculate(calculator.TradeRequest{
			OrderType:                  orderType,
			Side:                       side,
			Price:                      price,
			Amount:                     amount,
			PriceDecimals:              market.PriceDecimals,
			AmountDecimals:             market.AmountDecimals,
			AsMakerFeeRate:             market.MakerFeeRate,
			AsTakerFeeRate:             market.TakerFeeRate,
			GasFeeAmount:               market.GasFeeAmount,
			HotTokenAmount:             hotTokenAmount,
			IsMargin:                   payload.IsMargin,
			Leverage:                   leverage,
			MarketLiquidationThreshold: market.LiquidateRate,
		}, discounts.Schedule(r.Context()))

		record := &model.Quote{
			ID:           uuid.NewString(),
			MarketSymbol: market.Symbol,
			Side:         string(side),
			OrderType:    string(orderType),

			Price:          price,
			Amount:         amount,
			IsMargin:       payload.IsMargin,
			Leverage:       leverage,
			HotTokenAmount: hotTokenAmount,

			Subtotal:                  result.Subtotal,
			TotalBaseTokens:           result.TotalBaseTokens,
			TotalQuoteTokens:          result.TotalQuoteTokens,
			EstimatedPrice:            result.EstimatedPrice,
			FeeRate:                   result.FeeRate,
			FeeRateAfterDiscount:      result.FeeRateAfterDiscount,
			TradeFee:                  result.TradeFee,
			TradeFeeAfterDiscount:     result.TradeFeeAfterDiscount,
			HotDiscount:               result.HotDiscount,
			GasFeeAmount:              result.GasFeeAmount,
			UserCollateralCommitted:   result.UserCollateralCommitted,
			BorrowedAmount:            result.BorrowedAmount,
			EstimatedLiquidationPrice: result.EstimatedLiquidationPrice,

			CreatedAt: time.Now().UTC(),
		}

		// The audit record is best effort, a storage hiccup must not take
		// the quoting path down with it.
		if err := quotes.Create(r.Context(), record); err != nil {
			logger.WithError(err).Warn("failed to persist quote record")
		}

		clientName := "unknown"
		if client, ok := auth.GetClientFromContext(r.Context()); ok {
			clientName = client.Name
		}
		logger.WithFields(map[string]interface{}{
			"client": clientName,
			"market": market.Symbol,
			"side":   string(side),
			"type":   string(orderType),
		}).Info("Quote served")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(QuoteResponse{
			ID:       record.ID,
			MarketID: market.Symbol,
			Result:   result,
		}); err != nil {
			logger.WithError(err).Error("failed to encode quote response")
		}
	}
}

type latestQuoteFinder interface {
	FindLatestBySymbol(ctx context.Context, symbol string) (*model.Quote, error)
	FindLatest(ctx context.Context, limit int) ([]model.Quote, error)
}

// LatestQuoteHandler returns the most recent persisted quote for a market,
// or the newest quotes across all markets when no symbol is given.
func LatestQuoteHandler(quotes latestQuoteFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

			latest, err := quotes.FindLatest(r.Context(), limit)
			if err != nil {
				logger.WithError(err).Error("failed to fetch latest quotes")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(latest); err != nil {
				logger.WithError(err).Error("failed to encode latest quotes response")
			}
			return
		}

		quote, err := quotes.FindLatestBySymbol(r.Context(), symbol)
		if err != nil {
			logger.WithError(err).Error("failed to fetch latest quote")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if quote == nil {
			http.Error(w, "no quote for market", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(quote); err != nil {
			logger.WithError(err).Error("failed to encode latest quote response")
		}
	}
}
