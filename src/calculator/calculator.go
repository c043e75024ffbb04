package calculator

import (
	"github.com/shopspring/decimal"
)

// ----- order labels -----

type OrderType string

type Side string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"

	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TradeRequest carries everything needed to quote a single trade.
// Price is quote per base. Amount is base quantity, except for market buys
// where it is the quote quantity to spend. All monetary fields are decimals,
// HotTokenAmount is in the fee token's smallest unit (18 decimals).
type TradeRequest struct {
	OrderType OrderType
	Side      Side

	Price  decimal.Decimal
	Amount decimal.Decimal

	PriceDecimals  int32
	AmountDecimals int32

	AsMakerFeeRate decimal.Decimal
	AsTakerFeeRate decimal.Decimal
	GasFeeAmount   decimal.Decimal
	HotTokenAmount decimal.Decimal

	IsMargin                   bool
	Leverage                   decimal.Decimal
	MarketLiquidationThreshold decimal.Decimal
}

// TradeResult is the full quote breakdown. Every field is derived from the
// request, there is no hidden state. EstimatedLiquidationPrice of zero means
// "not computable", never "safe".
type TradeResult struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	TotalBaseTokens decimal.Decimal `json:"totalBaseTokens"`
	EstimatedPrice  decimal.Decimal `json:"estimatedPrice"`

	FeeRate               decimal.Decimal `json:"feeRate"`
	FeeRateAfterDiscount  decimal.Decimal `json:"feeRateAfterDiscount"`
	TradeFee              decimal.Decimal `json:"tradeFee"`
	TradeFeeAfterDiscount decimal.Decimal `json:"tradeFeeAfterDiscount"`
	HotDiscount           decimal.Decimal `json:"hotDiscount"`
	IsMakerFee            bool            `json:"isMakerFee"`

	GasFeeAmount     decimal.Decimal `json:"gasFeeAmount"`
	TotalQuoteTokens decimal.Decimal `json:"totalQuoteTokens"`

	IsMargin                  bool            `json:"isMargin"`
	Leverage                  decimal.Decimal `json:"leverage"`
	UserCollateralCommitted   decimal.Decimal `json:"userCollateralCommitted"`
	BorrowedAmount            decimal.Decimal `json:"borrowedAmount"`
	EstimatedLiquidationPrice decimal.Decimal `json:"estimatedLiquidationPrice"`
}

// Calculate quotes a spot or leveraged trade. It is pure and never fails:
// well formed numeric input produces a fully populated result, malformed
// input is the caller's contract violation and yields degenerate zeros.
//
// Rounding directions are deliberate and must not change. Anything the user
// owes is rounded up, anything the user nets is rounded down, so the quote
// never understates a requirement.
func Calculate(req TradeRequest, schedule DiscountSchedule) TradeResult {
	var subtotal, totalBaseTokens decimal.Decimal
	estimatedPrice := decimal.Zero
	userCollateralCommitted := decimal.Zero
	borrowedAmount := decimal.Zero
	estimatedLiquidationPrice := decimal.Zero

	isMakerFee := req.OrderType == OrderTypeLimit
	hotDiscount := schedule.RateFor(req.HotTokenAmount)

	feeRate := req.AsMakerFeeRate
	if req.OrderType == OrderTypeMarket {
		feeRate = req.AsTakerFeeRate
	}

	if req.OrderType == OrderTypeMarket && req.Side == SideBuy {
		// Market buy. Amount is the total quote currency to spend and
		// Price is the reference price used for the base estimate.
		subtotal = req.Amount.RoundDown(req.PriceDecimals)
		if req.Price.GreaterThan(decimal.Zero) {
			totalBaseTokens = req.Amount.Div(req.Price).RoundDown(req.AmountDecimals)
		} else {
			totalBaseTokens = decimal.Zero
		}
		estimatedPrice = req.Price
	} else {
		// Limit orders and market sell. Amount is the base quantity.
		subtotal = req.Amount.Mul(req.Price).RoundDown(req.PriceDecimals)
		totalBaseTokens = req.Amount
		if req.OrderType == OrderTypeMarket && req.Side == SideSell {
			estimatedPrice = req.Price
		}
	}

	tradeFee := subtotal.Mul(feeRate)
	tradeFeeAfterDiscount := tradeFee.Mul(hotDiscount)
	feeRateAfterDiscount := feeRate.Mul(hotDiscount)

	var totalQuoteTokens decimal.Decimal

	one := decimal.New(1, 0)

	if req.IsMargin && req.Leverage.GreaterThan(one) {
		// Collateral requirement is rounded up so it is never under
		// computed, the borrowed remainder is rounded down.
		userCollateralCommitted = subtotal.Div(req.Leverage).RoundUp(req.PriceDecimals)
		borrowedAmount = subtotal.Sub(userCollateralCommitted).RoundDown(req.PriceDecimals)

		if req.Side == SideBuy {
			// Long. User pays their collateral part plus fees.
			totalQuoteTokens = userCollateralCommitted.
				Add(tradeFeeAfterDiscount).
				Add(req.GasFeeAmount).
				RoundUp(req.PriceDecimals)

			// Debt is in quote, collateral erodes as price falls.
			// LiqPrice = borrowed * threshold / baseQty.
			if totalBaseTokens.GreaterThan(decimal.Zero) && req.MarketLiquidationThreshold.GreaterThan(decimal.Zero) {
				estimatedLiquidationPrice = borrowedAmount.
					Mul(req.MarketLiquidationThreshold).
					Div(totalBaseTokens).
					RoundUp(req.PriceDecimals)
			}
		} else {
			// Short. Collateral is committed in quote, fees come out of it.
			totalQuoteTokens = userCollateralCommitted.
				Sub(tradeFeeAfterDiscount).
				Sub(req.GasFeeAmount).
				RoundDown(req.PriceDecimals)

			// Debt is in base, collateral erodes as price rises.
			// LiqPrice = collateral / (baseQty * threshold).
			borrowedAmountInBase := totalBaseTokens
			if borrowedAmountInBase.GreaterThan(decimal.Zero) &&
				req.MarketLiquidationThreshold.GreaterThan(decimal.Zero) &&
				req.Leverage.GreaterThan(decimal.Zero) {
				estimatedLiquidationPrice = userCollateralCommitted.
					Div(borrowedAmountInBase.Mul(req.MarketLiquidationThreshold)).
					RoundDown(req.PriceDecimals)
			}
		}
	} else {
		// Spot path, also taken at leverage exactly 1. The full subtotal is
		// the user's own commitment and nothing is borrowed.
		userCollateralCommitted = subtotal
		borrowedAmount = decimal.Zero

		if req.Side == SideBuy {
			totalQuoteTokens = subtotal.
				Add(tradeFeeAfterDiscount).
				Add(req.GasFeeAmount).
				RoundUp(req.PriceDecimals)
		} else {
			totalQuoteTokens = subtotal.
				Sub(tradeFeeAfterDiscount).
				Sub(req.GasFeeAmount).
				RoundDown(req.PriceDecimals)
		}
	}

	// A quote must never report a negative amount owed or received.
	if totalQuoteTokens.LessThan(decimal.Zero) {
		totalQuoteTokens = decimal.Zero
	}

	return TradeResult{
		Subtotal:        subtotal,
		TotalBaseTokens: totalBaseTokens,
		EstimatedPrice:  estimatedPrice,

		FeeRate:               feeRate,
		FeeRateAfterDiscount:  feeRateAfterDiscount,
		TradeFee:              tradeFee,
		TradeFeeAfterDiscount: tradeFeeAfterDiscount,
		HotDiscount:           hotDiscount,
		IsMakerFee:            isMakerFee,

		GasFeeAmount:     req.GasFeeAmount,
		TotalQuoteTokens: totalQuoteTokens,

		IsMargin:                  req.IsMargin,
		Leverage:                  req.Leverage,
		UserCollateralCommitted:   userCollateralCommitted,
		BorrowedAmount:            borrowedAmount,
		EstimatedLiquidationPrice: estimatedLiquidationPrice,
	}
}
