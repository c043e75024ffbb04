package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func noDiscount() DiscountSchedule { return nil }

func standardSchedule() DiscountSchedule {
	return DiscountSchedule{
		Bounded(d("100"), d("0.7")),
		Unbounded(d("1")),
	}
}

// hot returns a fee token balance of n whole tokens in smallest units.
func hot(n string) decimal.Decimal {
	return d(n).Mul(decimal.New(1, 18))
}

func TestCalculateLimitBuySpot(t *testing.T) {
	req := TradeRequest{
		OrderType:      OrderTypeLimit,
		Side:           SideBuy,
		Price:          d("100"),
		Amount:         d("2"),
		PriceDecimals:  2,
		AmountDecimals: 4,
		AsMakerFeeRate: d("0.001"),
		AsTakerFeeRate: d("0.003"),
		GasFeeAmount:   d("0.5"),
	}

	got := Calculate(req, noDiscount())

	if !got.Subtotal.Equal(d("200")) {
		t.Fatalf("subtotal mismatch. got=%s want=200", got.Subtotal)
	}
	if !got.TradeFee.Equal(d("0.2")) {
		t.Fatalf("tradeFee mismatch. got=%s want=0.2", got.TradeFee)
	}
	if !got.TotalQuoteTokens.Equal(d("200.7")) {
		t.Fatalf("totalQuoteTokens mismatch. got=%s want=200.7", got.TotalQuoteTokens)
	}
	if !got.TotalBaseTokens.Equal(d("2")) {
		t.Fatalf("totalBaseTokens mismatch. got=%s want=2", got.TotalBaseTokens)
	}
	if !got.FeeRate.Equal(d("0.001")) {
		t.Fatalf("feeRate mismatch. got=%s want=0.001", got.FeeRate)
	}
	if !got.IsMakerFee {
		t.Fatal("limit order must use the maker fee rate")
	}
	if !got.EstimatedPrice.IsZero() {
		t.Fatalf("limit order estimatedPrice must stay zero. got=%s", got.EstimatedPrice)
	}
	if !got.UserCollateralCommitted.Equal(d("200")) {
		t.Fatalf("spot collateral must equal subtotal. got=%s", got.UserCollateralCommitted)
	}
	if !got.BorrowedAmount.IsZero() {
		t.Fatalf("spot borrowedAmount must be zero. got=%s", got.BorrowedAmount)
	}
}

func TestCalculateMarketBuy(t *testing.T) {
	req := TradeRequest{
		OrderType:      OrderTypeMarket,
		Side:           SideBuy,
		Price:          d("100"),
		Amount:         d("500"), // quote currency to spend
		PriceDecimals:  2,
		AmountDecimals: 4,
		AsMakerFeeRate: d("0.001"),
		AsTakerFeeRate: d("0.003"),
	}

	got := Calculate(req, noDiscount())

	if !got.Subtotal.Equal(d("500")) {
		t.Fatalf("subtotal mismatch. got=%s want=500", got.Subtotal)
	}
	if !got.TotalBaseTokens.Equal(d("5")) {
		t.Fatalf("totalBaseTokens mismatch. got=%s want=5", got.TotalBaseTokens)
	}
	if !got.EstimatedPrice.Equal(d("100")) {
		t.Fatalf("estimatedPrice mismatch. got=%s want=100", got.EstimatedPrice)
	}
	if !got.FeeRate.Equal(d("0.003")) {
		t.Fatalf("market order must use the taker rate. got=%s", got.FeeRate)
	}
	if got.IsMakerFee {
		t.Fatal("market order must not be flagged as maker fee")
	}
}

func TestCalculateMarketBuyZeroPrice(t *testing.T) {
	req := TradeRequest{
		OrderType:      OrderTypeMarket,
		Side:           SideBuy,
		Price:          decimal.Zero,
		Amount:         d("500"),
		PriceDecimals:  2,
		AmountDecimals: 4,
	}

	got := Calculate(req, noDiscount())

	if !got.TotalBaseTokens.IsZero() {
		t.Fatalf("zero price must yield zero base tokens. got=%s", got.TotalBaseTokens)
	}
	if !got.Subtotal.Equal(d("500")) {
		t.Fatalf("subtotal mismatch. got=%s want=500", got.Subtotal)
	}
}

func TestCalculateMarginLong(t *testing.T) {
	req := TradeRequest{
		OrderType:                  OrderTypeLimit,
		Side:                       SideBuy,
		Price:                      d("100"),
		Amount:                     d("10"),
		PriceDecimals:              2,
		AmountDecimals:             4,
		AsMakerFeeRate:             d("0.001"),
		AsTakerFeeRate:             d("0.003"),
		IsMargin:                   true,
		Leverage:                   d("5"),
		MarketLiquidationThreshold: d("1.15"),
	}

	got := Calculate(req, noDiscount())

	if !got.Subtotal.Equal(d("1000")) {
		t.Fatalf("subtotal mismatch. got=%s want=1000", got.Subtotal)
	}
	if !got.UserCollateralCommitted.Equal(d("200")) {
		t.Fatalf("collateral mismatch. got=%s want=200", got.UserCollateralCommitted)
	}
	if !got.BorrowedAmount.Equal(d("800")) {
		t.Fatalf("borrowed mismatch. got=%s want=800", got.BorrowedAmount)
	}
	// 800 * 1.15 / 10 = 92
	if !got.EstimatedLiquidationPrice.Equal(d("92")) {
		t.Fatalf("liquidation price mismatch. got=%s want=92", got.EstimatedLiquidationPrice)
	}
	// collateral + fee (1000 * 0.001 = 1) + no gas
	if !got.TotalQuoteTokens.Equal(d("201")) {
		t.Fatalf("totalQuoteTokens mismatch. got=%s want=201", got.TotalQuoteTokens)
	}
}

func TestCalculateMarginShort(t *testing.T) {
	req := TradeRequest{
		OrderType:                  OrderTypeLimit,
		Side:                       SideSell,
		Price:                      d("100"),
		Amount:                     d("10"),
		PriceDecimals:              2,
		AmountDecimals:             4,
		AsMakerFeeRate:             d("0.001"),
		AsTakerFeeRate:             d("0.003"),
		IsMargin:                   true,
		Leverage:                   d("5"),
		MarketLiquidationThreshold: d("1.15"),
	}

	got := Calculate(req, noDiscount())

	if !got.UserCollateralCommitted.Equal(d("200")) {
		t.Fatalf("collateral mismatch. got=%s want=200", got.UserCollateralCommitted)
	}
	// 200 / (10 * 1.15) = 17.3913..., rounded down to price decimals
	if !got.EstimatedLiquidationPrice.Equal(d("17.39")) {
		t.Fatalf("liquidation price mismatch. got=%s want=17.39", got.EstimatedLiquidationPrice)
	}
	// collateral - fee (1) rounded down
	if !got.TotalQuoteTokens.Equal(d("199")) {
		t.Fatalf("totalQuoteTokens mismatch. got=%s want=199", got.TotalQuoteTokens)
	}
}

func TestCalculateMarginZeroBaseTokensSkipsLiquidation(t *testing.T) {
	req := TradeRequest{
		OrderType:                  OrderTypeMarket,
		Side:                       SideBuy,
		Price:                      decimal.Zero, // base estimate unavailable
		Amount:                     d("500"),
		PriceDecimals:              2,
		AmountDecimals:             4,
		IsMargin:                   true,
		Leverage:                   d("2"),
		MarketLiquidationThreshold: d("1.15"),
	}

	got := Calculate(req, noDiscount())

	if !got.EstimatedLiquidationPrice.IsZero() {
		t.Fatalf("liquidation price must be zero when base quantity is zero. got=%s", got.EstimatedLiquidationPrice)
	}
}

func TestCalculateDiscountApplied(t *testing.T) {
	req := TradeRequest{
		OrderType:      OrderTypeLimit,
		Side:           SideBuy,
		Price:          d("100"),
		Amount:         d("2"),
		PriceDecimals:  2,
		AmountDecimals: 4,
		AsMakerFeeRate: d("0.001"),
		HotTokenAmount: hot("50"),
	}

	got := Calculate(req, standardSchedule())

	if !got.HotDiscount.Equal(d("0.7")) {
		t.Fatalf("hotDiscount mismatch. got=%s want=0.7", got.HotDiscount)
	}
	if !got.TradeFee.Equal(d("0.2")) {
		t.Fatalf("tradeFee mismatch. got=%s want=0.2", got.TradeFee)
	}
	if !got.TradeFeeAfterDiscount.Equal(d("0.14")) {
		t.Fatalf("tradeFeeAfterDiscount mismatch. got=%s want=0.14", got.TradeFeeAfterDiscount)
	}
	if !got.FeeRateAfterDiscount.Equal(d("0.0007")) {
		t.Fatalf("feeRateAfterDiscount mismatch. got=%s want=0.0007", got.FeeRateAfterDiscount)
	}
}

func TestCalculateSellClampedAtZero(t *testing.T) {
	// Fees and gas exceed the proceeds of a tiny sell.
	req := TradeRequest{
		OrderType:      OrderTypeLimit,
		Side:           SideSell,
		Price:          d("0.01"),
		Amount:         d("1"),
		PriceDecimals:  2,
		AmountDecimals: 4,
		AsMakerFeeRate: d("0.001"),
		GasFeeAmount:   d("5"),
	}

	got := Calculate(req, noDiscount())

	if !got.TotalQuoteTokens.IsZero() {
		t.Fatalf("totalQuoteTokens must be clamped at zero. got=%s", got.TotalQuoteTokens)
	}
}

func TestCalculateDeterminism(t *testing.T) {
	req := TradeRequest{
		OrderType:                  OrderTypeMarket,
		Side:                       SideSell,
		Price:                      d("123.456"),
		Amount:                     d("7.891"),
		PriceDecimals:              3,
		AmountDecimals:             5,
		AsMakerFeeRate:             d("0.001"),
		AsTakerFeeRate:             d("0.0025"),
		GasFeeAmount:               d("0.1"),
		HotTokenAmount:             hot("42"),
		IsMargin:                   true,
		Leverage:                   d("3"),
		MarketLiquidationThreshold: d("1.2"),
	}
	schedule := standardSchedule()

	first := Calculate(req, schedule)
	second := Calculate(req, schedule)

	if first.TotalQuoteTokens.String() != second.TotalQuoteTokens.String() {
		t.Fatalf("totalQuoteTokens not deterministic. first=%s second=%s",
			first.TotalQuoteTokens, second.TotalQuoteTokens)
	}
	if first.EstimatedLiquidationPrice.String() != second.EstimatedLiquidationPrice.String() {
		t.Fatalf("liquidation price not deterministic. first=%s second=%s",
			first.EstimatedLiquidationPrice, second.EstimatedLiquidationPrice)
	}
	if first.TradeFeeAfterDiscount.String() != second.TradeFeeAfterDiscount.String() {
		t.Fatalf("tradeFeeAfterDiscount not deterministic. first=%s second=%s",
			first.TradeFeeAfterDiscount, second.TradeFeeAfterDiscount)
	}
}

func TestCalculateCollateralSplit(t *testing.T) {
	// Collateral plus borrowed must reconstruct the subtotal within one
	// unit of price precision, for awkward divisions too.
	tests := []struct {
		name     string
		price    string
		amount   string
		leverage string
	}{
		{name: "even split", price: "100", amount: "10", leverage: "5"},
		{name: "thirds", price: "100", amount: "10", leverage: "3"},
		{name: "sevenths", price: "99.99", amount: "3.33", leverage: "7"},
		{name: "high leverage", price: "0.07", amount: "123.45", leverage: "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := TradeRequest{
				OrderType:                  OrderTypeLimit,
				Side:                       SideBuy,
				Price:                      d(tt.price),
				Amount:                     d(tt.amount),
				PriceDecimals:              2,
				AmountDecimals:             4,
				IsMargin:                   true,
				Leverage:                   d(tt.leverage),
				MarketLiquidationThreshold: d("1.15"),
			}

			got := Calculate(req, noDiscount())

			sum := got.UserCollateralCommitted.Add(got.BorrowedAmount)
			diff := got.Subtotal.Sub(sum).Abs()
			oneUnit := decimal.New(1, -req.PriceDecimals)

			if diff.GreaterThan(oneUnit) {
				t.Fatalf("collateral split off by more than one unit. subtotal=%s collateral=%s borrowed=%s",
					got.Subtotal, got.UserCollateralCommitted, got.BorrowedAmount)
			}
		})
	}
}

func TestCalculateDiscountMonotonicity(t *testing.T) {
	schedule := DiscountSchedule{
		Bounded(d("10"), d("0.9")),
		Bounded(d("100"), d("0.7")),
		Unbounded(d("0.5")),
	}

	base := TradeRequest{
		OrderType:      OrderTypeLimit,
		Side:           SideBuy,
		Price:          d("100"),
		Amount:         d("2"),
		PriceDecimals:  2,
		AmountDecimals: 4,
		AsMakerFeeRate: d("0.001"),
	}

	balances := []string{"0", "1", "10", "11", "100", "101", "100000"}
	prev := decimal.New(1, 1) // larger than any possible fee rate

	for _, bal := range balances {
		req := base
		req.HotTokenAmount = hot(bal)

		got := Calculate(req, schedule)

		if got.FeeRateAfterDiscount.GreaterThan(prev) {
			t.Fatalf("feeRateAfterDiscount increased with balance %s. got=%s prev=%s",
				bal, got.FeeRateAfterDiscount, prev)
		}
		prev = got.FeeRateAfterDiscount
	}
}

func TestCalculateLeverageOneMatchesSpot(t *testing.T) {
	margin := TradeRequest{
		OrderType:                  OrderTypeLimit,
		Side:                       SideBuy,
		Price:                      d("100"),
		Amount:                     d("10"),
		PriceDecimals:              2,
		AmountDecimals:             4,
		AsMakerFeeRate:             d("0.001"),
		GasFeeAmount:               d("0.5"),
		IsMargin:                   true,
		Leverage:                   d("1"),
		MarketLiquidationThreshold: d("1.15"),
	}

	spot := margin
	spot.IsMargin = false
	spot.Leverage = decimal.Zero

	gotMargin := Calculate(margin, noDiscount())
	gotSpot := Calculate(spot, noDiscount())

	if !gotMargin.TotalQuoteTokens.Equal(gotSpot.TotalQuoteTokens) {
		t.Fatalf("totalQuoteTokens mismatch at leverage 1. margin=%s spot=%s",
			gotMargin.TotalQuoteTokens, gotSpot.TotalQuoteTokens)
	}
	if !gotMargin.UserCollateralCommitted.Equal(gotSpot.UserCollateralCommitted) {
		t.Fatalf("collateral mismatch at leverage 1. margin=%s spot=%s",
			gotMargin.UserCollateralCommitted, gotSpot.UserCollateralCommitted)
	}
	if !gotMargin.BorrowedAmount.IsZero() {
		t.Fatalf("borrowed must be zero at leverage 1. got=%s", gotMargin.BorrowedAmount)
	}
	if !gotMargin.EstimatedLiquidationPrice.IsZero() {
		t.Fatalf("liquidation price must be zero at leverage 1. got=%s", gotMargin.EstimatedLiquidationPrice)
	}
}

func TestCalculateSubtotalRounding(t *testing.T) {
	// 3.333 * 0.07 = 0.23331, rounded down to 2 price decimals.
	req := TradeRequest{
		OrderType:      OrderTypeLimit,
		Side:           SideSell,
		Price:          d("0.07"),
		Amount:         d("3.333"),
		PriceDecimals:  2,
		AmountDecimals: 4,
	}

	got := Calculate(req, noDiscount())

	if !got.Subtotal.Equal(d("0.23")) {
		t.Fatalf("subtotal must round down. got=%s want=0.23", got.Subtotal)
	}
}
