package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the audit record of a served trade estimate: the request
// parameters alongside the full calculated breakdown. Quotes are
// append-only, a new request always produces a new row.
type Quote struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	MarketSymbol string `gorm:"size:50;not null;index" json:"market_symbol"`
	Side         string `gorm:"size:10;not null" json:"side"`
	OrderType    string `gorm:"size:10;not null" json:"order_type"`

	Price          decimal.Decimal `gorm:"type:numeric(32,18);not null" json:"price"`
	Amount         decimal.Decimal `gorm:"type:numeric(32,18);not null" json:"amount"`
	IsMargin       bool            `gorm:"not null;default:false" json:"is_margin"`
	Leverage       decimal.Decimal `gorm:"type:numeric(6,2);not null;default:1" json:"leverage"`
	HotTokenAmount decimal.Decimal `gorm:"type:numeric(40,0);not null;default:0" json:"hot_token_amount"`

	Subtotal                  decimal.Decimal `gorm:"type:numeric(32,18);not null" json:"subtotal"`
	TotalBaseTokens           decimal.Decimal `gorm:"type:numeric(32,18);not null" json:"total_base_tokens"`
	TotalQuoteTokens          decimal.Decimal `gorm:"type:numeric(32,18);not null" json:"total_quote_tokens"`
	EstimatedPrice            decimal.Decimal `gorm:"type:numeric(32,18);not null" json:"estimated_price"`
	FeeRate                   decimal.Decimal `gorm:"type:numeric(10,8);not null" json:"fee_rate"`
	FeeRateAfterDiscount      decimal.Decimal `gorm:"type:numeric(10,8);not null" json:"fee_rate_after_discount"`
	TradeFee                  decimal.Decimal `gorm:"type:numeric(32,18);not null" json:"trade_fee"`
	TradeFeeAfterDiscount     decimal.Decimal `gorm:"type:numeric(32,18);not null" json:"trade_fee_after_discount"`
	HotDiscount               decimal.Decimal `gorm:"type:numeric(10,4);not null" json:"hot_discount"`
	GasFeeAmount              decimal.Decimal `gorm:"type:numeric(32,18);not null" json:"gas_fee_amount"`
	UserCollateralCommitted   decimal.Decimal `gorm:"type:numeric(32,18);not null" json:"user_collateral_committed"`
	BorrowedAmount            decimal.Decimal `gorm:"type:numeric(32,18);not null" json:"borrowed_amount"`
	EstimatedLiquidationPrice decimal.Decimal `gorm:"type:numeric(32,18);not null" json:"estimated_liquidation_price"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Quote) TableName() string {
	return "quotes"
}
