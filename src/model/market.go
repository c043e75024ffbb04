package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Market holds the per-pair parameters the quote engine needs: display
// precisions, fee schedule and the liquidation threshold used for margin
// quotes. LiquidateRate of 1.15 means collateral must stay above 115% of
// debt value.
type Market struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Symbol           string          `gorm:"size:50;not null;uniqueIndex" json:"symbol"`
	BaseTokenSymbol  string          `gorm:"size:20;not null" json:"base_token_symbol"`
	QuoteTokenSymbol string          `gorm:"size:20;not null" json:"quote_token_symbol"`
	PriceDecimals    int32           `gorm:"not null" json:"price_decimals"`
	AmountDecimals   int32           `gorm:"not null" json:"amount_decimals"`
	MakerFeeRate     decimal.Decimal `gorm:"type:numeric(10,8);not null" json:"maker_fee_rate"`
	TakerFeeRate     decimal.Decimal `gorm:"type:numeric(10,8);not null" json:"taker_fee_rate"`
	GasFeeAmount     decimal.Decimal `gorm:"type:numeric(32,18);not null;default:0" json:"gas_fee_amount"`
	LiquidateRate    decimal.Decimal `gorm:"type:numeric(10,4);not null;default:1.15" json:"liquidate_rate"`
	MinOrderSize     decimal.Decimal `gorm:"type:numeric(32,18);not null;default:0" json:"min_order_size"`
	MaxLeverage      decimal.Decimal `gorm:"type:numeric(6,2);not null;default:1" json:"max_leverage"`
	MarginEnabled    bool            `gorm:"not null;default:false" json:"margin_enabled"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (Market) TableName() string {
	return "markets"
}
