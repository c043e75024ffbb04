package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quoteapi/src/database"
	"quoteapi/src/model"
)

// MarketRepository handles read/write operations for market parameters.
type MarketRepository struct {
	db *gorm.DB
}

// NewMarketRepository creates a new repository instance using the main read/write database.
func NewMarketRepository() *MarketRepository {
	logger.WithField("component", "MarketRepository").
		Info("Creating new MarketRepository with MainDB")

	return &MarketRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *MarketRepository) WithDB(db *gorm.DB) *MarketRepository {
	return &MarketRepository{db: db}
}

// FindBySymbol fetches a market by its symbol.
// Returns (nil, nil) if the market is not found.
func (r *MarketRepository) FindBySymbol(
	ctx context.Context,
	symbol string,
) (*model.Market, error) {

	logger.WithFields(map[string]interface{}{
		"repo":   "MarketRepository",
		"op":     "FindBySymbol",
		"symbol": symbol,
	}).Debug("Fetching market by symbol")

	var market model.Market

	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		First(&market).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo":   "MarketRepository",
				"op":     "FindBySymbol",
				"symbol": symbol,
			}).Info("Market not found")

			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":   "MarketRepository",
			"op":     "FindBySymbol",
			"symbol": symbol,
		}).WithError(err).Error("Failed to fetch market by symbol")

		return nil, err
	}

	return &market, nil
}

// FindAll returns every configured market ordered by symbol.
func (r *MarketRepository) FindAll(ctx context.Context) ([]model.Market, error) {

	logger.WithFields(map[string]interface{}{
		"repo": "MarketRepository",
		"op":   "FindAll",
	}).Debug("Fetching all markets")

	var markets []model.Market

	err := r.db.WithContext(ctx).
		Order("symbol ASC").
		Find(&markets).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "MarketRepository",
			"op":   "FindAll",
		}).WithError(err).Error("Failed to fetch markets")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "MarketRepository",
		"op":          "FindAll",
		"rows_return": len(markets),
	}).Info("Markets fetched")

	return markets, nil
}

// Upsert inserts a market or updates its parameters when the symbol already exists.
func (r *MarketRepository) Upsert(
	ctx context.Context,
	market *model.Market,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":   "MarketRepository",
		"op":     "Upsert",
		"symbol": market.Symbol,
	}).Debug("Upserting market")

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "symbol"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"base_token_symbol", "quote_token_symbol",
				"price_decimals", "amount_decimals",
				"maker_fee_rate", "taker_fee_rate", "gas_fee_amount",
				"liquidate_rate", "min_order_size", "max_leverage",
				"margin_enabled", "updated_at",
			}),
		}).
		Create(market).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "MarketRepository",
			"op":     "Upsert",
			"symbol": market.Symbol,
		}).WithError(err).Error("Failed to upsert market")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":   "MarketRepository",
		"op":     "Upsert",
		"symbol": market.Symbol,
	}).Info("Market upserted successfully")

	return nil
}

// SeedDefaults installs the default market set when the markets table is
// empty. Existing rows are never touched.
func (r *MarketRepository) SeedDefaults(ctx context.Context) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Market{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	markets := defaultMarkets()
	for i := range markets {
		if err := r.Upsert(ctx, &markets[i]); err != nil {
			return err
		}
	}

	logger.WithFields(map[string]interface{}{
		"repo":    "MarketRepository",
		"op":      "SeedDefaults",
		"markets": len(markets),
	}).Info("Default markets seeded")

	return nil
}

func defaultMarkets() []model.Market {
	return []model.Market{
		{
			Symbol:           "ETH-DAI",
			BaseTokenSymbol:  "ETH",
			QuoteTokenSymbol: "DAI",
			PriceDecimals:    2,
			AmountDecimals:   4,
			MakerFeeRate:     decimal.RequireFromString("0.001"),
			TakerFeeRate:     decimal.RequireFromString("0.003"),
			GasFeeAmount:     decimal.RequireFromString("0.5"),
			LiquidateRate:    decimal.RequireFromString("1.15"),
			MinOrderSize:     decimal.RequireFromString("10"),
			MaxLeverage:      decimal.RequireFromString("5"),
			MarginEnabled:    true,
		},
		{
			Symbol:           "WBTC-DAI",
			BaseTokenSymbol:  "WBTC",
			QuoteTokenSymbol: "DAI",
			PriceDecimals:    2,
			AmountDecimals:   6,
			MakerFeeRate:     decimal.RequireFromString("0.001"),
			TakerFeeRate:     decimal.RequireFromString("0.003"),
			GasFeeAmount:     decimal.RequireFromString("0.5"),
			LiquidateRate:    decimal.RequireFromString("1.15"),
			MinOrderSize:     decimal.RequireFromString("10"),
			MaxLeverage:      decimal.RequireFromString("3"),
			MarginEnabled:    true,
		},
		{
			Symbol:           "HOT-DAI",
			BaseTokenSymbol:  "HOT",
			QuoteTokenSymbol: "DAI",
			PriceDecimals:    4,
			AmountDecimals:   2,
			MakerFeeRate:     decimal.RequireFromString("0.001"),
			TakerFeeRate:     decimal.RequireFromString("0.003"),
			GasFeeAmount:     decimal.RequireFromString("0.1"),
			LiquidateRate:    decimal.RequireFromString("1.15"),
			MinOrderSize:     decimal.RequireFromString("1"),
			MaxLeverage:      decimal.RequireFromString("1"),
			MarginEnabled:    false,
		},
	}
}
