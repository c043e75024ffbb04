package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"quoteapi/src/database"
	"quoteapi/src/model"
)

// QuoteRepository persists served quotes as an append-only audit log.
type QuoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new repository instance using the main read/write database.
func NewQuoteRepository() *QuoteRepository {
	logger.WithField("component", "QuoteRepository").
		Info("Creating new QuoteRepository with MainDB")

	return &QuoteRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *QuoteRepository) WithDB(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create inserts a new quote record.
func (r *QuoteRepository) Create(
	ctx context.Context,
	quote *model.Quote,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":   "QuoteRepository",
		"op":     "Create",
		"symbol": quote.MarketSymbol,
		"side":   quote.Side,
		"type":   quote.OrderType,
	}).Debug("Creating quote record")

	err := r.db.WithContext(ctx).Create(quote).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "QuoteRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create quote record")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "QuoteRepository",
		"op":       "Create",
		"quote_id": quote.ID,
	}).Info("Quote record created")

	return nil
}

// FindLatestBySymbol fetches the most recent quote served for a market.
// Returns (nil, nil) if no quote has been served yet.
func (r *QuoteRepository) FindLatestBySymbol(
	ctx context.Context,
	symbol string,
) (*model.Quote, error) {

	logger.WithFields(map[string]interface{}{
		"repo":   "QuoteRepository",
		"op":     "FindLatestBySymbol",
		"symbol": symbol,
	}).Debug("Fetching latest quote for market")

	var quote model.Quote

	err := r.db.WithContext(ctx).
		Where("market_symbol = ?", symbol).
		Order("created_at DESC").
		First(&quote).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo":   "QuoteRepository",
				"op":     "FindLatestBySymbol",
				"symbol": symbol,
			}).Info("No quote found for market")

			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":   "QuoteRepository",
			"op":     "FindLatestBySymbol",
			"symbol": symbol,
		}).WithError(err).Error("Failed to fetch latest quote")

		return nil, err
	}

	return &quote, nil
}

// FindLatest returns the latest quotes across all markets, newest first.
func (r *QuoteRepository) FindLatest(
	ctx context.Context,
	limit int,
) ([]model.Quote, error) {

	if limit <= 0 {
		limit = 20
	}

	logger.WithFields(map[string]interface{}{
		"repo":  "QuoteRepository",
		"op":    "FindLatest",
		"limit": limit,
	}).Debug("Fetching latest quotes")

	var quotes []model.Quote

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&quotes).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "QuoteRepository",
			"op":    "FindLatest",
			"limit": limit,
		}).WithError(err).Error("Failed to fetch latest quotes")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "QuoteRepository",
		"op":          "FindLatest",
		"limit":       limit,
		"rows_return": len(quotes),
	}).Info("Latest quotes fetched")

	return quotes, nil
}
