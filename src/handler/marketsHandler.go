package handler

import (
	"context"
	"encoding/json"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"quoteapi/src/model"
)

type marketLister interface {
	FindAll(ctx context.Context) ([]model.Market, error)
}

// ListMarketsHandler returns every configured market with its quoting
// parameters.
func ListMarketsHandler(markets marketLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := markets.FindAll(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to list markets")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(all); err != nil {
			logger.WithError(err).Error("failed to encode markets response")
		}
	}
}
