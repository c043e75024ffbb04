package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"quoteapi/src/auth"
	"quoteapi/src/feerules"
	"quoteapi/src/handler"
	"quoteapi/src/priceref"
	"quoteapi/src/repository"
)

func StartServer(port string) {
	// Router with middleware
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})

	marketRepo := repository.NewMarketRepository()
	quoteRepo := repository.NewQuoteRepository()

	feeCfg := feerules.GetConfig()
	discounts := feerules.NewCachedSource(feerules.NewClient(feeCfg), feeCfg.CacheTTL)
	prices := priceref.NewBinanceSource()

	// API routes, key protected when API_KEY_HASH is set
	r.Group(func(r chi.Router) {
		r.Use(auth.APIKeyMiddleware(auth.GetConfig()))

		r.Get("/markets", handler.ListMarketsHandler(marketRepo))
		r.Post("/quotes", handler.BuildQuoteHandler(marketRepo, discounts, prices, quoteRepo))
		r.Get("/quotes/latest", handler.LatestQuoteHandler(quoteRepo))
	})

	// Graceful server
	// Server setup
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
