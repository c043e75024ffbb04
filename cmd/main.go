package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"quoteapi/src/calculator"
	"quoteapi/src/database"
	"quoteapi/src/feerules"
	"quoteapi/src/repository"
	"quoteapi/src/server"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "QuoteAPI CMD"
	app.Usage = "The quoteapi command line interface"

	app.Commands = []cli.Command{
		serverCMD,
		estimateCMD,
		syncFeesCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serverCMD = cli.Command{
		Name:        "server",
		Usage:       "run the quote API server",
		Action:      serverAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the HTTP quote server`,
	}
	estimateCMD = cli.Command{
		Name:      "estimate",
		Usage:     "quote a single trade from flags",
		Action:    estimateAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "side", Value: "buy", Usage: "buy or sell"},
			cli.StringFlag{Name: "type", Value: "limit", Usage: "limit or market"},
			cli.StringFlag{Name: "price", Value: "0", Usage: "quote per base price"},
			cli.StringFlag{Name: "amount", Value: "0", Usage: "base amount (quote amount for market buy)"},
			cli.IntFlag{Name: "price-decimals", Value: 2},
			cli.IntFlag{Name: "amount-decimals", Value: 4},
			cli.StringFlag{Name: "maker-fee", Value: "0.001"},
			cli.StringFlag{Name: "taker-fee", Value: "0.003"},
			cli.StringFlag{Name: "gas-fee", Value: "0"},
			cli.StringFlag{Name: "hot", Value: "0", Usage: "fee token balance in smallest unit"},
			cli.BoolFlag{Name: "margin"},
			cli.StringFlag{Name: "leverage", Value: "1"},
			cli.StringFlag{Name: "threshold", Value: "1.15", Usage: "liquidation threshold"},
		},
		Description: `Quote a trade without the HTTP stack, printing the result as JSON`,
	}
	syncFeesCMD = cli.Command{
		Name:        "syncfees",
		Usage:       "fetch and print the current fee discount rules",
		Action:      syncFeesAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Fetch the discount table from the fee rules provider`,
	}
)

func serverAction(_ *cli.Context) error {

	logrus.Info("Starting quote API server CMD")
	logrus.WithField("cmd", "server")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	if database.GetConfig().SeedMarkets {
		if err := repository.NewMarketRepository().SeedDefaults(context.Background()); err != nil {
			logrus.WithError(err).Fatal("Failed to seed default markets")
		}
	}

	server.StartServer(server.GetConfig().Port)
	return nil
}

func estimateAction(c *cli.Context) error {

	logrus.WithField("cmd", "estimate").Info("Starting estimate CMD")

	req := calculator.TradeRequest{
		OrderType:                  calculator.OrderType(c.String("type")),
		Side:                       calculator.Side(c.String("side")),
		Price:                      decimal.RequireFromString(c.String("price")),
		Amount:                     decimal.RequireFromString(c.String("amount")),
		PriceDecimals:              int32(c.Int("price-decimals")),
		AmountDecimals:             int32(c.Int("amount-decimals")),
		AsMakerFeeRate:             decimal.RequireFromString(c.String("maker-fee")),
		AsTakerFeeRate:             decimal.RequireFromString(c.String("taker-fee")),
		GasFeeAmount:               decimal.RequireFromString(c.String("gas-fee")),
		HotTokenAmount:             decimal.RequireFromString(c.String("hot")),
		IsMargin:                   c.Bool("margin"),
		Leverage:                   decimal.RequireFromString(c.String("leverage")),
		MarketLiquidationThreshold: decimal.RequireFromString(c.String("threshold")),
	}

	result := calculator.Calculate(req, feerules.DefaultSchedule())

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func syncFeesAction(_ *cli.Context) error {

	logrus.WithField("cmd", "syncfees").Info("Starting syncfees CMD")

	client := feerules.NewClient(feerules.GetConfig())
	schedule, err := client.FetchSchedule(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch fee discount rules")
		return err
	}

	out, err := json.MarshalIndent(schedule, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
