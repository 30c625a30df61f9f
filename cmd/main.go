// Command invoiceview shows the exchange invoice table with a user name filter
// and per-column sorting, either as a web page or in the terminal.
//
// Usage:
//
//	invoiceview --config config.yaml
//	invoiceview --source csv --csv invoices.csv --ui console
//
// Connection settings may come from the environment (or a .env file):
//
//	SUPABASE_URL, SUPABASE_KEY for the postgrest source
//	DATABASE_URL for the postgres source
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vadiminshakov/invoiceview/config"
	"github.com/vadiminshakov/invoiceview/internal"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	conf, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logConf := zap.NewProductionConfig()
	logConf.Level = zap.NewAtomicLevelAt(conf.LogLevel)
	logConf.OutputPaths = conf.LogOutputPaths()
	logConf.ErrorOutputPaths = conf.LogOutputPaths()
	logger, err := logConf.Build()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	app, err := internal.NewApp(conf, logger)
	if err != nil {
		logger.Fatal("failed to create app", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		logger.Error("app stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
