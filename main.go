package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

func main() {
	loadEnvFiles()

	var batchID int64
	var service bool
	var file string
	flag.Int64Var(&batchID, "batch-id", 0, "ID of payment_batches row to analyse (omit to run service)")
	flag.BoolVar(&service, "service", false, "Run as background service listening to the Sidekiq queue")
	flag.StringVar(&file, "file", "", "Analyse a .json, .csv or .xlsx payments file and print the summary")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	cfg, err := loadConfig()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	logrus.SetLevel(cfg.LogLevel)

	if file != "" {
		if err := runFile(file, os.Stdout); err != nil {
			logrus.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn, err := cfg.requireDSN()
	if err != nil {
		logrus.Fatalf("database config error: %v", err)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logrus.Fatalf("connect error: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logrus.Fatalf("database not reachable: %v", err)
	}

	if batchID == 0 && flag.NArg() > 0 {
		if v, err := strconv.ParseInt(flag.Arg(0), 10, 64); err == nil {
			batchID = v
		}
	}

	if service || (batchID == 0 && flag.NArg() == 0) {
		logrus.WithField("queue", cfg.Queue).Info("waiting for payment analysis jobs")
		runService(ctx, cfg, func(ctx context.Context, id int64) error {
			return processBatch(ctx, db, id)
		})
		return
	}

	if batchID == 0 {
		logrus.Fatal("missing --batch-id <id> argument or --service")
	}
	if err := processBatch(ctx, db, batchID); err != nil {
		logrus.Fatal(err)
	}
}
