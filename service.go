package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

type jobHandler func(ctx context.Context, batchID int64) error

func processBatch(ctx context.Context, db *sql.DB, batchID int64) error {
	if !batchExists(ctx, db, batchID) {
		return fmt.Errorf("payment_batches id %d not found", batchID)
	}
	page, perPage, err := fetchBatchWindow(ctx, db, batchID)
	if err != nil {
		return fmt.Errorf("fetch batch window failed: %w", err)
	}
	records, err := fetchPayments(ctx, db, batchID, page, perPage)
	if err != nil {
		return fmt.Errorf("fetch payments failed: %w", err)
	}

	start := time.Now()
	summary, peak := measurePeakMemory(func() Summary { return analysePayments(records) })
	elapsed := time.Since(start)

	if err := insertAnalysis(ctx, db, batchID, summary, len(records), elapsed.Seconds(), peak); err != nil {
		return fmt.Errorf("insert payment_analysis failed: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"batch_id": batchID,
		"records":  len(records),
		"duration": elapsed,
		"memory":   humanize.Bytes(uint64(peak)),
	}).Info("processed payment batch")
	return nil
}

// runFile analyses a payments file and writes the summary to w as JSON.
func runFile(path string, w io.Writer) error {
	records, err := loadPayments(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	summary := analysePayments(records)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"file":    path,
		"records": len(records),
		"amounts": len(sanitizeAmounts(records)),
	}).Debug("analysed payments file")
	return nil
}

// runService consumes batch ids from the Redis queue until ctx is done,
// reconnecting whenever the connection drops.
func runService(ctx context.Context, cfg Config, handle jobHandler) {
	dialer := net.Dialer{Timeout: 5 * time.Second}
	for ctx.Err() == nil {
		conn, err := dialer.DialContext(ctx, "tcp", cfg.Redis.Addr)
		if err != nil {
			logrus.WithError(err).Warn("redis connect failed; retrying in 2s")
			sleepContext(ctx, 2*time.Second)
			continue
		}
		stop := context.AfterFunc(ctx, func() { conn.Close() })
		err = serveQueue(ctx, conn, cfg, handle)
		stop()
		conn.Close()
		if ctx.Err() != nil {
			return
		}
		logrus.WithError(err).Warn("redis connection lost; reconnecting")
		sleepContext(ctx, 1*time.Second)
	}
}

// serveQueue authenticates on conn and pops jobs until ctx is done or the
// connection fails. Bad payloads and failed jobs are logged and skipped.
func serveQueue(ctx context.Context, conn net.Conn, cfg Config, handle jobHandler) error {
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	if cfg.Redis.Password != "" {
		if err := writeCommand(w, "AUTH", cfg.Redis.Password); err != nil {
			return err
		}
		if err := readOK(r); err != nil {
			return fmt.Errorf("redis auth failed: %w", err)
		}
	}
	if cfg.Redis.DB != 0 {
		if err := writeCommand(w, "SELECT", strconv.Itoa(cfg.Redis.DB)); err != nil {
			return err
		}
		if err := readOK(r); err != nil {
			return fmt.Errorf("redis select failed: %w", err)
		}
	}

	for ctx.Err() == nil {
		if err := writeCommand(w, "BRPOP", cfg.Queue, "5"); err != nil {
			return fmt.Errorf("redis write error: %w", err)
		}
		key, payload, err := readBRPOP(r)
		if err != nil {
			return fmt.Errorf("redis read error: %w", err)
		}
		if key == "" && payload == "" {
			continue // timeout
		}
		batchID, err := decodeJob(payload)
		if err != nil {
			logrus.WithError(err).Warn("ignoring queue payload")
			continue
		}
		if err := handle(ctx, batchID); err != nil && !errors.Is(err, context.Canceled) {
			logrus.WithError(err).WithField("batch_id", batchID).Error("process error")
		}
	}
	return ctx.Err()
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
