package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

func batchExists(ctx context.Context, db *sql.DB, id int64) bool {
	var exists bool
	err := db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM payment_batches WHERE id = $1)", id).Scan(&exists)
	return err == nil && exists
}

func fetchBatchWindow(ctx context.Context, db *sql.DB, batchID int64) (int, int, error) {
	const q = `
SELECT page, per_page
FROM payment_batches
WHERE id = $1
LIMIT 1`

	var page sql.NullInt64
	var perPage sql.NullInt64
	err := db.QueryRowContext(ctx, q, batchID).Scan(&page, &perPage)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, 0, err
	}

	pg := normalizePositiveInt(page.Int64, 1)
	pp := normalizePositiveInt(perPage.Int64, 1)
	return pg, pp, nil
}

func fetchPayments(ctx context.Context, db *sql.DB, batchID int64, page, perPage int) ([]PaymentRecord, error) {
	const q = `
SELECT amount, transaction_information
FROM payments
WHERE batch_id = $1
ORDER BY id ASC
LIMIT $2 OFFSET $3`

	limit, offset := windowLimitOffset(page, perPage)
	rows, err := db.QueryContext(ctx, q, batchID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PaymentRecord, 0, limit)
	for rows.Next() {
		var raw []byte
		var info sql.NullString
		if err := rows.Scan(&raw, &info); err != nil {
			return nil, err
		}
		amount, err := amountFromColumn(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, PaymentRecord{Amount: amount, TransactionInformation: info.String})
	}
	return records, rows.Err()
}

// amountFromColumn decodes the jsonb amount column. SQL NULL means the
// payment was stored without an Amount key; JSON null is an explicit null.
func amountFromColumn(raw []byte) (Amount, error) {
	if raw == nil {
		return Amount{}, nil
	}
	var a Amount
	if err := json.Unmarshal(raw, &a); err != nil {
		return Amount{}, fmt.Errorf("decode amount %q: %w", raw, err)
	}
	return a, nil
}

func windowLimitOffset(page, perPage int) (limit, offset int) {
	pp := perPage
	if pp <= 0 {
		pp = 1
	}
	pg := page
	if pg <= 0 {
		pg = 1
	}
	return pp, (pg - 1) * pp
}

func normalizePositiveInt(value int64, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return int(value)
}

func insertAnalysis(ctx context.Context, db *sql.DB, batchID int64, s Summary, records int, durationSeconds, memoryBytes float64) error {
	const q = `
INSERT INTO payment_analyses
  (batch_id, min, max, mean, median, standard_deviation, record_count, duration, memory, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
`
	_, err := db.ExecContext(ctx, q,
		batchID,
		s.Min, s.Max, s.Mean, s.Median, s.StandardDeviation,
		records, durationSeconds, memoryBytes,
	)
	return err
}
