package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	amountHeader      = "amount"
	transactionHeader = "transactioninformation"
)

// loadPayments reads payment records from a .json, .csv or .xlsx file.
func loadPayments(path string) ([]PaymentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return decodePaymentsJSON(f)
	case ".csv":
		return decodePaymentsCSV(f)
	case ".xlsx":
		return decodePaymentsExcel(f)
	default:
		return nil, fmt.Errorf("unsupported payments file type %q", ext)
	}
}

func decodePaymentsJSON(r io.Reader) ([]PaymentRecord, error) {
	var records []PaymentRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode payments json: %w", err)
	}
	return records, nil
}

func decodePaymentsCSV(r io.Reader) ([]PaymentRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read payments csv: %w", err)
	}
	return paymentsFromRows(rows)
}

func decodePaymentsExcel(r io.Reader) ([]PaymentRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open payments workbook: %w", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("payments workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return paymentsFromRows(rows)
}

// paymentsFromRows maps a header row plus data rows to records. Without an
// Amount column every record is missing its amount; a row that stops short of
// the Amount column has an empty amount.
func paymentsFromRows(rows [][]string) ([]PaymentRecord, error) {
	if len(rows) == 0 {
		return nil, errors.New("no header row")
	}
	amountCol, infoCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case amountHeader:
			amountCol = i
		case transactionHeader:
			infoCol = i
		}
	}

	records := make([]PaymentRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var r PaymentRecord
		if amountCol >= 0 {
			r.Amount = stringAmount(cell(row, amountCol))
		}
		if infoCol >= 0 {
			r.TransactionInformation = cell(row, infoCol)
		}
		records = append(records, r)
	}
	return records, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
