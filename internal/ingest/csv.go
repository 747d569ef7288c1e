// Package ingest parses and validates uploaded transaction CSVs into the
// engine's input contract. The engine downstream treats the result as a
// precondition and does not re-validate.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/fraudsight/internal/domain"
)

// TimestampLayout is the accepted wall-clock format for the timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

var requiredColumns = []string{"transaction_id", "sender_id", "receiver_id", "amount", "timestamp"}

var (
	ErrEmptyInput     = errors.New("input contains no transactions")
	ErrMissingColumns = errors.New("missing required columns")
	ErrBadAmount      = errors.New("amount must be a non-negative number")
	ErrBadTimestamp   = errors.New("timestamp must match " + TimestampLayout)
	ErrMissingField   = errors.New("required field is empty")
)

// ParseCSV reads the full transaction stream, validating every row. Columns
// beyond the required five are tolerated and ignored; any malformed row
// fails the whole upload with its line number.
func ParseCSV(r io.Reader) ([]domain.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var txs []domain.Transaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		tx, err := parseRow(record, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}

	if len(txs) == 0 {
		return nil, ErrEmptyInput
	}
	return txs, nil
}

type columnMap struct {
	txID, sender, receiver, amount, timestamp int
}

func resolveColumns(header []string) (columnMap, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := positions[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return columnMap{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return columnMap{
		txID:      positions["transaction_id"],
		sender:    positions["sender_id"],
		receiver:  positions["receiver_id"],
		amount:    positions["amount"],
		timestamp: positions["timestamp"],
	}, nil
}

func parseRow(record []string, columns columnMap) (domain.Transaction, error) {
	field := func(idx int) string {
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	tx := domain.Transaction{
		ID:         field(columns.txID),
		SenderID:   field(columns.sender),
		ReceiverID: field(columns.receiver),
	}
	if tx.ID == "" || tx.SenderID == "" || tx.ReceiverID == "" {
		return domain.Transaction{}, ErrMissingField
	}

	amount, err := decimal.NewFromString(field(columns.amount))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: %q", ErrBadAmount, field(columns.amount))
	}
	if amount.IsNegative() {
		return domain.Transaction{}, fmt.Errorf("%w: %s", ErrBadAmount, amount)
	}
	tx.Amount = amount

	ts, err := time.Parse(TimestampLayout, field(columns.timestamp))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: %q", ErrBadTimestamp, field(columns.timestamp))
	}
	tx.Timestamp = ts.UTC()

	return tx, nil
}
