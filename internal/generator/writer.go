package generator

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/vanshika/fraudsight/internal/ingest"
)

// WriteCSV serializes the ledger in the format the ingest layer accepts.
func WriteCSV(dataset Dataset, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"transaction_id", "sender_id", "receiver_id", "amount", "timestamp"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tx := range dataset.Transactions {
		record := []string{
			tx.ID,
			tx.SenderID,
			tx.ReceiverID,
			tx.Amount.StringFixed(2),
			tx.Timestamp.Format(ingest.TimestampLayout),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write transaction %s: %w", tx.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
