package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ExportFormat represents the receipt file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json" // one object per line
)

// FormatForPath picks JSON lines for .json/.jsonl files and CSV otherwise.
func FormatForPath(path string) ExportFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl":
		return FormatJSON
	default:
		return FormatCSV
	}
}

// Receipt records one transfer run.
type Receipt struct {
	Timestamp    time.Time `json:"timestamp"`
	RunID        string    `json:"run_id"`
	Signature    string    `json:"signature"`
	Sent         bool      `json:"sent"`
	Sender       string    `json:"sender"`
	Receiver     string    `json:"receiver"`
	Mint         string    `json:"mint"`
	Amount       string    `json:"amount"`
	BaseUnits    uint64    `json:"base_units"`
	Decimals     uint8     `json:"decimals"`
	CreatedATA   bool      `json:"created_receiver_ata"`
	ComputeUnits uint32    `json:"compute_units"`
	UnitPrice    uint64    `json:"unit_price_micro_lamports"`
	ExplorerLink string    `json:"explorer_link,omitempty"`
}

// CSVHeaders returns the column names matching Receipt.ToCSV.
func CSVHeaders() []string {
	return []string{
		"timestamp", "run_id", "signature", "sent", "sender", "receiver", "mint",
		"amount", "base_units", "decimals", "created_receiver_ata",
		"compute_units", "unit_price_micro_lamports", "explorer_link",
	}
}

// ToCSV converts the receipt to a CSV row.
func (r Receipt) ToCSV() []string {
	return []string{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.RunID,
		r.Signature,
		strconv.FormatBool(r.Sent),
		r.Sender,
		r.Receiver,
		r.Mint,
		r.Amount,
		strconv.FormatUint(r.BaseUnits, 10),
		strconv.FormatUint(uint64(r.Decimals), 10),
		strconv.FormatBool(r.CreatedATA),
		strconv.FormatUint(uint64(r.ComputeUnits), 10),
		strconv.FormatUint(r.UnitPrice, 10),
		r.ExplorerLink,
	}
}

// ReceiptWriter appends receipts to a file
type ReceiptWriter struct {
	logger *zap.Logger
}

// NewReceiptWriter creates a new receipt writer
func NewReceiptWriter(logger *zap.Logger) *ReceiptWriter {
	return &ReceiptWriter{
		logger: logger.Named("receipt"),
	}
}

// Append adds r to the file at path, creating it (and a CSV header) when missing.
func (w *ReceiptWriter) Append(path string, r Receipt) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create receipt directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open receipt file: %w", err)
	}
	defer file.Close()

	format := FormatForPath(path)
	switch format {
	case FormatCSV:
		err = w.appendCSV(file, r)
	case FormatJSON:
		err = json.NewEncoder(file).Encode(r)
	}
	if err != nil {
		return fmt.Errorf("failed to write receipt: %w", err)
	}

	w.logger.Debug("receipt written",
		zap.String("file", path),
		zap.String("format", string(format)),
		zap.String("signature", r.Signature))
	return nil
}

func (w *ReceiptWriter) appendCSV(file *os.File, r Receipt) error {
	info, err := file.Stat()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := writer.Write(CSVHeaders()); err != nil {
			return err
		}
	}
	if err := writer.Write(r.ToCSV()); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
