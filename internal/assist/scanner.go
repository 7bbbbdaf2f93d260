// Package assist offers a second opinion on receipts the pattern engine
// could not verify. A Scanner sends the rendered document to a vision
// model and parses a small field set from the reply. Assist output is
// advisory: it is recorded for manual review and never upgrades a failed
// verification.
package assist

// Fields contains the advisory values a scanner read from a receipt.
type Fields struct {
	Payer     string  `json:"payer"`
	Receiver  string  `json:"receiver"`
	Reference string  `json:"reference"`
	Date      string  `json:"date"` // ISO 8601 format
	Amount    float64 `json:"amount"`
}

// Scanner defines the interface for assist scanning operations
type Scanner interface {
	// ScanReceipt analyzes a receipt document and extracts advisory fields
	ScanReceipt(documentData []byte, contentType string) (*Fields, error)
	// Close closes the scanner and releases resources
	Close() error
}
