package verification

import (
	"time"

	"github.com/nibret/receipt-verifier/internal/assist"
	"github.com/nibret/receipt-verifier/internal/extraction"
)

// Record is one audit entry: a verification request, its outcome, and
// where the fetched document was archived. Assist fields, when present,
// are a vision model's advisory reading of a receipt the pattern engine
// rejected; they never alter the verdict.
type Record struct {
	ID           string                        `json:"id"`
	Provider     string                        `json:"provider"`
	Reference    string                        `json:"reference"`
	Result       extraction.VerificationResult `json:"result"`
	AssistFields *assist.Fields                `json:"assist_fields,omitempty"`
	DocumentPath string                        `json:"document_path,omitempty"`
	ContentType  string                        `json:"content_type,omitempty"`
	CreatedAt    time.Time                     `json:"created_at"`
}
