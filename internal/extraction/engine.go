// Package extraction turns provider receipt documents into verified
// transaction records. The pipeline is strictly linear: document bytes →
// flattened text → raw field matches → typed values → completeness verdict.
// Every stage is a pure function of its input plus a static per-provider
// ruleset, so the engine is stateless and safe for concurrent use.
package extraction

import "log/slog"

// Engine runs the extraction pipeline for one provider's ruleset.
type Engine struct {
	rules  *Ruleset
	logger *slog.Logger
}

// NewEngine creates an Engine. A nil logger falls back to slog.Default.
func NewEngine(rules *Ruleset, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{rules: rules, logger: logger}
}

// Provider returns the identifier of the ruleset this engine applies.
func (e *Engine) Provider() string {
	return e.rules.Provider
}

// VerifyDocument decodes the document and runs the pipeline over its text.
// Decode failure yields a failed result with no fields; it never returns
// an error to the caller.
func (e *Engine) VerifyDocument(data []byte, contentType string) VerificationResult {
	text, err := DecodeText(data, contentType)
	if err != nil {
		e.logger.Warn("receipt decode failed",
			"provider", e.rules.Provider,
			"content_type", contentType,
			"size", len(data),
			"error", err,
		)
		return VerificationResult{Error: "unable to parse receipt document"}
	}
	e.logger.Info("receipt decoded", "provider", e.rules.Provider, "chars", len(text))
	return e.VerifyText(text)
}

// VerifyText runs the pipeline over already-decoded receipt text. Empty
// text is not special-cased: it simply matches no fields and fails the
// completeness check.
func (e *Engine) VerifyText(text string) VerificationResult {
	normalized := NormalizeText(text)
	e.logger.Info("receipt text normalized", "provider", e.rules.Provider, "chars", len(normalized))

	matches := e.rules.Extract(normalized)
	e.logger.Info("fields extracted", "provider", e.rules.Provider, "matched", countFound(matches))

	values := make(map[string]Value, len(matches))
	for i, match := range matches {
		value, ok := coerceValue(match, e.rules.Rules[i], e.rules.DateFormats)
		if ok {
			values[match.Name] = value
		}
		e.logger.Debug("field extraction attempt",
			"provider", e.rules.Provider,
			"field", match.Name,
			"matched", match.Found,
			"coerced", ok,
		)
	}
	e.logger.Info("fields coerced", "provider", e.rules.Provider, "defined", len(values))

	verdict := validateCompleteness(values, e.rules.Rules)
	if !verdict.Success {
		e.logger.Warn("verification incomplete", "provider", e.rules.Provider, "error", verdict.Error)
	}

	result := assembleResult(values, verdict)
	e.logger.Info("verification verdict",
		"provider", e.rules.Provider,
		"success", result.Success,
		"reference", result.TransactionReference,
	)
	return result
}

func countFound(matches []FieldMatch) int {
	n := 0
	for _, m := range matches {
		if m.Found {
			n++
		}
	}
	return n
}
