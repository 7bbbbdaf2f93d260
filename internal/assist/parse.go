package assist

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// parseFieldsJSON parses the JSON response from a vision model
func parseFieldsJSON(text string) (*Fields, error) {
	// Remove markdown code blocks if present
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	// Extract just the JSON part
	text = text[startIdx : endIdx+1]

	var fields Fields
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	// Normalize the date to ISO 8601. Advisory data must not invent a
	// date: an unparsable one is dropped rather than defaulted.
	if fields.Date != "" {
		formats := []string{
			"2006-01-02",
			"2006/01/02",
			"01/02/2006",
			"1/2/2006",
			"02-01-2006",
		}
		normalized := ""
		for _, format := range formats {
			if d, err := time.Parse(format, fields.Date); err == nil {
				normalized = d.Format("2006-01-02")
				break
			}
		}
		fields.Date = normalized
	}

	fields.Payer = strings.TrimSpace(fields.Payer)
	fields.Receiver = strings.TrimSpace(fields.Receiver)
	fields.Reference = strings.TrimSpace(fields.Reference)

	return &fields, nil
}
