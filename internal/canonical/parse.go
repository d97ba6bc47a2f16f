package canonical

import (
	"encoding/json"
	"fmt"
)

// Parse decodes a canonical (or any structurally equivalent) JSON records
// array back into []Record. It does not require the input to be exactly
// canonical — callers that need to verify a signature re-canonicalize the
// parsed result with Marshal rather than trusting the received bytes.
func Parse(data []byte, maxRecords int) ([]Record, error) {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("canonical: parse records: %w", err)
	}
	if len(records) > maxRecords {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyRecords, len(records), maxRecords)
	}
	return records, nil
}
