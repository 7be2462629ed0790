package postgres

import (
	"encoding/json"
	"strings"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// encodeDetails always yields a valid JSON array for the details_json column.
func encodeDetails(details []string) string {
	if details == nil {
		details = []string{}
	}
	b, err := json.Marshal(details)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeDetails(raw string) []string {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	if json.Unmarshal([]byte(raw), &out) != nil {
		// keep unreadable payloads visible instead of dropping them
		return []string{raw}
	}
	return out
}
