package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

const maxDetails = 10

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior application security analyst evaluating one security check of a web application. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- "success" is true only when the check passes with no vulnerability found.
- "message" is one short sentence suitable for a toast notification.
- "details" is an array of short strings, at most 10 items, each one observation.
- If you cannot observe the application directly, reason conservatively from the check description.

Schema (example with empty values):
{
  "success": false,
  "message": "<string>",
  "details": ["<string>"]
}`
}

// GetUserPrompt builds a compact user message around one check definition.
func GetUserPrompt(def domain.CheckDefinition) string {
	return fmt.Sprintf("Evaluate this security check and respond with the JSON per schema.\nID: %s\nName: %s\nDescription: %s",
		def.ID, def.Name, def.Description)
}

// ParseVerdict decodes a model answer into a Verdict.
// Stray code fences around the object are tolerated.
func ParseVerdict(content string) (domain.Verdict, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Verdict{}, errors.New("empty model response")
	}

	var raw struct {
		Success *bool    `json:"success"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return domain.Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	if raw.Success == nil {
		return domain.Verdict{}, errors.New("verdict missing success field")
	}
	msg := strings.TrimSpace(raw.Message)
	if msg == "" {
		if *raw.Success {
			msg = "Check passed"
		} else {
			msg = "Check failed"
		}
	}

	details := make([]string, 0, len(raw.Details))
	for _, d := range raw.Details {
		if d = strings.TrimSpace(d); d != "" {
			details = append(details, d)
		}
		if len(details) == maxDetails {
			break
		}
	}
	return domain.Verdict{Success: *raw.Success, Message: msg, Details: details}, nil
}
