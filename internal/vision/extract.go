package vision

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractResult parses a model response into a Result, tolerating the
// markdown code fences models wrap JSON in. A ```json fence wins over
// a bare ``` fence; unfenced text is parsed as-is.
func extractResult(text string) (*Result, error) {
	payload := stripFences(text)

	var res Result
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	if res.PestName == "" {
		return nil, fmt.Errorf("model response missing pest_name")
	}
	if res.LifecycleStage == "" {
		res.LifecycleStage = "Unknown"
	}
	if res.UrgencyLevel == "" {
		res.UrgencyLevel = "Medium"
	}
	return &res, nil
}

func stripFences(text string) string {
	if _, after, ok := strings.Cut(text, "```json"); ok {
		if body, _, ok := strings.Cut(after, "```"); ok {
			return strings.TrimSpace(body)
		}
		return strings.TrimSpace(after)
	}
	if _, after, ok := strings.Cut(text, "```"); ok {
		if body, _, ok := strings.Cut(after, "```"); ok {
			return strings.TrimSpace(body)
		}
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(text)
}
