package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"opencourt.dev/availability"
	"opencourt.dev/timefmt"
)

const toolName = "filter_court_availability"

// availabilityTool is the function declaration sent with every completion
// request. The parameter names match availability.Criteria's JSON tags.
var availabilityTool = map[string]interface{}{
	"type": "function",
	"function": map[string]interface{}{
		"name":        toolName,
		"description": "Find open tennis court time windows for a date, optionally narrowed by city, park, court, time bounds, and minimum duration. Adjacent open slots are merged into single windows.",
		"parameters": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"date": map[string]interface{}{
					"type":        "string",
					"description": "Date in MM/DD/YYYY format, e.g. 06/21/2025.",
				},
				"city_names": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "City names to search; partial names match.",
				},
				"min_start_time": map[string]interface{}{
					"type":        "string",
					"description": "Earliest acceptable start time, HH:MM 24-hour.",
				},
				"max_end_time": map[string]interface{}{
					"type":        "string",
					"description": "Latest acceptable end time, HH:MM 24-hour.",
				},
				"park_name": map[string]interface{}{
					"type":        "string",
					"description": "Park name to filter by; partial names match.",
				},
				"court_name": map[string]interface{}{
					"type":        "string",
					"description": "Court name to filter by; partial names match.",
				},
				"min_duration_minutes": map[string]interface{}{
					"type":        "integer",
					"description": "Minimum length in minutes of a merged open window.",
				},
			},
			"required": []string{"date"},
		},
	},
}

// callTool executes a tool invocation and returns its JSON result. Input
// validation problems are returned as a message payload so the model can
// relay them instead of the request failing.
func (c *Client) callTool(ctx context.Context, name, args string) (string, error) {
	if name != toolName {
		return "", fmt.Errorf("unknown tool %q", name)
	}

	var criteria availability.Criteria
	if err := json.Unmarshal([]byte(args), &criteria); err != nil {
		return "", fmt.Errorf("parse tool arguments: %w", err)
	}

	slots, notices, err := c.finder.FilterAvailability(ctx, criteria)
	if err != nil {
		if errors.Is(err, timefmt.ErrInvalidDateFormat) || errors.Is(err, timefmt.ErrInvalidTimeFormat) {
			return toolJSON(map[string]interface{}{"message": err.Error()}), nil
		}
		return "", err
	}

	result := map[string]interface{}{"slots": slots}
	if len(notices) > 0 {
		result["notices"] = notices
	}
	return toolJSON(result), nil
}

func toolJSON(v interface{}) string {
	payload, err := json.Marshal(v)
	if err != nil {
		return `{"message":"internal error encoding tool result"}`
	}
	return string(payload)
}
