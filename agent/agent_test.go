package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"opencourt.dev/availability"
	"opencourt.dev/timefmt"
)

type fakeFinder struct {
	gotCriteria availability.Criteria
	slots       []availability.Slot
	notices     []string
	err         error
}

func (f *fakeFinder) FilterAvailability(_ context.Context, c availability.Criteria) ([]availability.Slot, []string, error) {
	f.gotCriteria = c
	return f.slots, f.notices, f.err
}

func TestCallTool(t *testing.T) {
	ctx := context.Background()

	t.Run("should decode arguments and return a slot payload", func(t *testing.T) {
		finder := &fakeFinder{
			slots: []availability.Slot{{
				Date: "06/21/2025", CityName: "Albany", ParkName: "Memorial Park",
				CourtName: "Tennis Court 1", StartTime: "09:00", EndTime: "11:00",
				Availability: availability.Available,
			}},
			notices: []string{"note"},
		}
		c := &Client{finder: finder}

		args := `{"date":"06/21/2025","city_names":["alb"],"min_start_time":"09:00","min_duration_minutes":60}`
		result, err := c.callTool(ctx, toolName, args)
		if err != nil {
			t.Fatalf("should not fail: %v", err)
		}

		if finder.gotCriteria.Date != "06/21/2025" ||
			len(finder.gotCriteria.CityNames) != 1 || finder.gotCriteria.CityNames[0] != "alb" ||
			finder.gotCriteria.MinStartTime != "09:00" ||
			finder.gotCriteria.MinDurationMinutes != 60 {
			t.Fatalf("criteria not decoded from tool arguments: %+v", finder.gotCriteria)
		}

		var payload struct {
			Slots   []availability.Slot `json:"slots"`
			Notices []string            `json:"notices"`
		}
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			t.Fatalf("tool result should be JSON: %v", err)
		}
		if len(payload.Slots) != 1 || len(payload.Notices) != 1 {
			t.Fatalf("tool result missing slots or notices: %s", result)
		}
	})

	t.Run("should turn validation failures into a relayable message", func(t *testing.T) {
		finder := &fakeFinder{err: fmt.Errorf("wrapped: %w", timefmt.ErrInvalidDateFormat)}
		c := &Client{finder: finder}

		result, err := c.callTool(ctx, toolName, `{"date":"June 21st"}`)
		if err != nil {
			t.Fatalf("validation failures should not error the loop: %v", err)
		}
		if !strings.Contains(result, "message") {
			t.Fatalf("expected a message payload, got %s", result)
		}
	})

	t.Run("should reject unknown tools", func(t *testing.T) {
		c := &Client{finder: &fakeFinder{}}
		if _, err := c.callTool(ctx, "book_court", `{}`); err == nil {
			t.Fatalf("unknown tool names should fail")
		}
	})

	t.Run("should fail on malformed arguments", func(t *testing.T) {
		c := &Client{finder: &fakeFinder{}}
		if _, err := c.callTool(ctx, toolName, `{date:`); err == nil {
			t.Fatalf("malformed arguments should fail")
		}
	})
}

func TestChat(t *testing.T) {
	finder := &fakeFinder{
		slots: []availability.Slot{{
			Date: "06/21/2025", CityName: "Albany", ParkName: "Memorial Park",
			CourtName: "Tennis Court 1", StartTime: "09:00", EndTime: "11:00",
			Availability: availability.Available,
		}},
	}

	// Fake OpenAI-compatible endpoint: first completion asks for the tool,
	// the second answers once the tool result is in the transcript.
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req struct {
			Messages []Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request body should decode: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[{"id":"call_1","type":"function","function":{"name":"filter_court_availability","arguments":"{\"date\":\"06/21/2025\"}"}}]}}]}`)
			return
		}

		// The tool result must have come back on the transcript.
		last := req.Messages[len(req.Messages)-1]
		if last.Role != "tool" || last.ToolCallID != "call_1" || !strings.Contains(last.Content, "09:00") {
			t.Errorf("expected a tool message with the slot payload, got %+v", last)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"Court 1 at Memorial Park is open 09:00-11:00."}}]}`)
	}))
	defer ts.Close()

	c := &Client{
		BaseURL: ts.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		finder:  finder,
		client:  &http.Client{Timeout: 5 * time.Second},
	}

	reply, err := c.Chat(context.Background(), "anything open tomorrow morning?", nil)
	if err != nil {
		t.Fatalf("chat should not fail: %v", err)
	}
	if !strings.Contains(reply, "Memorial Park") {
		t.Fatalf("reply should come from the final completion: %q", reply)
	}
	if calls != 2 {
		t.Fatalf("expected 2 completions, got %d", calls)
	}
	if finder.gotCriteria.Date != "06/21/2025" {
		t.Fatalf("tool call should reach the finder: %+v", finder.gotCriteria)
	}
}

func TestIsConfigured(t *testing.T) {
	var c *Client
	if c.IsConfigured() {
		t.Fatalf("a nil client is not configured")
	}
	if (&Client{}).IsConfigured() {
		t.Fatalf("a client without a key is not configured")
	}
	if !(&Client{APIKey: "k"}).IsConfigured() {
		t.Fatalf("a client with a key is configured")
	}
}
