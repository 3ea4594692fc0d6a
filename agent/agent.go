// Package agent runs the conversational layer: an LLM with access to the
// court availability tool answers booking questions in natural language.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"opencourt.dev/availability"
	"opencourt.dev/timefmt"
)

// Finder is the slice of the availability service the agent needs.
type Finder interface {
	FilterAvailability(ctx context.Context, c availability.Criteria) ([]availability.Slot, []string, error)
}

// Client talks to an OpenAI-compatible chat completions endpoint. Setting
// OPENAI_BASE_URL points it at any compatible server (Ollama included).
type Client struct {
	BaseURL string
	APIKey  string
	Model   string

	finder Finder
	client *http.Client
}

// New creates a client from the environment, or nil when no API key is set.
func New(finder Finder) *Client {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil
	}
	return &Client{
		BaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		APIKey:  key,
		Model:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		finder:  finder,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// IsConfigured returns true if the agent can take chat requests.
func (c *Client) IsConfigured() bool {
	return c != nil && c.APIKey != ""
}

// Message is one turn of a conversation, including tool traffic.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// maxToolRounds bounds how many times one user message may invoke tools.
const maxToolRounds = 4

// Chat sends a user message with prior history and returns the model's
// reply, executing availability tool calls along the way.
func (c *Client) Chat(ctx context.Context, userMessage string, history []Message) (string, error) {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: systemPrompt(time.Now())})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: userMessage})

	for round := 0; round < maxToolRounds; round++ {
		reply, err := c.complete(ctx, messages)
		if err != nil {
			return "", err
		}
		if len(reply.ToolCalls) == 0 {
			return reply.Content, nil
		}

		messages = append(messages, *reply)
		for _, call := range reply.ToolCalls {
			result, err := c.callTool(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				return "", err
			}
			messages = append(messages, Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}
	return "", fmt.Errorf("no final reply after %d tool rounds", maxToolRounds)
}

func (c *Client) complete(ctx context.Context, messages []Message) (*Message, error) {
	reqBody := map[string]interface{}{
		"model":    c.Model,
		"messages": messages,
		"tools":    []map[string]interface{}{availabilityTool},
	}

	jsonBody, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("chat API error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	return &result.Choices[0].Message, nil
}

func systemPrompt(now time.Time) string {
	return fmt.Sprintf(`You are a helpful tennis court booking assistant for the East Bay.

Your goal is to help users:
 - find available courts for a given date and time window
 - answer questions about court availability by city, park, or court

Use the filter_court_availability tool to look up open slots. Guidelines:
1. Extract the user's preferences (date, time window, duration, city, park, or court name).
2. If the user gives no date, assume today. If they don't say how long, assume 1 hour.
3. Convert all times to 24-hour HH:MM before passing them to tools ("5 PM" becomes "17:00").
4. Present results grouped by city, then park, then court, listing each court's open windows.
5. If nothing matches after filtering, politely say no availability was found.
6. If the tool returns notices, relay them to the user directly.
7. Figure out what "this friday" or "this sunday" means from the current date.

Current date: %s. Current location: Albany, California, United States.
Be conversational and concise.`, now.Format(timefmt.DateLayout))
}
