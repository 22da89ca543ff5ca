// internal/service/xilnex/result.go
package xilnex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the outcome of one upstream operation. Failures carry the upstream
// message, status code and body so callers can decide what to persist.
type Result struct {
	Success    bool            `json:"success"`
	Skipped    bool            `json:"skipped,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	ClientID   string          `json:"xilnexClientId,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	StatusCode int             `json:"statusCode,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
}

// Failed is true for a real failure; a skipped sync is not a failure.
func (r *Result) Failed() bool {
	return r != nil && !r.Success && !r.Skipped
}

func skipped() *Result {
	return &Result{Success: true, Skipped: true, Reason: "Integration disabled"}
}

func failure(msg string, status int, body []byte) *Result {
	return &Result{
		Success:    false,
		Error:      msg,
		StatusCode: status,
		Details:    rawJSON(body),
	}
}

// rawJSON keeps valid JSON bodies as-is and quotes anything else so the Result
// always marshals.
func rawJSON(body []byte) json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return json.RawMessage(quoted)
}

func upstreamMessage(body []byte, status int) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if msg := strings.TrimSpace(envelope.Message); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("request failed with status code %d", status)
}

// extractClientID reads the new id from `id` or `client.id`, string or number.
func extractClientID(data json.RawMessage) string {
	var body struct {
		ID     json.RawMessage `json:"id"`
		Client struct {
			ID json.RawMessage `json:"id"`
		} `json:"client"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if id := scalarString(body.ID); id != "" {
		return id
	}
	return scalarString(body.Client.ID)
}

func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if n.String() == "0" {
			return ""
		}
		return n.String()
	}
	return ""
}
