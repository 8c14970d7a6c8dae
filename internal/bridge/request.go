package bridge

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Request is the record sent to the backend for a single call.
type Request struct {
	Actions   []string `json:"actions"`
	Timestamp uint64   `json:"timestamp"`
}

// NewRequest creates a request for the given actions stamped with ts.
// The actions slice is copied so later changes by the caller do not leak in.
func NewRequest(actions []string, ts uint64) Request {
	copied := make([]string, len(actions))
	copy(copied, actions)
	return Request{
		Actions:   copied,
		Timestamp: ts,
	}
}

// Payload renders the request as the text passed to the backend:
//
//	{"actions": ["login", "list"], "timestamp": 1700000000}
//
// Each action is written as a JSON string literal, so actions containing
// quotes or backslashes still produce valid JSON.
func (r Request) Payload() string {
	var b strings.Builder
	b.WriteString(`{"actions": [`)
	for i, action := range r.Actions {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(action))
	}
	b.WriteString(`], "timestamp": `)
	b.WriteString(strconv.FormatUint(r.Timestamp, 10))
	b.WriteString("}")
	return b.String()
}

// quote returns s as a JSON string literal without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string never fails
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
