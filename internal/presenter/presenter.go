// Package presenter formats raw API responses for display and carries them
// across the response route.
package presenter

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// Fallbacks used when a route segment is missing.
const (
	DefaultTitle = "Response"
	DefaultBody  = "{}"
)

// View is a response ready for display. Raw is kept for copy and share.
type View struct {
	Title  string `json:"title"`
	Raw    string `json:"raw"`
	Pretty string `json:"pretty"`
	IsJSON bool   `json:"is_json"`
}

// NewView builds the display form of raw.
func NewView(title, raw string) View {
	pretty, ok := indent(raw)
	return View{Title: title, Raw: raw, Pretty: pretty, IsJSON: ok}
}

// Pretty indents raw when it is valid JSON and returns it unchanged otherwise.
func Pretty(raw string) string {
	out, _ := indent(raw)
	return out
}

func indent(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return raw, false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(trimmed), "", "  "); err != nil {
		return raw, false
	}
	return buf.String(), true
}

// EncodeRoute returns the path that displays body under title.
func EncodeRoute(title, body string) string {
	return "/responses/" + url.PathEscape(title) + "/" + url.PathEscape(body)
}

// DecodeRoute unescapes route segments. Missing or undecodable segments fall
// back to DefaultTitle and DefaultBody.
func DecodeRoute(titleSegment, bodySegment string) (title, body string) {
	title = decodeSegment(titleSegment, DefaultTitle)
	body = decodeSegment(bodySegment, DefaultBody)
	return title, body
}

func decodeSegment(s, fallback string) string {
	if s == "" {
		return fallback
	}
	v, err := url.PathUnescape(s)
	if err != nil {
		return fallback
	}
	return v
}
