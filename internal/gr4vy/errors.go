package gr4vy

import "fmt"

// Kind classifies a facade failure.
type Kind string

const (
	KindInvalidIdentifier Kind = "invalid_identifier"
	KindBadURL            Kind = "bad_url"
	KindHTTP              Kind = "http_error"
	KindNetwork           Kind = "network_error"
	KindDecoding          Kind = "decoding_error"
)

// Error is returned by every client operation.
type Error struct {
	Kind Kind
	// Message is the API's error message for KindHTTP, or a description otherwise.
	Message    string
	StatusCode int
	URL        string
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidIdentifier:
		return fmt.Sprintf("invalid gr4vy id: %s", e.Message)
	case KindBadURL:
		return fmt.Sprintf("bad url: %s", e.URL)
	case KindHTTP:
		if e.Message != "" {
			return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("http %d", e.StatusCode)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalidIdentifier(msg string) *Error {
	return &Error{Kind: KindInvalidIdentifier, Message: msg}
}

func badURL(u string, err error) *Error {
	return &Error{Kind: KindBadURL, URL: u, Message: err.Error(), Err: err}
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: err.Error(), Err: err}
}

func decodingError(msg string, err error) *Error {
	return &Error{Kind: KindDecoding, Message: msg, Err: err}
}
