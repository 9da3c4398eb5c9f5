package checkout

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"gr4vydemo/internal/gr4vy"
)

var dnsFailurePhrases = []string{"Cannot resolve host", "Unable to resolve host"}

const noAddressPhrase = "No address associated with hostname"

// Classify turns an action failure into the message shown to the user.
func Classify(err error, action Action, gr4vyID string) string {
	var gerr *gr4vy.Error
	if !errors.As(err, &gerr) {
		msg := "Unknown error"
		if err != nil && err.Error() != "" {
			msg = err.Error()
		}
		return fmt.Sprintf("Failed to %s: %s", action.Verb(), msg)
	}

	switch gerr.Kind {
	case gr4vy.KindInvalidIdentifier:
		return "Invalid Gr4vy ID: " + gerr.Message
	case gr4vy.KindBadURL:
		return "Bad URL: " + gerr.URL
	case gr4vy.KindHTTP:
		return fmt.Sprintf("HTTP Error %d: %s", gerr.StatusCode, httpMessage(gerr))
	case gr4vy.KindNetwork:
		return classifyNetwork(gerr, action, gr4vyID)
	case gr4vy.KindDecoding:
		return "Decoding error: " + gerr.Message
	default:
		return fmt.Sprintf("Failed to %s: %s", action.Verb(), gerr.Error())
	}
}

func httpMessage(e *gr4vy.Error) string {
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return e.Error()
}

func classifyNetwork(e *gr4vy.Error, action Action, gr4vyID string) string {
	msg := e.Message

	switch {
	case isDNSFailure(e, msg):
		out := fmt.Sprintf("Cannot find server. Please check your Gr4vy ID (%s)", gr4vyID)
		if path := actionInfos[action].path; path != "" {
			out += fmt.Sprintf(". The URL being called is: https://api.%s.gr4vy.app/%s", gr4vyID, path)
		}
		return out
	case isTimeout(e, msg):
		return "Request timed out. Please try again."
	case strings.Contains(msg, noAddressPhrase):
		return fmt.Sprintf("Cannot find server. Please check your Gr4vy ID (%s)", gr4vyID)
	default:
		return "Network error: " + msg
	}
}

func isDNSFailure(err error, msg string) bool {
	for _, p := range dnsFailurePhrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}

func isTimeout(err error, msg string) bool {
	if strings.Contains(msg, "timeout") {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
