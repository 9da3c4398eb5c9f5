package checkout

import (
	"math"
	"strconv"
	"strings"
	"time"

	"gr4vydemo/internal/gr4vy"
	"gr4vydemo/internal/settings"
)

// Credentials are the trimmed admin settings an action runs with.
type Credentials struct {
	Gr4vyID    string
	Token      string
	MerchantID string
	Server     gr4vy.Server
	Timeout    time.Duration
}

// CredentialsFrom reads credentials out of an admin snapshot.
func CredentialsFrom(a settings.Admin) Credentials {
	return Credentials{
		Gr4vyID:    strings.TrimSpace(a.Gr4vyID),
		Token:      strings.TrimSpace(a.APIToken),
		MerchantID: strings.TrimSpace(a.MerchantID),
		Server:     gr4vy.ParseServer(a.Environment),
		Timeout:    ParseTimeout(a.Timeout),
	}
}

// ParseTimeout reads s as seconds. Blank, unparsable and non-positive values
// yield zero, which leaves the client default in place.
func ParseTimeout(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs <= 0 || math.IsInf(secs, 0) || math.IsNaN(secs) {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// Validate reports missing credentials.
func (c Credentials) Validate() error {
	if c.Gr4vyID == "" {
		return missingConfig("gr4vy_id", "Please configure Gr4vy ID in Admin settings")
	}
	if c.Token == "" {
		return missingConfig("api_token", "Please configure API Token in Admin settings")
	}
	return nil
}

// ClientConfig returns the facade configuration for c.
func (c Credentials) ClientConfig() gr4vy.Config {
	return gr4vy.Config{
		ID:         c.Gr4vyID,
		Token:      c.Token,
		MerchantID: c.MerchantID,
		Server:     c.Server,
		Timeout:    c.Timeout,
		Debug:      true,
	}
}
