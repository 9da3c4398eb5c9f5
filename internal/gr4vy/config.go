package gr4vy

import (
	"regexp"
	"strings"
	"time"
)

// Server selects the API environment.
type Server string

const (
	ServerSandbox    Server = "sandbox"
	ServerProduction Server = "production"
)

// ParseServer maps a persisted value to a Server. Unknown values select the sandbox.
func ParseServer(s string) Server {
	if Server(strings.ToLower(strings.TrimSpace(s))) == ServerProduction {
		return ServerProduction
	}
	return ServerSandbox
}

// DefaultTimeout applies when Config.Timeout is not positive.
const DefaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	ID         string
	Token      string
	MerchantID string
	Server     Server
	Timeout    time.Duration
	Debug      bool
	// BaseURL replaces the URL derived from ID and Server.
	BaseURL string
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?$`)

func (c Config) validate() *Error {
	if c.ID == "" {
		return invalidIdentifier("gr4vy id is empty")
	}
	if !identifierPattern.MatchString(c.ID) {
		return invalidIdentifier("gr4vy id may only contain letters, digits and hyphens")
	}
	return nil
}

// HostURL returns the API root for id on server.
func HostURL(id string, server Server) string {
	if server == ServerProduction {
		return "https://api." + id + ".gr4vy.app"
	}
	return "https://api.sandbox." + id + ".gr4vy.app"
}
