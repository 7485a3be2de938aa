package sessions

import (
	"time"

	"golang.org/x/oauth2"
)

// Identity is who the provider says logged in. Only filled when the token response
// carried an id_token.
type Identity struct {
	Subject string
	Email   string
}

// Credentials is the token bundle obtained from the authorization-code exchange.
type Credentials struct {
	Token      *oauth2.Token // Access token, optional refresh token, expiry
	Identity   Identity
	ObtainedAt time.Time // When the exchange that produced the token completed
}

// Label is a log friendly name for the credential owner.
func (c Credentials) Label() string {
	switch {
	case c.Identity.Email != "":
		return c.Identity.Email
	case c.Identity.Subject != "":
		return c.Identity.Subject
	default:
		return "unknown"
	}
}
