package auth

import (
	"fmt"
	"net/http"
	"strings"

	"smartkanban/internal/repository"
)

// Mode names one of the three access models the server can run under.
type Mode string

const (
	ModeOpen    Mode = "open"
	ModeShared  Mode = "shared"
	ModeAccount Mode = "account"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeOpen, ModeShared, ModeAccount:
		return m, nil
	case "":
		return ModeAccount, nil
	default:
		return "", fmt.Errorf("unknown auth mode %q", s)
	}
}

// Identity is who a request was authenticated as. It is empty in open mode.
type Identity struct {
	UserID string
	Email  string
}

// Strategy authenticates data requests and maps the caller onto a store scope.
type Strategy interface {
	Mode() Mode
	Authenticate(r *http.Request) (Identity, error)
	Scope(id Identity) repository.Scope
}

// AltTokenHeader carries the shared-secret token for clients that cannot
// set Authorization.
const AltTokenHeader = "X-Auth-Token"

// BearerToken extracts the credential from the Authorization header, or from
// X-Auth-Token when allowAlt is set and that header is present.
func BearerToken(r *http.Request, allowAlt bool) (string, error) {
	if allowAlt {
		if token := strings.TrimSpace(r.Header.Get(AltTokenHeader)); token != "" {
			return token, nil
		}
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return "", repository.NewError(repository.ErrUnauthenticated, "Authorization header is required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", repository.NewError(repository.ErrUnauthenticated, "Authorization header format must be Bearer {token}")
	}
	return strings.TrimSpace(parts[1]), nil
}

func invalidToken() error {
	return repository.NewError(repository.ErrUnauthenticated, "Invalid or expired token")
}
