package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"smartkanban/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// SharedSecret guards the global scope with one configured username and
// password. A successful login yields a signed token that clients treat as
// opaque.
type SharedSecret struct {
	username     string
	passwordHash []byte
	tokens       *TokenIssuer
}

var _ Strategy = (*SharedSecret)(nil)

func NewSharedSecret(username, passwordHash string, tokens *TokenIssuer) *SharedSecret {
	return &SharedSecret{
		username:     username,
		passwordHash: []byte(passwordHash),
		tokens:       tokens.WithAudience(AudienceShared),
	}
}

// HashPassword bcrypt-hashes a plain password for the shared-secret and
// account models.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *SharedSecret) Mode() Mode { return ModeShared }

func (s *SharedSecret) Login(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", repository.NewError(repository.ErrValidation, "Username and password required")
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
	if !userOK || !passOK {
		return "", repository.NewError(repository.ErrUnauthenticated, "Invalid credentials")
	}

	return s.tokens.GenerateToken(s.username, "")
}

func (s *SharedSecret) Authenticate(r *http.Request) (Identity, error) {
	token, err := BearerToken(r, true)
	if err != nil {
		return Identity{}, err
	}
	claims, err := s.tokens.ParseToken(token)
	if err != nil || claims.Subject != s.username {
		return Identity{}, invalidToken()
	}
	return Identity{UserID: claims.Subject}, nil
}

// Scope is always global; the shared secret only gates access.
func (s *SharedSecret) Scope(Identity) repository.Scope {
	return repository.Scope{}
}
