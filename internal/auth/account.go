package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"smartkanban/internal/model"
	"smartkanban/internal/repository"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Session is what register, login and refresh hand back: the public user,
// a short-lived access token and the long-lived refresh credential.
type Session struct {
	User         model.PublicUser
	AccessToken  string
	RefreshToken model.RefreshToken
}

// Account gives every registered user a private scope.
type Account struct {
	users      repository.UserRepositoryInterface
	store      repository.StoreInterface
	tokens     *TokenIssuer
	refreshTTL time.Duration
	logger     *log.Logger
	now        func() time.Time
}

var _ Strategy = (*Account)(nil)

func NewAccount(users repository.UserRepositoryInterface, store repository.StoreInterface, tokens *TokenIssuer, refreshTTL time.Duration, logger *log.Logger) *Account {
	if logger == nil {
		logger = log.Default()
	}
	return &Account{
		users:      users,
		store:      store,
		tokens:     tokens.WithAudience(AudienceAccount),
		refreshTTL: refreshTTL,
		logger:     logger,
		now:        time.Now,
	}
}

func (a *Account) Mode() Mode { return ModeAccount }

// RefreshTTL is the lifetime of issued refresh credentials, used for the
// cookie max-age.
func (a *Account) RefreshTTL() time.Duration { return a.refreshTTL }

func (a *Account) Register(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, repository.NewError(repository.ErrValidation, "Email is required")
	}
	if len(password) < minPasswordLength {
		return nil, repository.NewError(repository.ErrValidation, "Password must be at least 6 characters")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    a.now().UTC(),
	}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}

	session, err := a.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if _, err := a.store.EnsureDefaultProject(ctx, repository.Scope{OwnerID: user.ID}); err != nil {
		return nil, err
	}
	a.logger.Info("user registered", "user", user.ID)
	return session, nil
}

func (a *Account) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, repository.NewError(repository.ErrValidation, "Email and password required")
	}

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, repository.NewError(repository.ErrUnauthenticated, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, repository.NewError(repository.ErrUnauthenticated, "Invalid credentials")
	}

	return a.startSession(ctx, user)
}

// Refresh rotates the presented refresh credential. The old one is
// consumed even when the new session cannot be issued.
func (a *Account) Refresh(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, repository.NewError(repository.ErrUnauthenticated, "Missing refresh token")
	}

	user, next, err := a.users.RotateRefreshToken(ctx, token, a.newRefreshToken)
	if err != nil {
		return nil, err
	}
	access, err := a.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{User: user.Public(), AccessToken: access, RefreshToken: *next}, nil
}

// Logout forgets the refresh credential. An empty or unknown token is not
// an error.
func (a *Account) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.users.RevokeRefreshToken(ctx, token)
}

func (a *Account) Authenticate(r *http.Request) (Identity, error) {
	token, err := BearerToken(r, false)
	if err != nil {
		return Identity{}, err
	}
	claims, err := a.tokens.ParseToken(token)
	if err != nil {
		return Identity{}, invalidToken()
	}
	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

func (a *Account) Scope(id Identity) repository.Scope {
	return repository.Scope{OwnerID: id.UserID}
}

func (a *Account) startSession(ctx context.Context, user *model.User) (*Session, error) {
	refresh := a.newRefreshToken(user.ID)
	if err := a.users.AddRefreshToken(ctx, refresh); err != nil {
		return nil, err
	}
	access, err := a.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{User: user.Public(), AccessToken: access, RefreshToken: refresh}, nil
}

func (a *Account) newRefreshToken(userID string) model.RefreshToken {
	return model.RefreshToken{
		Token:     uuid.NewString() + uuid.NewString(),
		UserID:    userID,
		ExpiresAt: a.now().Add(a.refreshTTL).UnixMilli(),
	}
}
