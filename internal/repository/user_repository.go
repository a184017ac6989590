package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"smartkanban/internal/model"
	"smartkanban/internal/storage"

	"github.com/charmbracelet/log"
)

// UserRepository keeps registered users and their session credentials in
// the accounts snapshot. Unlike Store it serializes its own writes, so two
// requests rotating the same refresh token cannot both succeed.
type UserRepository struct {
	mu       sync.Mutex
	accounts *snapshot[model.Accounts]
	now      func() time.Time
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	AddRefreshToken(ctx context.Context, token model.RefreshToken) error
	RotateRefreshToken(ctx context.Context, token string, issue func(userID string) model.RefreshToken) (*model.User, *model.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

func NewUserRepository(doc storage.Document, logger *log.Logger) *UserRepository {
	if logger == nil {
		logger = log.Default()
	}
	return &UserRepository{
		accounts: &snapshot[model.Accounts]{
			doc:    doc,
			schema: accountsSchema,
			name:   "auth",
			logger: logger,
			fill:   fillAccounts,
		},
		now: time.Now,
	}
}

// Create stores a new user. Emails are compared case-insensitively.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	db, err := r.accounts.load(ctx)
	if err != nil {
		return err
	}
	if findUserByEmail(db, user.Email) >= 0 {
		return NewError(ErrConflict, "Email already in use")
	}
	db.Users = append(db.Users, *user)
	return r.accounts.save(ctx, db)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	db, err := r.accounts.load(ctx)
	if err != nil {
		return nil, err
	}
	i := findUserByEmail(db, email)
	if i < 0 {
		return nil, nil
	}
	user := db.Users[i]
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	db, err := r.accounts.load(ctx)
	if err != nil {
		return nil, err
	}
	i := findUserByID(db, id)
	if i < 0 {
		return nil, nil
	}
	user := db.Users[i]
	return &user, nil
}

// AddRefreshToken stores a new session credential and drops expired ones.
func (r *UserRepository) AddRefreshToken(ctx context.Context, token model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	db, err := r.accounts.load(ctx)
	if err != nil {
		return err
	}
	now := r.now()
	live := db.RefreshTokens[:0]
	for _, t := range db.RefreshTokens {
		if !t.Expired(now) {
			live = append(live, t)
		}
	}
	db.RefreshTokens = append(live, token)
	return r.accounts.save(ctx, db)
}

// RotateRefreshToken exchanges a live session credential for a new one
// minted by issue. An unknown or expired token, or one whose user is gone,
// is purged and reported as ErrUnauthenticated.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, token string, issue func(userID string) model.RefreshToken) (*model.User, *model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	db, err := r.accounts.load(ctx)
	if err != nil {
		return nil, nil, err
	}

	i := findRefreshToken(db, token)
	userIdx := -1
	if i >= 0 && !db.RefreshTokens[i].Expired(r.now()) {
		userIdx = findUserByID(db, db.RefreshTokens[i].UserID)
	}
	if i >= 0 {
		db.RefreshTokens = append(db.RefreshTokens[:i], db.RefreshTokens[i+1:]...)
	}

	if userIdx < 0 {
		if i >= 0 {
			if err := r.accounts.save(ctx, db); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, NewError(ErrUnauthenticated, "Invalid refresh token")
	}

	user := db.Users[userIdx]
	next := issue(user.ID)
	db.RefreshTokens = append(db.RefreshTokens, next)
	if err := r.accounts.save(ctx, db); err != nil {
		return nil, nil, err
	}
	return &user, &next, nil
}

// RevokeRefreshToken deletes a session credential. Unknown tokens are ignored.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	db, err := r.accounts.load(ctx)
	if err != nil {
		return err
	}
	i := findRefreshToken(db, token)
	if i < 0 {
		return nil
	}
	db.RefreshTokens = append(db.RefreshTokens[:i], db.RefreshTokens[i+1:]...)
	return r.accounts.save(ctx, db)
}

func findUserByEmail(db *model.Accounts, email string) int {
	email = strings.TrimSpace(email)
	for i, u := range db.Users {
		if strings.EqualFold(u.Email, email) {
			return i
		}
	}
	return -1
}

func findUserByID(db *model.Accounts, id string) int {
	for i, u := range db.Users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func findRefreshToken(db *model.Accounts, token string) int {
	if token == "" {
		return -1
	}
	for i, t := range db.RefreshTokens {
		if t.Token == token {
			return i
		}
	}
	return -1
}
