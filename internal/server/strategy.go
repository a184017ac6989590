package server

import (
	"errors"

	"smartkanban/internal/auth"
	"smartkanban/internal/config"
	"smartkanban/internal/repository"

	"github.com/charmbracelet/log"
)

func newStrategy(cfg *config.Config, store repository.StoreInterface, users repository.UserRepositoryInterface, logger *log.Logger) (auth.Strategy, error) {
	mode, err := auth.ParseMode(cfg.AuthMode)
	if err != nil {
		return nil, err
	}
	if mode != auth.ModeOpen && cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("⚠️  JWT_SECRET is not set. Using insecure default. Set JWT_SECRET in .env")
	}

	switch mode {
	case auth.ModeOpen:
		logger.Warn("⚠️  AUTH_MODE=open: the API is reachable without credentials")
		return auth.Open{}, nil
	case auth.ModeShared:
		hash := cfg.SharedPasswordHash
		if hash == "" {
			if cfg.SharedPassword == "" {
				return nil, errors.New("shared auth mode needs SHARED_PASSWORD_HASH or SHARED_PASSWORD")
			}
			if hash, err = auth.HashPassword(cfg.SharedPassword); err != nil {
				return nil, err
			}
		}
		if cfg.SharedUsername == "" {
			return nil, errors.New("shared auth mode needs SHARED_USERNAME")
		}
		tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SharedTokenTTL)
		return auth.NewSharedSecret(cfg.SharedUsername, hash, tokens), nil
	default:
		tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
		return auth.NewAccount(users, store, tokens, cfg.RefreshTokenTTL, logger.WithPrefix("auth")), nil
	}
}
