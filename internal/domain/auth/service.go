package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrPasswordRequired = errors.New("password required")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrNotConfigured    = errors.New("system not configured")
)

type StoreAPI interface {
	SystemConfig(ctx context.Context) (SystemConfig, error)
}

type Service struct {
	store  StoreAPI
	secret string
	ttl    time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{store: store, secret: secret, ttl: ttl}
}

func (s *Service) Secret() string {
	return s.secret
}

// Login checks the admin password and issues a signed token.
func (s *Service) Login(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrPasswordRequired
	}
	cfg, err := s.store.SystemConfig(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotConfigured
	}
	if err != nil {
		return "", err
	}
	if cfg.AdminPasswordHash == "" {
		return "", ErrNotConfigured
	}
	if err := CheckPassword(cfg.AdminPasswordHash, password); err != nil {
		return "", ErrInvalidPassword
	}
	return GenerateToken(s.secret, Claims{
		Role:      RoleAdmin,
		LoginTime: time.Now().UTC().Format(time.RFC3339),
	}, s.ttl)
}

func (s *Service) Verify(token string) (*Claims, error) {
	return ParseToken(s.secret, token)
}
