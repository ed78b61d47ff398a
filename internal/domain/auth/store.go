package auth

import (
	"context"
	"time"

	"skima/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type SystemConfig struct {
	CompanyName       string
	AdminName         string
	AdminPasswordHash string
	IsSetup           bool
}

func (s *Store) SystemConfig(ctx context.Context) (SystemConfig, error) {
	var out SystemConfig
	err := s.DB.QueryRowContext(ctx, s.DB.Rebind(`
    SELECT company_name, admin_name, admin_password_hash, is_setup
    FROM system_config
    WHERE id = 1
  `)).Scan(&out.CompanyName, &out.AdminName, &out.AdminPasswordHash, &out.IsSetup)
	return out, err
}

func (s *Store) CreateSystemConfig(ctx context.Context, companyName, adminName, passwordHash string) error {
	now := time.Now().UTC()
	_, err := s.DB.ExecContext(ctx, s.DB.Rebind(`
    INSERT INTO system_config (id, company_name, admin_name, admin_password_hash, is_setup, created_at, updated_at)
    VALUES (1, ?, ?, ?, ?, ?, ?)
  `), companyName, adminName, passwordHash, true, now, now)
	return err
}
