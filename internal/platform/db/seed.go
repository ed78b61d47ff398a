package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"skima/internal/domain/auth"
	"skima/internal/platform/config"
)

// Seed makes sure the single system_config row exists. An existing row is
// left alone, so admin_password only takes effect on a fresh database.
func Seed(ctx context.Context, d *DB, cfg config.Config) error {
	store := auth.NewStore(d)
	_, err := store.SystemConfig(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return ensureSystemConfig(ctx, store, cfg.CompanyName, cfg.AdminName, cfg.AdminPassword)
}

func ensureSystemConfig(ctx context.Context, store *auth.Store, companyName, adminName, password string) error {
	hash := ""
	if strings.TrimSpace(password) != "" {
		hashed, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		hash = hashed
	}
	return store.CreateSystemConfig(ctx, companyName, adminName, hash)
}
