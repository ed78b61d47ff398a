package evolution

import (
	"context"

	"skima/internal/domain/skills"
	"skima/internal/platform/db"
)

type Store struct {
	DB *db.DB
}

func NewStore(conn *db.DB) *Store {
	return &Store{DB: conn}
}

// ReadSnapshot runs fn inside a read-only transaction that is released
// whether fn succeeds or not.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(Reader) error) error {
	return s.DB.ReadOnly(ctx, func(tx *db.Tx) error {
		return fn(skills.NewStore(tx))
	})
}
