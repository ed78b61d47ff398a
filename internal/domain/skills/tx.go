package skills

import (
	"context"

	"skima/internal/platform/db"
)

// DBTransactor binds a fresh Store to each transaction opened on DB.
type DBTransactor struct {
	DB *db.DB
}

func (t DBTransactor) InTx(ctx context.Context, fn func(StoreAPI) error) error {
	return t.DB.InTx(ctx, func(tx *db.Tx) error {
		return fn(NewStore(tx))
	})
}
