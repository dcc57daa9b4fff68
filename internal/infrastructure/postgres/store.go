package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stockpilot-api/pkg/config"
)

// Store agrupa el pool y los repositorios PostgreSQL.
type Store struct {
	Pool    *pgxpool.Pool
	Lots    *LotRepo
	Catalog *CatalogRepo
	Users   *UserRepo
}

// Open conecta, asegura el esquema y construye los repositorios.
func Open(ctx context.Context, cfg config.DBConfig) (*Store, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{
		Pool:    pool,
		Lots:    NewLotRepository(pool),
		Catalog: NewCatalogRepository(pool),
		Users:   NewUserRepository(pool),
	}, nil
}

// Close libera el pool.
func (s *Store) Close() {
	s.Pool.Close()
}
