package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rogomes75/ROG-Report-V9/internal/repository"
)

// New wires the pgx repositories into a Store that owns pool.
func New(pool *pgxpool.Pool) repository.Store {
	return repository.Store{
		Users:   NewUserRepo(pool),
		Clients: NewClientRepo(pool),
		Reports: NewReportRepo(pool),
		Ping:    pool.Ping,
		Close:   pool.Close,
	}
}
