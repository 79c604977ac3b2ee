package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups the stores the services need.
type Repositories struct {
	Principals PrincipalRepository
	Favorites  FavoriteRepository
}

// NewRepositories returns Postgres-backed stores, or in-memory ones when pool is nil.
func NewRepositories(pool *pgxpool.Pool) Repositories {
	if pool == nil {
		return Repositories{
			Principals: NewMemoryPrincipalRepository(),
			Favorites:  NewMemoryFavoriteRepository(),
		}
	}
	return Repositories{
		Principals: NewPrincipalRepository(pool),
		Favorites:  NewFavoriteRepository(pool),
	}
}
