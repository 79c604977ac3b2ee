package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/favorite-board/internal/domain"
)

// FavoriteRepository persists the crowning history.
type FavoriteRepository interface {
	Create(ctx context.Context, favorite *domain.Favorite) error
	// List returns favorites newest first.
	List(ctx context.Context, limit, offset int) ([]*domain.Favorite, error)
	Count(ctx context.Context) (int, error)
	StatsByName(ctx context.Context) ([]domain.FavoriteNameStats, error)
	Facts(ctx context.Context) (domain.FavoriteFacts, error)
}

type favoriteRepository struct {
	pool *pgxpool.Pool
}

// NewFavoriteRepository returns a Postgres-backed implementation.
func NewFavoriteRepository(pool *pgxpool.Pool) FavoriteRepository {
	return &favoriteRepository{pool: pool}
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *domain.Favorite) error {
	const query = `
        INSERT INTO favorites (name, reason, crowned_by)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		favorite.Name,
		favorite.Reason,
		favorite.CrownedBy,
	).Scan(&favorite.ID, &favorite.CreatedAt)
}

func (r *favoriteRepository) List(ctx context.Context, limit, offset int) ([]*domain.Favorite, error) {
	const query = `
        SELECT id, name, reason, crowned_by, created_at
        FROM favorites
        ORDER BY created_at DESC, id DESC
        LIMIT $1 OFFSET $2`

	if limit <= 0 || offset < 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favorites []*domain.Favorite
	for rows.Next() {
		var f domain.Favorite
		if err := rows.Scan(&f.ID, &f.Name, &f.Reason, &f.CrownedBy, &f.CreatedAt); err != nil {
			return nil, err
		}
		favorites = append(favorites, &f)
	}
	return favorites, rows.Err()
}

func (r *favoriteRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM favorites`).Scan(&total)
	return total, err
}

func (r *favoriteRepository) StatsByName(ctx context.Context) ([]domain.FavoriteNameStats, error) {
	const query = `
        SELECT name, COUNT(*), MIN(created_at), MAX(created_at),
               STRING_AGG(reason, '|' ORDER BY created_at)
        FROM favorites
        GROUP BY name
        ORDER BY COUNT(*) DESC, MAX(created_at) DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.FavoriteNameStats
	for rows.Next() {
		var (
			s       domain.FavoriteNameStats
			reasons string
		)
		if err := rows.Scan(&s.Name, &s.TimesCrowned, &s.FirstCrowned, &s.LastCrowned, &reasons); err != nil {
			return nil, err
		}
		s.Reasons = strings.Split(reasons, "|")
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *favoriteRepository) Facts(ctx context.Context) (domain.FavoriteFacts, error) {
	const query = `
        SELECT
            (SELECT COUNT(DISTINCT name) FROM favorites),
            (SELECT COUNT(*) FROM favorites),
            COALESCE((SELECT name FROM favorites ORDER BY created_at ASC, id ASC LIMIT 1), ''),
            COALESCE((SELECT name FROM favorites ORDER BY created_at DESC, id DESC LIMIT 1), '')`

	var facts domain.FavoriteFacts
	err := r.pool.QueryRow(ctx, query).Scan(
		&facts.UniqueFavorites,
		&facts.TotalCrownings,
		&facts.FirstEver,
		&facts.Current,
	)
	return facts, err
}
