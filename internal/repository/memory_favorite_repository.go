package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/favorite-board/internal/domain"
)

// MemoryFavoriteRepository keeps the history in insertion order.
type MemoryFavoriteRepository struct {
	mu        sync.RWMutex
	favorites []domain.Favorite
	now       func() time.Time
}

// NewMemoryFavoriteRepository creates an empty history.
func NewMemoryFavoriteRepository() *MemoryFavoriteRepository {
	return &MemoryFavoriteRepository{now: time.Now}
}

func (r *MemoryFavoriteRepository) Create(_ context.Context, favorite *domain.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	favorite.ID = int64(len(r.favorites) + 1)
	favorite.CreatedAt = r.now()
	r.favorites = append(r.favorites, *favorite)
	return nil
}

func (r *MemoryFavoriteRepository) List(_ context.Context, limit, offset int) ([]*domain.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Favorite
	if limit <= 0 || offset < 0 {
		return out, nil
	}
	for i := len(r.favorites) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		f := r.favorites[i]
		out = append(out, &f)
	}
	return out, nil
}

func (r *MemoryFavoriteRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.favorites), nil
}

func (r *MemoryFavoriteRepository) StatsByName(_ context.Context) ([]domain.FavoriteNameStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := make(map[string]*domain.FavoriteNameStats)
	var order []string
	for _, f := range r.favorites {
		s, ok := byName[f.Name]
		if !ok {
			s = &domain.FavoriteNameStats{Name: f.Name, FirstCrowned: f.CreatedAt}
			byName[f.Name] = s
			order = append(order, f.Name)
		}
		s.TimesCrowned++
		s.LastCrowned = f.CreatedAt
		s.Reasons = append(s.Reasons, f.Reason)
	}

	stats := make([]domain.FavoriteNameStats, 0, len(order))
	for _, name := range order {
		stats = append(stats, *byName[name])
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].TimesCrowned != stats[j].TimesCrowned {
			return stats[i].TimesCrowned > stats[j].TimesCrowned
		}
		return stats[i].LastCrowned.After(stats[j].LastCrowned)
	})
	return stats, nil
}

func (r *MemoryFavoriteRepository) Facts(_ context.Context) (domain.FavoriteFacts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	facts := domain.FavoriteFacts{TotalCrownings: len(r.favorites)}
	if len(r.favorites) == 0 {
		return facts, nil
	}
	names := make(map[string]struct{})
	for _, f := range r.favorites {
		names[f.Name] = struct{}{}
	}
	facts.UniqueFavorites = len(names)
	facts.FirstEver = r.favorites[0].Name
	facts.Current = r.favorites[len(r.favorites)-1].Name
	return facts, nil
}
