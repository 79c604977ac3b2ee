package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/favorite-board/internal/domain"
	"github.com/spec-kit/favorite-board/internal/events"
	"github.com/spec-kit/favorite-board/internal/repository"
)

const (
	recentLimit    = 5
	historyPerPage = 20
)

// FavoriteService manages the announced favorite and its history.
type FavoriteService struct {
	favorites  repository.FavoriteRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// FavoriteDependencies bundles collaborators for the favorite service.
type FavoriteDependencies struct {
	FavoriteRepo repository.FavoriteRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Now          func() time.Time
}

// Overview is the current favorite plus the most recent crownings.
type Overview struct {
	Current *domain.Favorite
	Recent  []*domain.Favorite
}

// HistoryPage is one page of the crowning history with statistics.
type HistoryPage struct {
	Entries    []*domain.Favorite
	Stats      []domain.FavoriteNameStats
	Facts      domain.FavoriteFacts
	Page       int
	TotalPages int
	TotalCount int
	HasPrev    bool
	HasNext    bool
}

// NewFavoriteService constructs the service.
func NewFavoriteService(deps FavoriteDependencies) *FavoriteService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &FavoriteService{
		favorites:  deps.FavoriteRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        now,
	}
}

// SetFavorite records a new crowning and announces it to subscribers. The broadcast
// is best effort: once the favorite is stored the call succeeds.
func (s *FavoriteService) SetFavorite(ctx context.Context, actor domain.Session, name, reason string) (*domain.Favorite, error) {
	if !actor.CanEdit() {
		return nil, ErrForbidden
	}
	name = strings.TrimSpace(name)
	reason = strings.TrimSpace(reason)
	if name == "" || reason == "" {
		return nil, ErrFavoriteIncomplete
	}

	favorite := &domain.Favorite{Name: name, Reason: reason, CrownedBy: actor.Email}
	if err := s.favorites.Create(ctx, favorite); err != nil {
		return nil, storeUnavailable("create favorite", err)
	}

	if s.dispatcher != nil {
		event := events.NewEvent(events.EventFavoriteChanged, actor.Email, s.now(), events.FavoriteChangedPayload{
			FavoriteID: favorite.ID,
			Name:       favorite.Name,
			Reason:     favorite.Reason,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Error("favorite announcement failed", zap.Int64("favorite_id", favorite.ID), zap.Error(err))
		}
	}
	return favorite, nil
}

// Overview returns the current favorite and the last few crownings.
func (s *FavoriteService) Overview(ctx context.Context) (*Overview, error) {
	recent, err := s.favorites.List(ctx, recentLimit, 0)
	if err != nil {
		return nil, storeUnavailable("list favorites", err)
	}
	overview := &Overview{Recent: recent}
	if len(recent) > 0 {
		overview.Current = recent[0]
	}
	return overview, nil
}

// History returns one page of history. Pages start at 1; smaller values are treated as 1
// and pages past the end come back empty.
func (s *FavoriteService) History(ctx context.Context, page int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.favorites.Count(ctx)
	if err != nil {
		return nil, storeUnavailable("count favorites", err)
	}
	totalPages := (total + historyPerPage - 1) / historyPerPage
	var entries []*domain.Favorite
	if page <= totalPages {
		entries, err = s.favorites.List(ctx, historyPerPage, (page-1)*historyPerPage)
		if err != nil {
			return nil, storeUnavailable("list favorites", err)
		}
	}
	stats, err := s.favorites.StatsByName(ctx)
	if err != nil {
		return nil, storeUnavailable("favorite stats", err)
	}
	facts, err := s.favorites.Facts(ctx)
	if err != nil {
		return nil, storeUnavailable("favorite facts", err)
	}

	return &HistoryPage{
		Entries:    entries,
		Stats:      stats,
		Facts:      facts,
		Page:       page,
		TotalPages: totalPages,
		TotalCount: total,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}, nil
}
