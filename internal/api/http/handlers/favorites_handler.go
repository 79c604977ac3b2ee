package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/favorite-board/internal/api/dto"
	"github.com/spec-kit/favorite-board/internal/auth"
	"github.com/spec-kit/favorite-board/internal/domain"
	"github.com/spec-kit/favorite-board/internal/service"
	apperrors "github.com/spec-kit/favorite-board/pkg/util"
)

// FavoritesHandler serves the board and lets editors crown a new favorite.
type FavoritesHandler struct {
	service *service.FavoriteService
}

// NewFavoritesHandler constructs handler.
func NewFavoritesHandler(favorites *service.FavoriteService) *FavoritesHandler {
	return &FavoritesHandler{service: favorites}
}

// Overview GET /favorite.
func (h *FavoritesHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.service.Overview(c.UserContext())
	if err != nil {
		return toHTTPError(err)
	}
	resp := dto.OverviewResponse{Recent: favoriteList(overview.Recent)}
	if overview.Current != nil {
		current := favoriteResponse(overview.Current)
		resp.Current = &current
	}
	return c.JSON(fiber.Map{"data": resp})
}

// History GET /history?page=N.
func (h *FavoritesHandler) History(c *fiber.Ctx) error {
	page, err := h.service.History(c.UserContext(), c.QueryInt("page", 1))
	if err != nil {
		return toHTTPError(err)
	}

	stats := make([]dto.NameStatsResponse, 0, len(page.Stats))
	for _, s := range page.Stats {
		stats = append(stats, dto.NameStatsResponse{
			Name:         s.Name,
			TimesCrowned: s.TimesCrowned,
			FirstCrowned: s.FirstCrowned,
			LastCrowned:  s.LastCrowned,
			Reasons:      s.Reasons,
		})
	}
	return c.JSON(fiber.Map{"data": dto.HistoryResponse{
		Entries: favoriteList(page.Entries),
		Stats:   stats,
		Facts: dto.FactsResponse{
			UniqueFavorites: page.Facts.UniqueFavorites,
			TotalCrownings:  page.Facts.TotalCrownings,
			FirstEver:       page.Facts.FirstEver,
			Current:         page.Facts.Current,
		},
		Pagination: dto.Pagination{
			Page:       page.Page,
			TotalPages: page.TotalPages,
			TotalCount: page.TotalCount,
			HasPrev:    page.HasPrev,
			HasNext:    page.HasNext,
		},
	}})
}

// SetFavorite POST /admin/favorite.
func (h *FavoritesHandler) SetFavorite(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	var req dto.SetFavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	favorite, err := h.service.SetFavorite(c.UserContext(), *session, req.Name, req.Reason)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": favoriteResponse(favorite)})
}

func favoriteResponse(f *domain.Favorite) dto.FavoriteResponse {
	return dto.FavoriteResponse{
		ID:        f.ID,
		Name:      f.Name,
		Reason:    f.Reason,
		CrownedBy: f.CrownedBy,
		CreatedAt: f.CreatedAt,
	}
}

func favoriteList(in []*domain.Favorite) []dto.FavoriteResponse {
	out := make([]dto.FavoriteResponse, 0, len(in))
	for _, f := range in {
		out = append(out, favoriteResponse(f))
	}
	return out
}
