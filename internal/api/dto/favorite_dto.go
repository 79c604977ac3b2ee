package dto

import "time"

// SetFavoriteRequest payload for crowning a new favorite.
type SetFavoriteRequest struct {
	Name   string `json:"name" form:"name"`
	Reason string `json:"reason" form:"reason"`
}

// FavoriteResponse is one crowning.
type FavoriteResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Reason    string    `json:"reason"`
	CrownedBy string    `json:"crowned_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OverviewResponse is the current favorite with recent history.
type OverviewResponse struct {
	Current *FavoriteResponse  `json:"current"`
	Recent  []FavoriteResponse `json:"recent"`
}

// NameStatsResponse aggregates one name across the history.
type NameStatsResponse struct {
	Name         string    `json:"name"`
	TimesCrowned int       `json:"times_crowned"`
	FirstCrowned time.Time `json:"first_crowned"`
	LastCrowned  time.Time `json:"last_crowned"`
	Reasons      []string  `json:"reasons"`
}

// FactsResponse summarizes the whole history.
type FactsResponse struct {
	UniqueFavorites int    `json:"unique_favorites"`
	TotalCrownings  int    `json:"total_crownings"`
	FirstEver       string `json:"first_ever,omitempty"`
	Current         string `json:"current,omitempty"`
}

// Pagination describes a page of history.
type Pagination struct {
	Page       int  `json:"page"`
	TotalPages int  `json:"total_pages"`
	TotalCount int  `json:"total_count"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// HistoryResponse is one page of history plus statistics.
type HistoryResponse struct {
	Entries    []FavoriteResponse  `json:"entries"`
	Stats      []NameStatsResponse `json:"stats"`
	Facts      FactsResponse       `json:"facts"`
	Pagination Pagination          `json:"pagination"`
}
