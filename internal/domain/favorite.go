package domain

import "time"

// Favorite is one crowning in the board history; the newest row is the current favorite.
type Favorite struct {
	ID        int64
	Name      string
	Reason    string
	CrownedBy string
	CreatedAt time.Time
}

// FavoriteNameStats aggregates the history of one name.
type FavoriteNameStats struct {
	Name         string
	TimesCrowned int
	FirstCrowned time.Time
	LastCrowned  time.Time
	Reasons      []string
}

// FavoriteFacts summarizes the whole history.
type FavoriteFacts struct {
	UniqueFavorites int
	TotalCrownings  int
	FirstEver       string
	Current         string
}

// Announcement is the fan-out payload.
type Announcement struct {
	Subject string
	Body    string
}
