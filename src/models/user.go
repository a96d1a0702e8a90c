package models

// MUser holds the favorites of one visitor for the lifetime of the process.
type MUser struct {
	ID             string   `json:"id"`
	Username       string   `json:"username,omitempty"`
	Email          string   `json:"email,omitempty"`
	FavoriteStocks []string `json:"favorite_stocks"`
}
