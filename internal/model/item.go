package model

// Item is one checklist entry on a bingo card.
type Item struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}
