package model

// Question is one prompt of the shoe game, loaded once at startup.
// Questions are presented in ascending SortOrder.
type Question struct {
	SortOrder int    `db:"sort_order" json:"sort_order"`
	Text      string `db:"question" json:"question"`
}
