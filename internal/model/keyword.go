package model

// Keyword is a single stored keyword record. Deleted records stay in
// storage and are only hidden from listings.
type Keyword struct {
	ID      int    `json:"id"`
	Keyword string `json:"keyword"`
	Deleted bool   `json:"deleted"`
}
