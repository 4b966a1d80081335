package models

import "time"

// SearchType tags what kind of catalog item a history entry points at
type SearchType string

const (
	SearchTypeMovie  SearchType = "movie"
	SearchTypeTV     SearchType = "tv"
	SearchTypePerson SearchType = "person"
)

// Valid reports whether t is one of the known search types
func (t SearchType) Valid() bool {
	switch t {
	case SearchTypeMovie, SearchTypeTV, SearchTypePerson:
		return true
	}
	return false
}

// SearchHistoryItem is one remembered search hit. ItemID is the metadata
// service's id for the movie, show or person.
type SearchHistoryItem struct {
	ItemID     int64      `json:"id"`
	Image      string     `json:"image"`
	Title      string     `json:"title"`
	SearchType SearchType `json:"searchType"`
	CreatedAt  time.Time  `json:"createdAt"`
}
