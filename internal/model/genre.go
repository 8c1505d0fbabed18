package model

// Genre is a row of the `genres` table.  Names are unique.
type Genre struct {
	ID   uint64 // genres.id
	Name string // genres.name
}
