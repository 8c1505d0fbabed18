package model

// TheatreHall represents a hall in which performances take place.
// The seating layout is a rectangle of Rows x SeatsInRow seats, both
// numbered from 1.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name of the hall.
//  Rows       – number of seating rows (>= 1).
//  SeatsInRow – number of seats in every row (>= 1).
type TheatreHall struct {
	ID         uint64 // theatre_halls.id
	Name       string // theatre_halls.name
	Rows       int    // theatre_halls.num_rows
	SeatsInRow int    // theatre_halls.seats_in_row
}

// Capacity is the total number of seats in the hall.
func (h TheatreHall) Capacity() int {
	return h.Rows * h.SeatsInRow
}

// Contains reports whether row/seat address a seat inside the hall.
func (h TheatreHall) Contains(row, seat int) bool {
	return row >= 1 && row <= h.Rows && seat >= 1 && seat <= h.SeatsInRow
}
