package model

import "time"

// Performance is a scheduled showing of a play in a theatre hall.
// Play and TheatreHall are filled in by repository reads that join
// the related rows; writes only look at the foreign keys.
//
// Fields:
//  ID            – primary key identifier.
//  PlayID        – play being performed.
//  TheatreHallID – hall in which the play is performed.
//  ShowTime      – start time, stored in UTC.
//  Play          – joined play (nil on write paths).
//  TheatreHall   – joined hall (nil on write paths).
//  TicketsSold   – number of tickets sold for the performance.
//  TakenPlaces   – sold seats; only loaded for single-performance reads.
type Performance struct {
	ID            uint64       // performances.id
	PlayID        uint64       // performances.play_id
	TheatreHallID uint64       // performances.theatre_hall_id
	ShowTime      time.Time    // performances.show_time
	Play          *Play        // joined plays row
	TheatreHall   *TheatreHall // joined theatre_halls row
	TicketsSold   int          // COUNT(tickets)
	TakenPlaces   []Place      // tickets.row_num/seat_num
}

// TicketsAvailable is the number of unsold seats.  It is zero when the
// hall has not been loaded.
func (p Performance) TicketsAvailable() int {
	if p.TheatreHall == nil {
		return 0
	}
	return p.TheatreHall.Capacity() - p.TicketsSold
}

// Place addresses one seat in a hall.
type Place struct {
	Row  int
	Seat int
}
