package model

import "time"

// Reservation groups the tickets bought by one user in one request.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who made the reservation.
//  CreatedAt – creation timestamp (UTC).
//  Tickets   – tickets owned by the reservation, ordered by id.
type Reservation struct {
	ID        uint64    // reservations.id
	UserID    uint64    // reservations.user_id
	CreatedAt time.Time // reservations.created_at
	Tickets   []Ticket  // tickets.reservation_id
}

// Ticket is a single seat for a performance.  (PerformanceID, Row,
// Seat) is unique across the table, which is what prevents double
// booking.  Performance is populated on list reads only.
type Ticket struct {
	ID            uint64       // tickets.id
	Row           int          // tickets.row_num
	Seat          int          // tickets.seat_num
	PerformanceID uint64       // tickets.performance_id
	ReservationID uint64       // tickets.reservation_id
	Performance   *Performance // joined performance summary
}
