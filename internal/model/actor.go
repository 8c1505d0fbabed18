package model

// Actor is a row of the `actors` table.
type Actor struct {
	ID        uint64 // actors.id
	FirstName string // actors.first_name
	LastName  string // actors.last_name
}

// FullName joins first and last name with a single space.
func (a Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}
