package model

// Play represents a row in the `plays` table together with its
// many-to-many links.  Genres and Actors are populated by the
// repository through the `play_genres` and `play_actors` join
// tables; they are empty (never nil) once loaded.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – title of the play, never empty.
//  Description – free text description.
//  Genres      – linked genres ordered by id.
//  Actors      – linked actors ordered by id.
type Play struct {
	ID          uint64  // plays.id
	Title       string  // plays.title
	Description string  // plays.description
	Genres      []Genre // play_genres -> genres
	Actors      []Actor // play_actors -> actors
}

// GenreIDs returns the ids of the linked genres in load order.
func (p Play) GenreIDs() []uint64 {
	ids := make([]uint64, 0, len(p.Genres))
	for _, g := range p.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// ActorIDs returns the ids of the linked actors in load order.
func (p Play) ActorIDs() []uint64 {
	ids := make([]uint64, 0, len(p.Actors))
	for _, a := range p.Actors {
		ids = append(ids, a.ID)
	}
	return ids
}
