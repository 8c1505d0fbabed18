package repository

import (
	"fmt"
	"strconv"
	"strings"
)

// PlayFilter restricts the play collection by linked actors and genres.
// A nil or empty slice disables that filter.  Within one slice any id
// matches (OR); the two filters combine with AND.
type PlayFilter struct {
	ActorIDs []uint64
	GenreIDs []uint64
}

// ParseIDList parses a comma separated list of positive integer ids
// such as the `actors=1,2` query value.  An empty string yields a nil
// slice.  Any other token that is not a positive integer, including
// the empty tokens of "1,,2", is rejected.
func ParseIDList(raw string) ([]uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		tok := strings.TrimSpace(p)
		n, err := strconv.ParseUint(tok, 10, 64)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("invalid id %q", tok)
		}
		ids = append(ids, n)
	}
	return dedupe(ids), nil
}

// where builds the WHERE clause (without the keyword) for the plays
// query aliased as p.  Membership is tested with EXISTS so a play
// matching several ids is still returned once.
func (f PlayFilter) where() (string, []any) {
	conds := []string{}
	args := []any{}
	if len(f.ActorIDs) > 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM play_actors pa WHERE pa.play_id = p.id AND pa.actor_id IN ("+placeholders(len(f.ActorIDs))+"))")
		args = append(args, uintArgs(f.ActorIDs)...)
	}
	if len(f.GenreIDs) > 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM play_genres pg WHERE pg.play_id = p.id AND pg.genre_id IN ("+placeholders(len(f.GenreIDs))+"))")
		args = append(args, uintArgs(f.GenreIDs)...)
	}
	if len(conds) == 0 {
		return "1=1", args
	}
	return strings.Join(conds, " AND "), args
}
