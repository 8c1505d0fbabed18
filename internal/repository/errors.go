// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound indicates that the addressed row does not exist,
// while ErrProtected signals that a delete cannot proceed because
// dependent records still reference the row (e.g. deleting a hall that
// still has performances).
package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup, update or delete addresses a
// row that does not exist. Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrProtected is returned when a row cannot be deleted because other
// rows depend on it. Handlers translate it into a validation error.
var ErrProtected = errors.New("protected by dependent records")

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

// ValidationError carries per-field messages for a rejected write.
// Keys are wire field names ("name", "tickets[0].seat", ...).
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError with a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add records another field message and returns the receiver.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
	return e
}

// Empty reports whether no field message has been recorded.
func (e *ValidationError) Empty() bool { return e == nil || len(e.Fields) == 0 }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// MySQL server error numbers the repositories react to.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// mysqlErrorNumber returns the server error number wrapped in err, or 0.
func mysqlErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool { return mysqlErrorNumber(err) == mysqlDuplicateEntry }
func isReferenced(err error) bool { return mysqlErrorNumber(err) == mysqlRowIsReferenced }
func isMissingRef(err error) bool { return mysqlErrorNumber(err) == mysqlNoReferencedRow }
