package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// Resource is the closed set of actions a theatre endpoint exposes.
// The router mounts each method on its path and verb.
type Resource interface {
	List(c echo.Context) error
	Retrieve(c echo.Context) error
	Create(c echo.Context) error
	Update(c echo.Context) error
	PartialUpdate(c echo.Context) error
	Delete(c echo.Context) error
}

// Stores used by the resource handlers.  The repository types satisfy
// them; tests substitute in-memory fakes.

type GenreStore interface {
	List(ctx context.Context) ([]model.Genre, error)
	GetByID(ctx context.Context, id uint64) (*model.Genre, error)
	Create(ctx context.Context, g *model.Genre) error
	Update(ctx context.Context, g *model.Genre) error
	Delete(ctx context.Context, id uint64) error
}

type ActorStore interface {
	List(ctx context.Context) ([]model.Actor, error)
	GetByID(ctx context.Context, id uint64) (*model.Actor, error)
	Create(ctx context.Context, a *model.Actor) error
	Update(ctx context.Context, a *model.Actor) error
	Delete(ctx context.Context, id uint64) error
}

type PlayStore interface {
	Filter(ctx context.Context, f repository.PlayFilter) ([]model.Play, error)
	GetByID(ctx context.Context, id uint64) (*model.Play, error)
	Create(ctx context.Context, w repository.PlayWrite) (*model.Play, error)
	Update(ctx context.Context, id uint64, w repository.PlayWrite) (*model.Play, error)
}

type TheatreHallStore interface {
	List(ctx context.Context) ([]model.TheatreHall, error)
	GetByID(ctx context.Context, id uint64) (*model.TheatreHall, error)
	Create(ctx context.Context, h *model.TheatreHall) error
	Update(ctx context.Context, h *model.TheatreHall) error
	Delete(ctx context.Context, id uint64) error
}

type PerformanceStore interface {
	List(ctx context.Context, f repository.PerformanceFilter) ([]model.Performance, error)
	GetByID(ctx context.Context, id uint64) (*model.Performance, error)
	Create(ctx context.Context, p *model.Performance) error
	Update(ctx context.Context, p *model.Performance) error
	Delete(ctx context.Context, id uint64) error
}

type ReservationStore interface {
	List(ctx context.Context, page, pageSize int) ([]model.Reservation, int, error)
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	Create(ctx context.Context, userID uint64, tickets []repository.TicketWrite) (*model.Reservation, error)
	Update(ctx context.Context, id uint64, tickets []repository.TicketWrite) (*model.Reservation, error)
	Delete(ctx context.Context, id uint64) error
}

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// errorCode names the error class of an HTTP status.
func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusTooManyRequests:
		return "too_many_requests"
	}
	if status >= 500 {
		return "internal_error"
	}
	return http.StatusText(status)
}

// respondError translates a store or handler error into the HTTP
// response.  Unknown errors are logged and hidden behind a 500.
func respondError(c echo.Context, err error) error {
	var verr *repository.ValidationError
	var herr *echo.HTTPError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, ErrorBody{Error: errorCode(http.StatusBadRequest), Message: "invalid input", Fields: verr.Fields})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorBody{Error: errorCode(http.StatusNotFound), Message: "not found"})
	case errors.Is(err, repository.ErrProtected):
		return c.JSON(http.StatusBadRequest, ErrorBody{Error: errorCode(http.StatusBadRequest), Message: "cannot delete: other records still reference this object"})
	case errors.As(err, &herr):
		return c.JSON(herr.Code, ErrorBody{Error: errorCode(herr.Code), Message: httpErrorMessage(herr)})
	}
	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request().Method,
		"path":   c.Request().URL.Path,
	}).Error("request failed")
	return c.JSON(http.StatusInternalServerError, ErrorBody{Error: errorCode(http.StatusInternalServerError), Message: "internal server error"})
}

func httpErrorMessage(herr *echo.HTTPError) string {
	if s, ok := herr.Message.(string); ok {
		return s
	}
	return http.StatusText(herr.Code)
}

// HTTPErrorHandler renders errors returned from echo itself (unknown
// routes, wrong verbs, middleware rejections) with the same body as
// the handlers.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if rerr := respondError(c, err); rerr != nil {
		logrus.WithError(rerr).Error("write error response")
	}
}

// parseID reads the :id path parameter.
func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, repository.ErrNotFound
	}
	return id, nil
}

// callerID returns the authenticated user id stored by the JWT middleware.
func callerID(c echo.Context) (uint64, bool) {
	id, ok := c.Get("user_id").(uint64)
	return id, ok && id != 0
}

// bindAndValidate decodes the request body into dst and runs the
// registered validator.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return repository.NewValidationError("non_field_errors", "malformed request body.")
	}
	if err := c.Validate(dst); err != nil {
		return err
	}
	return nil
}

// requestTimeout bounds the store calls of a single request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}
