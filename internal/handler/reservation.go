package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
	"github.com/iliyamo/theatre-reservation/internal/serializer"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ReservationEvents receives a notification after a reservation has
// been committed.  A failure is logged and never fails the request.
type ReservationEvents interface {
	ReservationCreated(ctx context.Context, r model.Reservation) error
}

// ReservationHandler serves /reservations.  The list is paginated and
// nests each ticket's performance; the other actions use the write
// shape.  Events may be nil.
type ReservationHandler struct {
	Store  ReservationStore
	Events ReservationEvents
}

func NewReservationHandler(s ReservationStore, ev ReservationEvents) *ReservationHandler {
	return &ReservationHandler{Store: s, Events: ev}
}

// pageParams reads ?page and ?page_size.  A page that is not a positive
// integer is reported as not found; a bad page_size falls back to the
// default and large values are capped.
func pageParams(c echo.Context) (page, size int, err error) {
	page, size = 1, defaultPageSize
	if raw := c.QueryParam("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, echo.NewHTTPError(http.StatusNotFound, "invalid page.")
		}
	}
	if raw := c.QueryParam("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			size = min(n, maxPageSize)
		}
	}
	return page, size, nil
}

func (h *ReservationHandler) List(c echo.Context) error {
	page, size, err := pageParams(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, total, err := h.Store.List(ctx, page, size)
	if err != nil {
		return respondError(c, err)
	}
	if page > 1 && len(items) == 0 {
		return respondError(c, echo.NewHTTPError(http.StatusNotFound, "invalid page."))
	}
	return c.JSON(http.StatusOK, serializer.Page[serializer.ReservationList]{
		Count:    total,
		Page:     page,
		PageSize: size,
		Results:  serializer.NewReservationLists(items),
	})
}

func (h *ReservationHandler) Retrieve(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewReservation(*r))
}

// Create books the tickets for the calling user.  All tickets are
// stored or none are.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return respondError(c, echo.ErrUnauthorized)
	}
	var in serializer.ReservationInput
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.Store.Create(ctx, uid, ticketWrites(in))
	if err != nil {
		return respondError(c, err)
	}
	h.publishCreated(c, *r)
	return c.JSON(http.StatusCreated, serializer.NewReservation(*r))
}

func (h *ReservationHandler) Update(c echo.Context) error        { return h.update(c, false) }
func (h *ReservationHandler) PartialUpdate(c echo.Context) error { return h.update(c, true) }

// update replaces the reservation's tickets.  Seats the reservation
// already holds may be kept.  A PATCH without a tickets key keeps the
// stored tickets.
func (h *ReservationHandler) update(c echo.Context, partial bool) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cur, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	// Tickets are not seeded before binding; every ticket in the body
	// must be complete.
	var in serializer.ReservationInput
	if err := c.Bind(&in); err != nil {
		return respondError(c, repository.NewValidationError("non_field_errors", "malformed request body."))
	}
	if partial && in.Tickets == nil {
		in = serializer.ReservationInputFrom(*cur)
	}
	if err := c.Validate(&in); err != nil {
		return respondError(c, err)
	}
	r, err := h.Store.Update(ctx, id, ticketWrites(in))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewReservation(*r))
}

func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReservationHandler) publishCreated(c echo.Context, r model.Reservation) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()
	if err := h.Events.ReservationCreated(ctx, r); err != nil {
		logrus.WithError(err).WithField("reservation_id", r.ID).Warn("publish reservation.created failed")
	}
}

func ticketWrites(in serializer.ReservationInput) []repository.TicketWrite {
	out := make([]repository.TicketWrite, 0, len(in.Tickets))
	for _, t := range in.Tickets {
		out = append(out, repository.TicketWrite{Row: t.Row, Seat: t.Seat, PerformanceID: t.Performance})
	}
	return out
}
