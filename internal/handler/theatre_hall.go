package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/serializer"
)

// TheatreHallHandler serves /theatre-halls.
type TheatreHallHandler struct {
	Store TheatreHallStore
}

func NewTheatreHallHandler(s TheatreHallStore) *TheatreHallHandler { return &TheatreHallHandler{Store: s} }

func (h *TheatreHallHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	halls, err := h.Store.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewTheatreHalls(halls))
}

func (h *TheatreHallHandler) Retrieve(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	hall, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewTheatreHall(*hall))
}

func (h *TheatreHallHandler) Create(c echo.Context) error {
	var in serializer.TheatreHallInput
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	hall := in.Model(0)
	if err := h.Store.Create(ctx, &hall); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, serializer.NewTheatreHall(hall))
}

func (h *TheatreHallHandler) Update(c echo.Context) error        { return h.update(c, false) }
func (h *TheatreHallHandler) PartialUpdate(c echo.Context) error { return h.update(c, true) }

func (h *TheatreHallHandler) update(c echo.Context, partial bool) error {
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
	var in serializer.TheatreHallInput
	if partial {
		in = serializer.TheatreHallInputFrom(*cur)
	}
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	hall := in.Model(id)
	if err := h.Store.Update(ctx, &hall); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewTheatreHall(hall))
}

func (h *TheatreHallHandler) Delete(c echo.Context) error {
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
