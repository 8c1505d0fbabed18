package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/serializer"
)

// ActorHandler serves /actors.
type ActorHandler struct {
	Store ActorStore
}

func NewActorHandler(s ActorStore) *ActorHandler { return &ActorHandler{Store: s} }

func (h *ActorHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	actors, err := h.Store.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewActors(actors))
}

func (h *ActorHandler) Retrieve(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewActor(*a))
}

func (h *ActorHandler) Create(c echo.Context) error {
	var in serializer.ActorInput
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a := in.Model(0)
	if err := h.Store.Create(ctx, &a); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, serializer.NewActor(a))
}

func (h *ActorHandler) Update(c echo.Context) error        { return h.update(c, false) }
func (h *ActorHandler) PartialUpdate(c echo.Context) error { return h.update(c, true) }

func (h *ActorHandler) update(c echo.Context, partial bool) error {
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
	var in serializer.ActorInput
	if partial {
		in = serializer.ActorInputFrom(*cur)
	}
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	a := in.Model(id)
	if err := h.Store.Update(ctx, &a); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewActor(a))
}

func (h *ActorHandler) Delete(c echo.Context) error {
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
