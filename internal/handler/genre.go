package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/serializer"
)

// GenreHandler serves /genres.
type GenreHandler struct {
	Store GenreStore
}

func NewGenreHandler(s GenreStore) *GenreHandler { return &GenreHandler{Store: s} }

func (h *GenreHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	genres, err := h.Store.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewGenres(genres))
}

func (h *GenreHandler) Retrieve(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	g, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewGenre(*g))
}

func (h *GenreHandler) Create(c echo.Context) error {
	var in serializer.GenreInput
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	g := in.Model(0)
	if err := h.Store.Create(ctx, &g); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, serializer.NewGenre(g))
}

func (h *GenreHandler) Update(c echo.Context) error        { return h.update(c, false) }
func (h *GenreHandler) PartialUpdate(c echo.Context) error { return h.update(c, true) }

func (h *GenreHandler) update(c echo.Context, partial bool) error {
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
	var in serializer.GenreInput
	if partial {
		in = serializer.GenreInputFrom(*cur)
	}
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	g := in.Model(id)
	if err := h.Store.Update(ctx, &g); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewGenre(g))
}

func (h *GenreHandler) Delete(c echo.Context) error {
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
