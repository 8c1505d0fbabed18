package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/repository"
	"github.com/iliyamo/theatre-reservation/internal/serializer"
)

// PlayHandler serves /plays.  The list and detail actions use
// different shapes; writes answer with link ids.
type PlayHandler struct {
	Store PlayStore
}

func NewPlayHandler(s PlayStore) *PlayHandler { return &PlayHandler{Store: s} }

// List supports ?actors=1,2 and ?genres=3,4.
func (h *PlayHandler) List(c echo.Context) error {
	var f repository.PlayFilter
	verr := &repository.ValidationError{}
	var err error
	if f.ActorIDs, err = repository.ParseIDList(c.QueryParam("actors")); err != nil {
		verr.Add("actors", err.Error())
	}
	if f.GenreIDs, err = repository.ParseIDList(c.QueryParam("genres")); err != nil {
		verr.Add("genres", err.Error())
	}
	if !verr.Empty() {
		return respondError(c, verr)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	plays, err := h.Store.Filter(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewPlayLists(plays))
}

func (h *PlayHandler) Retrieve(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewPlayDetail(*p))
}

func (h *PlayHandler) Create(c echo.Context) error {
	var in serializer.PlayInput
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Store.Create(ctx, playWrite(in))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, serializer.NewPlay(*p))
}

func (h *PlayHandler) Update(c echo.Context) error        { return h.update(c, false) }
func (h *PlayHandler) PartialUpdate(c echo.Context) error { return h.update(c, true) }

// update replaces the link sets.  On PATCH a link key that is absent
// from the body keeps the current links.
func (h *PlayHandler) update(c echo.Context, partial bool) error {
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
	var in serializer.PlayInput
	if partial {
		in = serializer.PlayInputFrom(*cur)
	}
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	p, err := h.Store.Update(ctx, id, playWrite(in))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewPlay(*p))
}

// Delete is not offered for plays.  Authentication and the staff gate
// have already run, so only staff reach this point; the row is never
// touched.
func (h *PlayHandler) Delete(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderAllow, "GET, PUT, PATCH, HEAD, OPTIONS")
	return c.JSON(http.StatusMethodNotAllowed, ErrorBody{
		Error:   errorCode(http.StatusMethodNotAllowed),
		Message: `method "DELETE" not allowed.`,
	})
}

func playWrite(in serializer.PlayInput) repository.PlayWrite {
	return repository.PlayWrite{
		Title:       in.Title,
		Description: in.Description,
		GenreIDs:    in.Genres,
		ActorIDs:    in.Actors,
	}
}
