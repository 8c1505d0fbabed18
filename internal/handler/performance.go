package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/repository"
	"github.com/iliyamo/theatre-reservation/internal/serializer"
)

// PerformanceHandler serves /performances.
type PerformanceHandler struct {
	Store PerformanceStore
}

func NewPerformanceHandler(s PerformanceStore) *PerformanceHandler {
	return &PerformanceHandler{Store: s}
}

// parsePerformanceFilter reads ?play=<id> and ?date=YYYY-MM-DD.
func parsePerformanceFilter(c echo.Context) (repository.PerformanceFilter, error) {
	var f repository.PerformanceFilter
	verr := &repository.ValidationError{}
	if raw := c.QueryParam("play"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			verr.Add("play", "enter a valid play id.")
		}
		f.PlayID = id
	}
	if raw := c.QueryParam("date"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			verr.Add("date", "date has wrong format, use YYYY-MM-DD.")
		}
		f.Date = d
	}
	if !verr.Empty() {
		return f, verr
	}
	return f, nil
}

func (h *PerformanceHandler) List(c echo.Context) error {
	f, err := parsePerformanceFilter(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewPerformanceLists(items))
}

func (h *PerformanceHandler) Retrieve(c echo.Context) error {
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
	return c.JSON(http.StatusOK, serializer.NewPerformanceDetail(*p))
}

func (h *PerformanceHandler) Create(c echo.Context) error {
	var in serializer.PerformanceInput
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p := in.Model(0)
	if err := h.Store.Create(ctx, &p); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, serializer.NewPerformance(p))
}

func (h *PerformanceHandler) Update(c echo.Context) error        { return h.update(c, false) }
func (h *PerformanceHandler) PartialUpdate(c echo.Context) error { return h.update(c, true) }

func (h *PerformanceHandler) update(c echo.Context, partial bool) error {
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
	var in serializer.PerformanceInput
	if partial {
		in = serializer.PerformanceInputFrom(*cur)
	}
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	p := in.Model(id)
	if err := h.Store.Update(ctx, &p); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, serializer.NewPerformance(p))
}

func (h *PerformanceHandler) Delete(c echo.Context) error {
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
