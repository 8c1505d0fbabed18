package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/handler"
	"github.com/iliyamo/theatre-reservation/internal/middleware"
)

// Theatre holds one handler per resource.
type Theatre struct {
	Genres       handler.Resource
	Actors       handler.Resource
	Plays        handler.Resource
	TheatreHalls handler.Resource
	Performances handler.Resource
	Reservations handler.Resource
}

// RegisterTheatre mounts the resources under /api/theatre.  Every route
// requires a valid access token; writes also require staff.  extra
// runs after those gates and before the handler (rate limiting and the
// response cache in production).
func RegisterTheatre(e *echo.Echo, t Theatre, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mws := append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireStaffForWrites(),
	}, extra...)
	g := e.Group("/api/theatre", mws...)

	mount(g, "/genres", t.Genres)
	mount(g, "/actors", t.Actors)
	mount(g, "/plays", t.Plays)
	mount(g, "/theatre-halls", t.TheatreHalls)
	mount(g, "/performances", t.Performances)
	mount(g, "/reservations", t.Reservations)
}

func mount(g *echo.Group, path string, r handler.Resource) {
	g.GET(path, r.List)
	g.POST(path, r.Create)
	g.GET(path+"/:id", r.Retrieve)
	g.PUT(path+"/:id", r.Update)
	g.PATCH(path+"/:id", r.PartialUpdate)
	g.DELETE(path+"/:id", r.Delete)
}
