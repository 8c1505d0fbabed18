package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-reservation/internal/config"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

type oneUser struct{ u model.User }

func (s oneUser) Create(context.Context, string, string, bool, int) (uint64, error) {
	return s.u.ID, nil
}
func (s oneUser) GetByEmail(context.Context, string) (*model.User, error) { return &s.u, nil }
func (s oneUser) GetByID(context.Context, uint64) (*model.User, error)    { return &s.u, nil }

// revokeStore accepts every token on validation; revokeErr decides
// whether this request is the one that revokes it.
type revokeStore struct {
	revokeErr error
	stored    int
}

func (s *revokeStore) StoreRefresh(context.Context, uint64, string, time.Time) error {
	s.stored++
	return nil
}
func (s *revokeStore) ValidateRefresh(context.Context, string) (uint64, error) { return 5, nil }
func (s *revokeStore) RevokeByHash(context.Context, string) error             { return s.revokeErr }
func (s *revokeStore) RevokeAllForUser(context.Context, uint64) error         { return nil }

func postRefresh(h *AuthHandler, path string) *httptest.ResponseRecorder {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"refresh_token":"abc"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if strings.HasSuffix(path, "logout") {
		_ = h.Logout(c)
	} else {
		_ = h.Refresh(c)
	}
	return rec
}

func TestRefreshIssuesPairOnlyForRevokingRequest(t *testing.T) {
	cfg := config.Config{JWTSecret: "k", AccessTTLMin: 5, RefreshTTLDays: 1}
	users := oneUser{u: model.User{ID: 5, Email: "a@b.c"}}

	won := &revokeStore{}
	rec := postRefresh(NewAuthHandler(cfg, users, won), "/api/user/token/refresh")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, won.stored)

	lost := &revokeStore{revokeErr: repository.ErrNotFound}
	rec = postRefresh(NewAuthHandler(cfg, users, lost), "/api/user/token/refresh")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, lost.stored)
}

func TestLogoutRejectsAlreadyRevokedToken(t *testing.T) {
	cfg := config.Config{JWTSecret: "k"}
	rec := postRefresh(NewAuthHandler(cfg, oneUser{}, &revokeStore{revokeErr: repository.ErrNotFound}), "/api/user/logout")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
