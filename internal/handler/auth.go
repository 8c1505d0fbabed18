package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/config"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
	"github.com/iliyamo/theatre-reservation/internal/serializer"
	"github.com/iliyamo/theatre-reservation/internal/utils"
)

type UserStore interface {
	Create(ctx context.Context, email, password string, isStaff bool, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for the /api/user endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID      uint64 `json:"id"`
	Email   string `json:"email"`
	IsStaff bool   `json:"is_staff"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// issue creates a new access/refresh pair for u and stores the refresh hash.
func (h *AuthHandler) issue(ctx context.Context, u *model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.IsStaff, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    userPart{ID: u.ID, Email: u.Email, IsStaff: u.IsStaff},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

// Register creates a regular (non-staff) user and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var in serializer.RegisterInput
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, in.Email, in.Password, false, h.Cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		return respondError(c, repository.NewValidationError("email", "user with this email already exists."))
	}
	if err != nil {
		return respondError(c, err)
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies the credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var in serializer.LoginInput
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return respondError(c, echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials"))
	}
	if err != nil {
		return respondError(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return respondError(c, echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials"))
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token: the presented one is revoked and a
// new pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var in serializer.RefreshInput
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(in.RefreshToken))

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return respondError(c, echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token"))
	}
	if err != nil {
		return respondError(c, err)
	}
	// Only the request that revokes the token may mint a new pair.
	err = h.Tokens.RevokeByHash(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return respondError(c, echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token"))
	}
	if err != nil {
		return respondError(c, err)
	}
	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return respondError(c, echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token"))
	}
	if err != nil {
		return respondError(c, err)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes one session when a refresh_token is posted, or every
// session of the caller when only a bearer token is sent.
func (h *AuthHandler) Logout(c echo.Context) error {
	var in serializer.RefreshInput
	_ = c.Bind(&in)
	raw := strings.TrimSpace(in.RefreshToken)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return respondError(c, echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token"))
		}
		err := h.Tokens.RevokeByHash(ctx, hash)
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token"))
		}
		if err != nil {
			return respondError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	bearer, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if !ok {
		return respondError(c, repository.NewValidationError("refresh_token", "provide an Authorization header or a refresh_token."))
	}
	claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimSpace(bearer))
	if err != nil {
		return respondError(c, echo.ErrUnauthorized)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, claims.UserID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return respondError(c, echo.ErrUnauthorized)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return respondError(c, echo.ErrUnauthorized)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, IsStaff: u.IsStaff})
}
