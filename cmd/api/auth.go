package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"partsfit/internal/auth"
	"partsfit/internal/cache"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"

	// refresh and logout are the only reader of the refresh cookie
	refreshCookiePath = "/v1/auth"
)

// setAuthCookies sets access + refresh tokens as HttpOnly cookies.
func (app *application) setAuthCookies(w http.ResponseWriter, pair auth.TokenPair) {
	secure := app.config.env == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     accessCookie,
		Value:    pair.Access,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.AccessTokenTTL.Seconds()),
	})

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    pair.Refresh,
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.RefreshTokenTTL.Seconds()),
	})
}

func (app *application) clearAuthCookies(w http.ResponseWriter) {
	expire := func(name, path string) {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			HttpOnly: true,
			Secure:   app.config.env == "production",
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}

	expire(accessCookie, "/")
	expire(refreshCookie, refreshCookiePath)
}

type loginPayload struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=72"`
}

type tokenResponse struct {
	Access string `json:"access"`
}

// loginHandler godoc
//
//	@Summary		Admin login
//	@Description	Returns the access token and sets access and refresh cookies.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		loginPayload	true	"Credentials"
//	@Success		200		{object}	tokenResponse
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Router			/auth/login [post]
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.validationErrorResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	admin, err := app.store.Admins.GetAdminByUsername(ctx, strings.TrimSpace(payload.Username))
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}
	if err := admin.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}
	if !admin.IsStaff {
		app.forbiddenResponse(w, r)
		return
	}

	pair, err := app.authenticator.GenerateTokens(admin.ID, "staff")
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.setAuthCookies(w, pair)
	app.logger.Infow("admin logged in", "admin_id", admin.ID)

	writeJSON(w, http.StatusOK, tokenResponse{Access: pair.Access})
}

type refreshPayload struct {
	Refresh string `json:"refresh"`
}

func refreshTokenFromRequest(r *http.Request) string {
	var payload refreshPayload
	if r.Body != nil && r.ContentLength != 0 {
		// a malformed body falls through to the cookie
		_ = json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&payload)
	}
	if token := strings.TrimSpace(payload.Refresh); token != "" {
		return token
	}
	if c, err := r.Cookie(refreshCookie); err == nil {
		return c.Value
	}
	return ""
}

// refreshTokenHandler godoc
//
//	@Summary		Rotate tokens
//	@Description	Reads the refresh token from the body or the refresh cookie and rotates both tokens.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		refreshPayload	false	"Refresh token"
//	@Success		200		{object}	tokenResponse
//	@Failure		401		{object}	error
//	@Router			/auth/refresh [post]
func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	token := refreshTokenFromRequest(r)
	if token == "" {
		writeJSONError(w, http.StatusUnauthorized, "No refresh cookie")
		return
	}

	claims, err := app.authenticator.ValidateRefreshToken(token)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	revoked, err := app.cache.IsRevoked(ctx, claims.ID)
	if err != nil {
		app.logger.Warnw("revocation check failed", "error", err.Error())
	}
	if revoked {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("refresh token %s revoked", claims.ID))
		return
	}

	adminID, err := claims.AdminID()
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}
	admin, err := app.store.Admins.GetAdminByID(ctx, adminID)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	pair, err := app.authenticator.GenerateTokens(admin.ID, claims.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.revokeRefresh(ctx, claims)
	app.setAuthCookies(w, pair)

	writeJSON(w, http.StatusOK, tokenResponse{Access: pair.Access})
}

// revokeRefresh blacklists a used refresh token. Without Redis it is a no-op.
func (app *application) revokeRefresh(ctx context.Context, claims *auth.Claims) {
	if claims.ExpiresAt == nil {
		return
	}
	if err := app.cache.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		app.logger.Warnw("refresh token revocation failed", "jti", claims.ID, "error", err.Error())
	}
}

// logoutHandler godoc
//
//	@Summary	Logout
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/auth/logout [post]
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if token := refreshTokenFromRequest(r); token != "" {
		if claims, err := app.authenticator.ValidateRefreshToken(token); err == nil {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			app.revokeRefresh(ctx, claims)
			cancel()
		}
	}

	app.clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Logged out"})
}

type meResponse struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	IsStaff  bool      `json:"is_staff"`
	Date     time.Time `json:"date"`
}

// meHandler godoc
//
//	@Summary	Current admin
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	meResponse
//	@Failure	401	{object}	error
//	@Security	ApiKeyAuth
//	@Router		/auth/me [get]
func (app *application) meHandler(w http.ResponseWriter, r *http.Request) {
	admin := getAdminFromContext(r)
	if admin == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("no admin in context"))
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		ID:       admin.ID,
		Username: admin.Username,
		Email:    admin.Email,
		IsStaff:  admin.IsStaff,
		Date:     admin.CreatedAt,
	})
}
