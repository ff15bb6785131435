package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/service/auth"
)

const refreshCookieName = "refreshToken"

// setRefreshCookie stores the refresh token where page script can't
// reach it. The cookie lives exactly as long as the token itself.
func setRefreshCookie(w http.ResponseWriter, token models.IssuedToken, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token.Value,
		Path:     "/",
		MaxAge:   int(time.Until(token.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

type sessionResponse struct {
	User        userResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

func handleRegister(as authService, secureCookie bool, l logger.Logger) http.Handler {
	type RegisterRequest struct {
		Username  string `json:"username" validate:"required,min=2,max=20"`
		Email     string `json:"email" validate:"required,email,max=50"`
		Password  string `json:"password" validate:"required,min=8"`
		FirstName string `json:"firstName" validate:"max=20"`
		LastName  string `json:"lastName" validate:"max=20"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[RegisterRequest](w, r)
		if err != nil {
			return
		}

		user, pair, err := as.Register(r.Context(), auth.RegisterParams{
			Username:  data.Username,
			Email:     data.Email,
			Password:  data.Password,
			FirstName: data.FirstName,
			LastName:  data.LastName,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User already exists", http.StatusConflict)
			default:
				serverError(w, l, err)
			}
			return
		}

		setRefreshCookie(w, pair.Refresh, secureCookie)
		render.JSONWithStatus(w, sessionResponse{
			User:        renderUser(user),
			AccessToken: pair.Access.Value,
		}, http.StatusCreated)
	})
}

func handleLogin(as authService, secureCookie bool, l logger.Logger) http.Handler {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[LoginRequest](w, r)
		if err != nil {
			return
		}

		user, pair, err := as.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			switch {
			// Wrong password comes back as the same error, the response
			// must not hint whether the account exists
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				serverError(w, l, err)
			}
			return
		}

		setRefreshCookie(w, pair.Refresh, secureCookie)
		render.JSONWithStatus(w, sessionResponse{
			User:        renderUser(user),
			AccessToken: pair.Access.Value,
		}, http.StatusCreated)
	})
}

func handleRefreshToken(as authService, l logger.Logger) http.Handler {
	type RefreshResponse struct {
		AccessToken string `json:"accessToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(refreshCookieName)
		if err != nil {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		// The cookie and its stored row are deliberately left untouched:
		// refresh hands out a new access token and nothing else
		access, err := as.Refresh(r.Context(), cookie.Value)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired),
				errors.Is(err, apperrors.ErrTokenInvalid),
				errors.Is(err, apperrors.ErrRefreshTokenNotFound):
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			default:
				serverError(w, l, err)
			}
			return
		}

		render.JSON(w, RefreshResponse{AccessToken: access.Value})
	})
}

func handleLogout(as authService, secureCookie bool, l logger.Logger) http.Handler {
	type LogoutResponse struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Success shaped response no matter what: a session that is
		// already gone is as logged out as it gets
		if cookie, err := r.Cookie(refreshCookieName); err == nil {
			if err := as.Logout(r.Context(), cookie.Value); err != nil {
				l.Error("logout failed", "error", err.Error())
			}
		}

		clearRefreshCookie(w, secureCookie)
		render.JSON(w, LogoutResponse{Message: "Logged out successfully"})
	})
}
