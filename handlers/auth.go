package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/menuboard/apperr"
	"github.com/ray-remotestate/menuboard/config"
	"github.com/ray-remotestate/menuboard/database"
	"github.com/ray-remotestate/menuboard/database/dbhelper"
	"github.com/ray-remotestate/menuboard/metrics"
	"github.com/ray-remotestate/menuboard/middlewares"
	"github.com/ray-remotestate/menuboard/models"
	"github.com/ray-remotestate/menuboard/response"
	"github.com/ray-remotestate/menuboard/utils"
)

const refreshCookieName = "refresh_token"

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user,omitempty"`
}

func Login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req request
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		response.Error(w, r, apperr.Validation("username and password are required"))
		return
	}

	user, err := dbhelper.GetUserByPassword(r.Context(), database.Restro, req.Username, req.Password)
	metrics.RecordLogin(err == nil)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(user)
	if err != nil {
		response.Error(w, r, apperr.Internal("failed to generate tokens", err))
		return
	}
	setRefreshCookie(w, refreshToken, time.Now().Add(config.RefreshTokenTTL))

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user logged in")
	response.OK(w, tokenResponse{AccessToken: accessToken, User: user})
}

// Refresh rotates the refresh cookie. The user is re-read so an archived
// user or a changed role takes effect on the next access token.
func Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		response.Error(w, r, apperr.Unauthorized("refresh token missing"))
		return
	}

	userID, err := utils.ParseRefreshToken(cookie.Value)
	if err != nil {
		response.Error(w, r, apperr.Unauthorized("invalid or expired refresh token"))
		return
	}

	user, err := dbhelper.GetUserByID(r.Context(), database.Restro, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		response.Error(w, r, apperr.Unauthorized("invalid or expired refresh token"))
		return
	}
	if err != nil {
		response.Error(w, r, err)
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(user)
	if err != nil {
		response.Error(w, r, apperr.Internal("failed to generate tokens", err))
		return
	}
	setRefreshCookie(w, refreshToken, time.Now().Add(config.RefreshTokenTTL))

	response.OK(w, tokenResponse{AccessToken: accessToken})
}

func Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})

	response.OK(w, map[string]string{"message": "successfully logged out"})
}

// Me returns the caller and the admin navigation entries their role grants.
func Me(w http.ResponseWriter, r *http.Request) {
	session, err := middlewares.SessionFromContext(r.Context())
	if err != nil {
		response.Error(w, r, apperr.Unauthorized("unauthorized"))
		return
	}

	items, err := dbhelper.ListAdminMenuItemsByRole(r.Context(), database.Restro, session.RoleID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, map[string]any{
		"user": session,
		"menu": items,
	})
}

func setRefreshCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  expires,
	})
}
