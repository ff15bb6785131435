package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/handlers/userctx"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/service/user"
)

func handleCurrentUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := userctx.FromContext(r.Context())
		render.JSON(w, renderUser(u))
	})
}

func handleUpdateCurrentUser(us userService, l logger.Logger) http.Handler {
	type SocialLinksRequest struct {
		Website   string `json:"website" validate:"omitempty,url,max=100"`
		Facebook  string `json:"facebook" validate:"omitempty,url,max=100"`
		Instagram string `json:"instagram" validate:"omitempty,url,max=100"`
		LinkedIn  string `json:"linkedin" validate:"omitempty,url,max=100"`
		X         string `json:"x" validate:"omitempty,url,max=100"`
		YouTube   string `json:"youtube" validate:"omitempty,url,max=100"`
	}
	type UpdateUserRequest struct {
		Username    *string             `json:"username" validate:"omitempty,min=2,max=20"`
		Email       *string             `json:"email" validate:"omitempty,email,max=50"`
		Password    *string             `json:"password" validate:"omitempty,min=8"`
		FirstName   *string             `json:"firstName" validate:"omitempty,max=20"`
		LastName    *string             `json:"lastName" validate:"omitempty,max=20"`
		SocialLinks *SocialLinksRequest `json:"socialLinks"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := userctx.FromContext(r.Context())

		data, err := render.BindAndValidate[UpdateUserRequest](w, r)
		if err != nil {
			return
		}

		var links *models.SocialLinks
		if data.SocialLinks != nil {
			links = &models.SocialLinks{
				Website:   data.SocialLinks.Website,
				Facebook:  data.SocialLinks.Facebook,
				Instagram: data.SocialLinks.Instagram,
				LinkedIn:  data.SocialLinks.LinkedIn,
				X:         data.SocialLinks.X,
				YouTube:   data.SocialLinks.YouTube,
			}
		}

		updated, err := us.Update(r.Context(), u.ID, user.UpdateParams{
			Username:    data.Username,
			Email:       data.Email,
			Password:    data.Password,
			FirstName:   data.FirstName,
			LastName:    data.LastName,
			SocialLinks: links,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "Username or email already taken", http.StatusConflict)
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "Not found", http.StatusNotFound)
			default:
				serverError(w, l, err)
			}
			return
		}

		render.JSON(w, renderUser(updated))
	})
}

func handleDeleteCurrentUser(us userService, secureCookie bool, l logger.Logger) http.Handler {
	type DeleteUserResponse struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := userctx.FromContext(r.Context())

		if err := us.Delete(r.Context(), u.ID); err != nil {
			serverError(w, l, err)
			return
		}

		// The account is gone, so are its sessions; drop the cookie too
		clearRefreshCookie(w, secureCookie)
		render.JSON(w, DeleteUserResponse{Message: "Account deleted"})
	})
}

func handleListUsers(us userService, l logger.Logger) http.Handler {
	type UserListResponse struct {
		Users []userResponse `json:"users"`
		Total int64          `json:"total"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)

		users, total, err := us.List(r.Context(), limit, offset)
		if err != nil {
			serverError(w, l, err)
			return
		}

		out := make([]userResponse, 0, len(users))
		for _, u := range users {
			out = append(out, renderUser(u))
		}

		render.JSON(w, UserListResponse{Users: out, Total: total})
	})
}

func handleGetUser(us userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}

		found, err := us.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				render.ServiceError(w, "Not found", http.StatusNotFound)
				return
			}
			serverError(w, l, err)
			return
		}

		render.JSON(w, renderUser(found))
	})
}

func handleDeleteUser(us userService, l logger.Logger) http.Handler {
	type DeleteUserResponse struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := us.Delete(r.Context(), userID); err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				render.ServiceError(w, "Not found", http.StatusNotFound)
				return
			}
			serverError(w, l, err)
			return
		}

		render.JSON(w, DeleteUserResponse{Message: "User deleted"})
	})
}
