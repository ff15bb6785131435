package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	ErrForbidden = errors.New("operation is not allowed for the user role")

	ErrBlogNotFound    = errors.New("blog not found")
	ErrCommentNotFound = errors.New("comment not found")

	ErrLikeAlreadyExists = errors.New("blog is liked by the user already")
	ErrLikeNotFound      = errors.New("like not found")
)
