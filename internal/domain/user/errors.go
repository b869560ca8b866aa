package user

import (
	apperrors "github.com/librarium/lending/pkg/errors"
)

// 用户领域错误
var (
	ErrEmailNotRegistered = apperrors.New(apperrors.ErrCodeInvalidCredentials, "We couldn't find your email address.")

	ErrNameRequired     = apperrors.New(apperrors.ErrCodeInvalidParams, "The name field is required.")
	ErrNameTooLong      = apperrors.New(apperrors.ErrCodeInvalidParams, "The name field must not be greater than 255 characters.")
	ErrInvalidEmail     = apperrors.New(apperrors.ErrCodeInvalidParams, "The email field must be a valid email address.")
	ErrPasswordTooShort = apperrors.New(apperrors.ErrCodeInvalidParams, "The password field must be at least 6 characters.")
	ErrInvalidRole      = apperrors.New(apperrors.ErrCodeInvalidParams, "The selected role is invalid.")
)
