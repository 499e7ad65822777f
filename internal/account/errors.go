package account

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubmissionNotFound   = errors.New("contact submission not found")
	ErrTokenNotFound        = errors.New("password reset token not found")
)
