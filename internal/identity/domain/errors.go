package domain

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrUserExists         = errors.New("user_exists")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrCouponCodeTaken    = errors.New("coupon_code_taken")
	ErrNotFound           = errors.New("profile_not_found")
)
