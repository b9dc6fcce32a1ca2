package api

import "errors"

var (
	ErrNotFound    = errors.New("notifications endpoint not found")
	ErrRateLimited = errors.New("rate limited by API")
	ErrAuthFailed  = errors.New("authentication failed")
)
