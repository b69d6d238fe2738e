package interceptors

import "errors"

var (
	ErrStateMismatch  = errors.New("interceptors: oauth state mismatch")
	ErrMissingCode    = errors.New("interceptors: oauth callback without code")
	ErrProviderDenied = errors.New("interceptors: oauth provider returned an error")
)
