package health

import "errors"

// ErrCheckFailed may be wrapped by checks that want a stable sentinel.
var ErrCheckFailed = errors.New("health: check failed")
