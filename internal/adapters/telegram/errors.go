package telegram

import "errors"

// ErrNoToken is returned when constructing a Bot without a token.
var ErrNoToken = errors.New("telegram token is required")
