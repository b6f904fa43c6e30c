package errs

import "errors"

var (
	InvalidRole    = errors.New("role must be worker or client")
	InvalidToken   = errors.New("invalid connect token")
	ModelNotLoaded = errors.New("model not loaded")
)
