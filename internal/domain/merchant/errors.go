package merchant

import "errors"

var (
	ErrPhoneTaken = errors.New("phone already registered")
	ErrEmailTaken = errors.New("email already registered")
)
