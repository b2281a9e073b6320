package match

import "errors"

var (
	ErrInvalidParam = errors.New("the param is invalid")
	ErrShutdown     = errors.New("matching engine is shutting down")
)
