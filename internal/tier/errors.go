package tier

import "errors"

var (
	ErrInvalidCatalog      = errors.New("invalid plan catalog")
	ErrFailedToLoadCatalog = errors.New("failed to load plan catalog")
)
