package tool

import "errors"

var (
	ErrToolNotFound        = errors.New("tool not found")
	ErrInvalidCatalog      = errors.New("invalid tool catalog")
	ErrFailedToLoadCatalog = errors.New("failed to load tool catalog")
)
