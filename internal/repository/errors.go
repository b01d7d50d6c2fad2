package repository

import "errors"

var (
	ErrNotFound = errors.New("keyword not found")
	ErrConflict = errors.New("keyword id already exists")
)
