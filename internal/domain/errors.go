package domain

import "errors"

var (
	ErrInvalidID      = errors.New("invalid id")
	ErrInvalidName    = errors.New("invalid name")
	ErrInvalidContent = errors.New("invalid content")
	ErrInvalidProject = errors.New("invalid project id")
)
