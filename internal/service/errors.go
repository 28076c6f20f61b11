package service

import "errors"

var (
	ErrJobNotFound         = errors.New("job not found")
	ErrJobNotCompleted     = errors.New("job not completed")
	ErrJobAlreadyCompleted = errors.New("job already completed")
	ErrJobForbidden        = errors.New("job belongs to another user")
	ErrStorage             = errors.New("storage unavailable")
)
