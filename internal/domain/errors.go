package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidAmount     = errors.New("amount must be a positive multiple of the point unit")
	ErrInvalidConfidence = errors.New("confidence must be between 50 and 90")
	ErrInvalidWindow     = errors.New("unknown reporting window")
	ErrQueryFailed       = errors.New("ledger query failed")
)
