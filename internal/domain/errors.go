package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateName   = errors.New("customer name already exists")
	ErrUnknownCustomer = errors.New("unknown customer")
	ErrInvalidInput    = errors.New("invalid input")
	ErrStorage         = errors.New("storage failure")
)
