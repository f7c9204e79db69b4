package commission

import "errors"

var (
	ErrEmptyTable     = errors.New("rank table is empty")
	ErrInvalidTable   = errors.New("invalid rank table")
	ErrInvalidPrice   = errors.New("price must be positive")
	ErrInvalidSales   = errors.New("sales count must not be negative")
	ErrSellerNotFound = errors.New("seller not found")
)
