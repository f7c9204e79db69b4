package payment

import "errors"

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductUnavailable  = errors.New("product is not available for sale")
	ErrSelfPurchase        = errors.New("sellers cannot buy their own products")
	ErrPaymentProvider     = errors.New("payment provider error")
	ErrTransactionNotFound = errors.New("transaction not found")
)
