// internal/domain/errors.go
package domain

import "errors"

var (
	// ErrInvalidFilter means a query referenced an unknown category,
	// style, subtype or age code.
	ErrInvalidFilter = errors.New("invalid catalog filter")

	// ErrProductNotFound means no product matches the given code.
	ErrProductNotFound = errors.New("product not found")

	// ErrSaleNotFound means no sale matches the given id.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrOrderNotFound means no purchase order matches the given id.
	ErrOrderNotFound = errors.New("order not found")
)
