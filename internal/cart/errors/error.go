// Package errors provides custom error types for cart-related operations.
package errors

import "errors"

var ErrLoadCart = errors.New("failed to load cart")
var ErrSaveCart = errors.New("failed to save cart")
