package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrEmptyOrder indicates an order without payable lines.
	ErrEmptyOrder = errors.New("order has no items")
)
