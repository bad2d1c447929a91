package services

import (
	"errors"

	"geekshop/internal/repos"
)

var (
	ErrBadCreds = errors.New("invalid username or password")
	ErrNotFound = errors.New("not found")

	// ErrNotForming rejects line edits and completion on orders that left
	// the FORMING state.
	ErrNotForming = errors.New("order is no longer forming")

	// ErrZeroTotal surfaces the discarded zero-value order.
	ErrZeroTotal = repos.ErrZeroTotal
)
