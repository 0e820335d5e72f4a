// Package access implements caller authorization for order mutations.
// The checks are pure predicates over the order and an explicit caller
// identity; no ambient caller context exists.
package access

import (
	"errors"
	"fmt"

	"swapchain/internal/domain"
)

// ErrUnauthorized is returned when the caller lacks the required role
// for an operation.
var ErrUnauthorized = errors.New("unauthorized")

// RequireMaker fails unless the caller is the order's maker.
// Cancelling an order is reserved to its maker.
func RequireMaker(o *domain.Order, caller domain.Identity) error {
	if caller != o.Maker {
		return fmt.Errorf("%w: caller %s is not the maker of order %d", ErrUnauthorized, caller, o.ID)
	}
	return nil
}

// RequireNotMaker fails if the caller is the order's maker.
// A maker may not fill their own order.
func RequireNotMaker(o *domain.Order, caller domain.Identity) error {
	if caller == o.Maker {
		return fmt.Errorf("%w: maker %s may not fill their own order %d", ErrUnauthorized, caller, o.ID)
	}
	return nil
}
