package settlement

import (
	"errors"
	"fmt"

	"swapchain/internal/access"
	"swapchain/internal/domain"
)

// Engine errors. All user-facing errors are returned synchronously with
// no partial side effects; the engine never retries on the caller's
// behalf.
var (
	// ErrInvalidOrder is returned for malformed order parameters.
	// Recoverable: the caller retries with corrected input.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrNotFound is returned for an unknown order id.
	ErrNotFound = errors.New("order not found")

	// ErrOrderNotOpen is returned when a fill or cancel targets an order
	// already in a terminal state. Matched via NotOpenError, which
	// carries the terminal status for diagnostics.
	ErrOrderNotOpen = errors.New("order not open")

	// ErrTransferFailed is returned when the asset ledger rejects a
	// transfer. Recoverable: no engine state was mutated.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrUnauthorized is returned when the caller lacks the required
	// maker/taker role. Alias of the access guard sentinel.
	ErrUnauthorized = access.ErrUnauthorized

	// ErrInternalInconsistency is returned when escrow accounting or the
	// order store reports a state that a correct engine can never reach.
	// The affected order is quarantined and refuses further mutation.
	ErrInternalInconsistency = errors.New("internal consistency violation")
)

// NotOpenError reports an operation on an order that already reached a
// terminal state.
type NotOpenError struct {
	ID     domain.OrderID
	Status domain.OrderStatus
}

func (e *NotOpenError) Error() string {
	return fmt.Sprintf("order %d not open: status %s", e.ID, e.Status)
}

// Unwrap makes the error match ErrOrderNotOpen with errors.Is.
func (e *NotOpenError) Unwrap() error {
	return ErrOrderNotOpen
}
