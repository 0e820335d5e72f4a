// Package domain defines the core types shared across the escrow engine:
// orders, identities, asset ids and settlement events.
package domain

// OrderID is a unique, monotonically assigned order identifier.
type OrderID uint64

// AssetID identifies a token. Encoded as a base58 ed25519 public key.
type AssetID string

// Identity identifies an external account (maker, taker, owner).
// Encoded as a base58 ed25519 public key.
type Identity string

// OrderStatus is the lifecycle state of an order.
// Orders transition exactly once from Open to a terminal state.
type OrderStatus string

// Order status constants
const (
	StatusOpen      OrderStatus = "OPEN"
	StatusFilled    OrderStatus = "FILLED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether the status is a final state.
func (s OrderStatus) Terminal() bool {
	return s == StatusFilled || s == StatusCancelled
}

// Valid reports whether the status is one of the known states.
func (s OrderStatus) Valid() bool {
	return s == StatusOpen || s.Terminal()
}

// Order is a maker's standing offer to exchange AmountIn of TokenIn
// for AmountOut of TokenOut. All fields except Status are immutable
// once the order has been created. Corresponds to the orders table
// in PostgreSQL.
type Order struct {
	ID        OrderID
	Maker     Identity
	TokenIn   AssetID // asset escrowed by the maker
	TokenOut  AssetID // asset the maker demands in exchange
	AmountIn  uint64  // quantity of TokenIn held in escrow while Open
	AmountOut uint64  // quantity of TokenOut the taker must deposit
	Status    OrderStatus
	CreatedAt int64 // Unix timestamp in milliseconds
}
