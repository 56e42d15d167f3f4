package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrPriceResolution means no step of the price fallback chain produced a price.
	ErrPriceResolution = errors.New("price resolution failed")
	// ErrDimensionOutOfBounds means a requested size lies outside the product's range.
	ErrDimensionOutOfBounds = errors.New("dimension out of bounds")
	// ErrInvalidQuantity means a requested quantity is not a positive count within limits.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrSelection means a color or glass selection is missing, ambiguous or unknown.
	ErrSelection = errors.New("invalid glass or color selection")
	// ErrInvalidRate means an overhead or labor rate is outside its allowed range.
	ErrInvalidRate = errors.New("invalid rate")
	// ErrUnknownProduct means a requested product is not in the catalog snapshot.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrInvalidRequest means the request as a whole is malformed.
	ErrInvalidRequest = errors.New("invalid quote request")
)

// EntryError identifies the bill of materials entry a calculation failed on.
type EntryError struct {
	MaterialID  int64
	Description string
	Formula     string
	Err         error
}

func (e *EntryError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("bom entry %q (material %d): %v", e.Description, e.MaterialID, e.Err)
	}
	return fmt.Sprintf("bom entry for material %d: %v", e.MaterialID, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// ItemError identifies the requested item, by zero-based index, a calculation failed on.
type ItemError struct {
	Index     int
	ProductID int64
	Err       error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d (product %d): %v", e.Index, e.ProductID, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }
