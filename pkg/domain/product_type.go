package domain

import dErrors "beatstore/pkg/domain-errors"

// ProductType distinguishes the two kinds of digital goods sold.
// Invariant: the value must be one of the supported product types.
//
// Usage: construct via ParseProductType at trust boundaries; direct casting
// bypasses validation.
type ProductType string

const (
	ProductTypeBeat     ProductType = "beat"
	ProductTypeSoundKit ProductType = "sound_kit"
)

// ProductTypes lists every supported type in display order.
var ProductTypes = []ProductType{ProductTypeBeat, ProductTypeSoundKit}

// ParseProductType constructs a ProductType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseProductType(s string) (ProductType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "product type cannot be empty")
	}
	t := ProductType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid product type")
	}
	return t, nil
}

// IsValid checks if the product type is one of the supported enum values.
func (t ProductType) IsValid() bool {
	return t == ProductTypeBeat || t == ProductTypeSoundKit
}

func (t ProductType) String() string {
	return string(t)
}
