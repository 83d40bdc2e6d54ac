package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "beatstore/pkg/domain-errors"
)

// UserID identifies an authenticated shopper.
// Invariant: never the nil UUID once parsed.
type UserID uuid.UUID

// ProductID identifies a catalog product within its ProductType.
// Invariant: strictly positive once parsed.
type ProductID int64

// ParseUserID constructs a UserID from external input (JWT subject, path).
//
// Errors: returns CodeInvalidInput when the value is empty, malformed, or the
// nil UUID.
func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "user id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid user id")
	}
	if parsed == uuid.Nil {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "user id cannot be nil")
	}
	return UserID(parsed), nil
}

func (id UserID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the id is the zero value.
func (id UserID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// ParseProductID constructs a ProductID from a decimal string.
//
// Errors: returns CodeInvalidInput when the value is not a positive integer.
func ParseProductID(s string) (ProductID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "product id cannot be empty")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid product id")
	}
	return ProductID(n), nil
}

// ParseProductIDs parses a comma separated id list, skipping empty segments
// and duplicates. Order of first appearance is preserved.
func ParseProductIDs(s string) ([]ProductID, error) {
	parts := strings.Split(s, ",")
	ids := make([]ProductID, 0, len(parts))
	seen := make(map[ProductID]struct{}, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := ParseProductID(part)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func (id ProductID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
