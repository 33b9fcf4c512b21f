package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrDataIntegrity is matched by every *DataIntegrityError.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrImbalance is matched by every *ImbalanceError.
	ErrImbalance = errors.New("balances do not sum to zero")

	// ErrInvalidSplit is returned by the split strategies for unusable input.
	ErrInvalidSplit = errors.New("invalid split")
)

// DataIntegrityError reports a reference to a member that is not part of the group.
// Dropping such an entry would break conservation, so the whole computation fails.
type DataIntegrityError struct {
	// Source describes where the reference came from (e.g. "expense payer", "settlement creditor").
	Source string

	// Member is the unknown member ID, formatted with %v.
	Member string

	// Index is the position of the offending record in its input slice.
	Index int
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("%s #%d references unknown member %q", e.Source, e.Index, e.Member)
}

func (e *DataIntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}

// ImbalanceError reports a balance map that violates the conservation invariant.
type ImbalanceError struct {
	// Sum is the net total of all balances (or the unmatched remainder after planning).
	Sum decimal.Decimal
}

func (e *ImbalanceError) Error() string {
	return fmt.Sprintf("balances do not sum to zero: off by %s", e.Sum.StringFixed(2))
}

func (e *ImbalanceError) Is(target error) bool {
	return target == ErrImbalance
}

func unknownMember[ID comparable](source string, index int, id ID) error {
	return &DataIntegrityError{Source: source, Member: fmt.Sprint(id), Index: index}
}
