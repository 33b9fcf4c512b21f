package calculator

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// SplitMethod selects how an expense amount is allocated among participants.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitPercentage SplitMethod = "percentage"
	SplitCustom     SplitMethod = "custom"
)

var hundred = decimal.NewFromInt(100)

// maxCents bounds every amount so that cent arithmetic on it, including the
// running sum of a custom split, cannot overflow int64.
const maxCents = math.MaxInt64 / 4

// MaxAmount is the largest amount Split accepts.
var MaxAmount = fromCents(maxCents)

// ParseSplitMethod accepts a method name in any case.
func ParseSplitMethod(s string) (SplitMethod, error) {
	switch m := SplitMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case SplitEqual, SplitPercentage, SplitCustom:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unsupported split method %q", ErrInvalidSplit, s)
	}
}

// Split allocates amount among members according to method.
//
// For SplitEqual only participants is used. For SplitPercentage weights holds
// percentages summing to 100; for SplitCustom it holds the owed amounts, which
// must sum to amount. Every returned share is a whole number of cents and the
// shares always sum exactly to amount rounded to cents, so balances built
// from them conserve exactly.
func Split[ID cmp.Ordered](method SplitMethod, amount decimal.Decimal, participants []ID, weights map[ID]decimal.Decimal) (map[ID]decimal.Decimal, error) {
	if !amount.Round(2).IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidSplit, amount)
	}
	total, err := toCents(amount)
	if err != nil {
		return nil, err
	}

	switch method {
	case SplitEqual:
		return splitEqual(total, participants)
	case SplitPercentage:
		return splitPercentage(total, weights)
	case SplitCustom:
		return splitCustom(total, weights)
	default:
		return nil, fmt.Errorf("%w: unsupported split method %q", ErrInvalidSplit, method)
	}
}

// splitEqual gives everyone amount/n; leftover cents go one each to the
// lowest member IDs.
func splitEqual[ID cmp.Ordered](total int64, participants []ID) (map[ID]decimal.Decimal, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: must have at least one participant", ErrInvalidSplit)
	}
	ids := slices.Clone(participants)
	slices.Sort(ids)
	if len(slices.Compact(ids)) != len(participants) {
		return nil, fmt.Errorf("%w: duplicate participant", ErrInvalidSplit)
	}

	n := int64(len(ids))
	base, extra := total/n, total%n

	shares := make(map[ID]decimal.Decimal, len(ids))
	for i, id := range ids {
		cents := base
		if int64(i) < extra {
			cents++
		}
		shares[id] = fromCents(cents)
	}
	return shares, nil
}

// splitPercentage floors each share to cents and hands the leftover cents to
// the largest fractional remainders (ties by ascending ID).
func splitPercentage[ID cmp.Ordered](total int64, percentages map[ID]decimal.Decimal) (map[ID]decimal.Decimal, error) {
	if len(percentages) == 0 {
		return nil, fmt.Errorf("%w: percentage data required", ErrInvalidSplit)
	}

	sum := decimal.Zero
	for id, p := range percentages {
		if p.IsNegative() {
			return nil, fmt.Errorf("%w: negative percentage for %v", ErrInvalidSplit, id)
		}
		sum = sum.Add(p)
	}
	if sum.Sub(hundred).Abs().GreaterThan(Epsilon) {
		return nil, fmt.Errorf("%w: percentages must sum to 100, got %s", ErrInvalidSplit, sum)
	}

	type remainder struct {
		id   ID
		frac decimal.Decimal
	}

	totalDec := decimal.NewFromInt(total)
	cents := make(map[ID]int64, len(percentages))
	remainders := make([]remainder, 0, len(percentages))
	allocated := int64(0)
	for id, p := range percentages {
		// Scale by the actual sum so the floors never exceed the total.
		exact := totalDec.Mul(p).Div(sum)
		floor := exact.Floor()
		cents[id] = floor.IntPart()
		allocated += cents[id]
		remainders = append(remainders, remainder{id: id, frac: exact.Sub(floor)})
	}

	slices.SortFunc(remainders, func(a, b remainder) int {
		if c := b.frac.Cmp(a.frac); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	for i := int64(0); i < total-allocated; i++ {
		cents[remainders[i%int64(len(remainders))].id]++
	}

	shares := make(map[ID]decimal.Decimal, len(cents))
	for id, c := range cents {
		shares[id] = fromCents(c)
	}
	return shares, nil
}

// splitCustom takes the caller's amounts as given (rounded to cents). A sum
// that is off by at most one cent is absorbed by the largest share.
func splitCustom[ID cmp.Ordered](total int64, amounts map[ID]decimal.Decimal) (map[ID]decimal.Decimal, error) {
	if len(amounts) == 0 {
		return nil, fmt.Errorf("%w: custom split data required", ErrInvalidSplit)
	}

	cents := make(map[ID]int64, len(amounts))
	assigned := int64(0)
	var largest ID
	first := true
	for id, a := range amounts {
		if a.IsNegative() {
			return nil, fmt.Errorf("%w: negative amount for %v", ErrInvalidSplit, id)
		}
		c, err := toCents(a)
		if err != nil {
			return nil, err
		}
		cents[id] = c
		assigned += c
		// Shares are non-negative, so once the running sum passes the total it
		// can only end up further away.
		if assigned > total+1 {
			return nil, fmt.Errorf("%w: custom split amounts exceed expense total %s",
				ErrInvalidSplit, fromCents(total).StringFixed(2))
		}
		if first || cents[id] > cents[largest] || (cents[id] == cents[largest] && id < largest) {
			largest, first = id, false
		}
	}

	diff := total - assigned
	if diff < -1 || diff > 1 {
		return nil, fmt.Errorf("%w: custom split amounts must match expense total %s, got %s",
			ErrInvalidSplit, fromCents(total).StringFixed(2), fromCents(assigned).StringFixed(2))
	}
	cents[largest] += diff

	shares := make(map[ID]decimal.Decimal, len(cents))
	for id, c := range cents {
		shares[id] = fromCents(c)
	}
	return shares, nil
}

// toCents rounds d to whole cents, rejecting amounts beyond MaxAmount.
func toCents(d decimal.Decimal) (int64, error) {
	rounded := d.Round(2)
	if rounded.Abs().GreaterThan(MaxAmount) {
		return 0, fmt.Errorf("%w: amount %s exceeds the maximum of %s", ErrInvalidSplit, d, MaxAmount.StringFixed(2))
	}
	return rounded.Shift(2).IntPart(), nil
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
