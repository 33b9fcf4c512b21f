// Package calculator is the settlement engine: it folds a group's expenses
// into net balances and plans the transfers that settle them.
//
// Everything here is pure and synchronous. Callers fetch members, expenses
// and recorded settlements from storage and hand them in as plain slices;
// every function returns a fresh map and never mutates its input.
//
// Member identity is generic: any ordered type works as a member ID (the
// SQLite store uses UUID strings, tests use short names). Ordering is needed
// for deterministic tie-breaking in the planner.
package calculator

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Epsilon is the smallest amount treated as money. Balances below it are
// snapped to zero and remainders at or below it count as settled.
var Epsilon = decimal.New(1, -2)

// Expense is the calculator's view of one expense: who fronted the money and
// what each member owes for it.
type Expense[ID cmp.Ordered] struct {
	Payer  ID
	Amount decimal.Decimal
	Shares map[ID]decimal.Decimal
}

// Settlement is a recorded payment From a debtor To a creditor.
type Settlement[ID cmp.Ordered] struct {
	From   ID
	To     ID
	Amount decimal.Decimal
}

// Balances maps each member to a signed net position.
// Positive = is owed money, negative = owes money.
type Balances[ID cmp.Ordered] map[ID]decimal.Decimal

// ComputeBalances folds expenses and recorded settlements into normalized balances.
//
// Algorithm:
//   - every member starts at 0, so every member appears in the result
//   - for each expense: each share is subtracted from its member, then the
//     payer is credited the full amount (a paying participant nets amount - own share)
//   - normalize
//   - apply the settlement history (see ApplySettlements), which normalizes again
//
// A payer, share holder or settlement party outside members yields a *DataIntegrityError.
func ComputeBalances[ID cmp.Ordered](members []ID, expenses []Expense[ID], history []Settlement[ID]) (Balances[ID], error) {
	raw := make(Balances[ID], len(members))
	for _, m := range members {
		raw[m] = decimal.Zero
	}

	for i, e := range expenses {
		if _, ok := raw[e.Payer]; !ok {
			return nil, unknownMember("expense payer", i, e.Payer)
		}
		for member, owed := range e.Shares {
			if _, ok := raw[member]; !ok {
				return nil, unknownMember("expense share", i, member)
			}
			raw[member] = raw[member].Sub(owed)
		}
		raw[e.Payer] = raw[e.Payer].Add(e.Amount)
	}

	return ApplySettlements(raw.Normalize(), history)
}

// ApplySettlements returns a copy of b with each settlement applied: the
// amount is added back to the debtor and taken from the creditor, retiring
// the debt it paid. The result is normalized.
func ApplySettlements[ID cmp.Ordered](b Balances[ID], settlements []Settlement[ID]) (Balances[ID], error) {
	next := b.Clone()
	for i, s := range settlements {
		if _, ok := next[s.From]; !ok {
			return nil, unknownMember("settlement debtor", i, s.From)
		}
		if _, ok := next[s.To]; !ok {
			return nil, unknownMember("settlement creditor", i, s.To)
		}
		next[s.From] = next[s.From].Add(s.Amount)
		next[s.To] = next[s.To].Sub(s.Amount)
	}
	return next.Normalize(), nil
}

// Normalize returns a copy where every |balance| < Epsilon is exactly zero
// and every other balance is rounded to cents. Normalizing twice is a no-op.
func (b Balances[ID]) Normalize() Balances[ID] {
	out := make(Balances[ID], len(b))
	for id, v := range b {
		out[id] = normalizeAmount(v)
	}
	return out
}

func normalizeAmount(v decimal.Decimal) decimal.Decimal {
	if v.Abs().LessThan(Epsilon) {
		return decimal.Zero
	}
	return v.Round(2)
}

// Clone returns a shallow copy of b.
func (b Balances[ID]) Clone() Balances[ID] {
	out := make(Balances[ID], len(b))
	for id, v := range b {
		out[id] = v
	}
	return out
}

// Sum returns the net total of all balances; zero for a conserving group.
func (b Balances[ID]) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range b {
		sum = sum.Add(v)
	}
	return sum
}

// CheckConservation returns an *ImbalanceError when the balances do not sum
// to zero within Epsilon.
func (b Balances[ID]) CheckConservation() error {
	if sum := b.Sum(); sum.Abs().GreaterThan(Epsilon) {
		return &ImbalanceError{Sum: sum}
	}
	return nil
}

// Members returns the member IDs in ascending order.
func (b Balances[ID]) Members() []ID {
	ids := make([]ID, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Outstanding returns the total amount owed by debtors, i.e. how much money
// still has to change hands for the group to be settled.
func (b Balances[ID]) Outstanding() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b {
		if v.IsNegative() {
			total = total.Sub(v)
		}
	}
	return total
}

// IsSettled reports whether every balance is zero.
func (b Balances[ID]) IsSettled() bool {
	for _, v := range b {
		if !v.IsZero() {
			return false
		}
	}
	return true
}
