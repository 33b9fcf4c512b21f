package calculator

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Transfer is a suggested payment: From pays Amount to To.
type Transfer[ID cmp.Ordered] struct {
	From   ID
	To     ID
	Amount decimal.Decimal
}

// position is one side of the matching: a debtor's remaining debt or a
// creditor's remaining credit, always positive.
type position[ID cmp.Ordered] struct {
	member    ID
	remaining decimal.Decimal
}

// SuggestSettlements plans the transfers that bring every balance to zero.
//
// Greedy largest-first matching:
//   - debtors owe more than one cent, creditors are owed more than one cent;
//     a balance of exactly one cent either way is treated as settled
//   - both sides are sorted by amount descending, ties by ascending member ID
//   - the largest remaining debtor pays the largest remaining creditor
//     min(debt, credit), rounded to cents
//   - a side whose remainder drops to one cent or less is resolved and its
//     cursor advances
//
// This is a heuristic, not a proof of the minimum transfer count (that problem
// is NP-hard in general), but it never emits more than n-1 transfers for n
// unsettled members.
//
// Balances that do not conserve produce an *ImbalanceError rather than a
// partial plan. Once they do, anything the walk leaves behind is made of
// balances at or below the one-cent threshold collected on one side (0.03
// split three ways leaves the payer owed 0.02 by two one-cent debtors), and
// those stay where they are.
func SuggestSettlements[ID cmp.Ordered](b Balances[ID]) ([]Transfer[ID], error) {
	normalized := b.Normalize()
	if err := normalized.CheckConservation(); err != nil {
		return nil, err
	}

	var debtors, creditors []position[ID]
	for id, v := range normalized {
		switch {
		case v.LessThan(Epsilon.Neg()):
			debtors = append(debtors, position[ID]{member: id, remaining: v.Neg()})
		case v.GreaterThan(Epsilon):
			creditors = append(creditors, position[ID]{member: id, remaining: v})
		}
	}
	sortPositions(debtors)
	sortPositions(creditors)

	transfers := make([]Transfer[ID], 0, max(len(debtors)+len(creditors)-1, 0))
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		amount := decimal.Min(debtor.remaining, creditor.remaining)
		transfers = append(transfers, Transfer[ID]{
			From:   debtor.member,
			To:     creditor.member,
			Amount: amount.Round(2),
		})

		debtor.remaining = debtor.remaining.Sub(amount)
		creditor.remaining = creditor.remaining.Sub(amount)

		if debtor.remaining.LessThanOrEqual(Epsilon) {
			i++
		}
		if creditor.remaining.LessThanOrEqual(Epsilon) {
			j++
		}
	}

	return transfers, nil
}

// Simulate applies transfers to a copy of b the same way recorded settlements
// are applied, and normalizes. Simulating every suggestion for b leaves no
// member more than one cent away from zero, barring the one-sided remainders
// described on SuggestSettlements.
func Simulate[ID cmp.Ordered](b Balances[ID], transfers []Transfer[ID]) (Balances[ID], error) {
	settlements := make([]Settlement[ID], len(transfers))
	for i, t := range transfers {
		settlements[i] = Settlement[ID](t)
	}
	return ApplySettlements(b, settlements)
}

func sortPositions[ID cmp.Ordered](ps []position[ID]) {
	slices.SortStableFunc(ps, func(a, b position[ID]) int {
		if c := b.remaining.Cmp(a.remaining); c != 0 {
			return c
		}
		return cmp.Compare(a.member, b.member)
	})
}
