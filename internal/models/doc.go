// Package models defines the persisted domain records for settleup.
//
// # Models
//
//   - User: a person who can be a member of groups (identified by a UUID)
//   - Group: a named set of members sharing expenses
//   - Expense: one payment fronted by a member, with the resolved share each member owes
//   - Settlement: a recorded real-world payment between two members
//
// Balances and settlement suggestions are never stored; they are derived on
// every query by the calculator package.
//
// # Design Principles
//
// 1. **IDs, not pointers**: relationships reference user and group IDs (strings)
// 2. **Exact money**: amounts are decimal.Decimal, never float64
// 3. **Shares are resolved at write time**: an expense stores what each member owes,
//    so balance computation does not depend on the split method
package models
