// Package commands defines the settleup CLI. Every command works directly
// against the local SQLite database, no server required.
//
// Commands
//
//   - user add|list                   Manage users
//   - group create|list|add-member|remove-member|delete
//   - expense add|list                Record and list group expenses
//   - balances <group>                Show who owes and who is owed
//   - suggest <group>                 Show the transfers that settle a group
//   - settle <group>                  Record a payment, or accept all suggestions
//   - settlements <group>             Show settlement history
//
// Users may be referenced by ID or by email address.
package commands
