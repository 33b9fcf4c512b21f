package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/storage"
)

var idPattern = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

func execute(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), append([]string{"--db", db}, args...), &out, &errOut)
	return out.String(), err
}

func mustExecute(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := execute(t, db, args...)
	require.NoError(t, err, "settleup %v", args)
	return out
}

// createGroup creates the users and a group containing them, returning the group ID.
func createGroup(t *testing.T, db string, names ...string) string {
	t.Helper()
	args := []string{"group", "create", "Trip"}
	for _, name := range names {
		email := name + "@example.com"
		mustExecute(t, db, "user", "add", name, "--email", email)
		args = append(args, "--member", email)
	}
	out := mustExecute(t, db, args...)
	match := idPattern.FindStringSubmatch(out)
	require.Len(t, match, 2, "no group ID in %q", out)
	return match[1]
}

func TestUserCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out := mustExecute(t, db, "user", "list")
	assert.Contains(t, out, "No users found.")

	out = mustExecute(t, db, "user", "add", "Alice", "--email", "Alice@Example.com")
	assert.Contains(t, out, "Name:  Alice")
	assert.Contains(t, out, "Email: alice@example.com")

	_, err := execute(t, db, "user", "add", "Other", "--email", "alice@example.com")
	assert.ErrorIs(t, err, storage.ErrConflict)

	_, err = execute(t, db, "user", "add", "NoEmail")
	assert.Error(t, err)

	out = mustExecute(t, db, "user", "list")
	assert.Contains(t, out, "Alice (alice@example.com)")
}

func TestGroupCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	groupID := createGroup(t, db, "alice", "bob")
	mustExecute(t, db, "user", "add", "carol", "--email", "carol@example.com")

	out := mustExecute(t, db, "group", "add-member", groupID, "carol@example.com")
	assert.Contains(t, out, "Member added")
	assert.Contains(t, out, "- carol")

	out = mustExecute(t, db, "group", "remove-member", groupID, "carol@example.com")
	assert.NotContains(t, out, "- carol")

	_, err := execute(t, db, "group", "add-member", groupID, "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	out = mustExecute(t, db, "group", "list")
	assert.Contains(t, out, "Trip ("+groupID+")")

	mustExecute(t, db, "group", "delete", groupID)
	out = mustExecute(t, db, "group", "list")
	assert.Contains(t, out, "No groups found.")
}

func TestSettleFlow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	groupID := createGroup(t, db, "alice", "bob", "carol")

	out := mustExecute(t, db, "expense", "add", groupID,
		"--payer", "alice@example.com", "--amount", "300", "--description", "Cabin")
	assert.Contains(t, out, "Expense recorded")
	assert.Contains(t, out, "- bob: 100.00")

	out = mustExecute(t, db, "balances", groupID)
	assert.Contains(t, out, "alice: 200.00 is owed")
	assert.Contains(t, out, "bob: 100.00 owes")
	assert.Contains(t, out, "carol: 100.00 owes")

	out = mustExecute(t, db, "suggest", groupID)
	assert.Contains(t, out, "bob pays alice 100.00")
	assert.Contains(t, out, "carol pays alice 100.00")
	assert.Contains(t, out, "alice: settled")

	out = mustExecute(t, db, "settle", groupID, "--accept")
	assert.Contains(t, out, "Recorded 2 settlements")

	out = mustExecute(t, db, "balances", groupID)
	assert.NotContains(t, out, "owe")

	out = mustExecute(t, db, "suggest", groupID)
	assert.Contains(t, out, "Everyone is settled up.")

	out = mustExecute(t, db, "settlements", groupID)
	assert.Contains(t, out, "(suggested settlement)")
}

func TestSettleManual(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	groupID := createGroup(t, db, "alice", "bob")

	mustExecute(t, db, "expense", "add", groupID,
		"--payer", "alice@example.com", "--amount", "10", "--split", "percentage",
		"--weight", "alice@example.com=25", "--weight", "bob@example.com=75")

	out := mustExecute(t, db, "settle", groupID,
		"--from", "bob@example.com", "--to", "alice@example.com", "--amount", "5", "--note", "cash")
	assert.Contains(t, out, "bob paid alice 5.00 (cash)")

	out = mustExecute(t, db, "balances", groupID)
	assert.Contains(t, out, "alice: 2.50 is owed")
	assert.Contains(t, out, "bob: 2.50 owes")

	_, err := execute(t, db, "settle", groupID, "--from", "bob@example.com")
	assert.Error(t, err)

	_, err = execute(t, db, "settle", groupID, "--accept", "--amount", "1")
	assert.Error(t, err)
}

func TestExpenseList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	groupID := createGroup(t, db, "alice", "bob")

	out := mustExecute(t, db, "expense", "list", groupID)
	assert.Contains(t, out, "No expenses recorded for this group.")

	mustExecute(t, db, "expense", "add", groupID,
		"--payer", "bob@example.com", "--amount", "12.34", "--split", "custom",
		"--weight", "alice@example.com=12.34", "--description", "Taxi")

	out = mustExecute(t, db, "expense", "list", groupID)
	assert.Contains(t, out, "bob paid 12.34 (custom) Taxi")
	assert.Contains(t, out, "- alice: 12.34")

	_, err := execute(t, db, "expense", "add", groupID,
		"--payer", "bob@example.com", "--amount", "abc")
	assert.Error(t, err)

	_, err = execute(t, db, "expense", "add", groupID,
		"--payer", "bob@example.com", "--amount", "5", "--split", "thirds")
	assert.Error(t, err)
}

func TestParseWeights(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", pairs: nil, want: map[string]string{}},
		{
			name:  "valid",
			pairs: []string{"alice@example.com=50", " bob = 49.5 "},
			want:  map[string]string{"alice@example.com": "50", "bob": "49.5"},
		},
		{name: "missing separator", pairs: []string{"alice"}, wantErr: true},
		{name: "missing user", pairs: []string{"=10"}, wantErr: true},
		{name: "bad number", pairs: []string{"alice=ten"}, wantErr: true},
		{name: "duplicate", pairs: []string{"alice=1", "alice=2"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWeights(tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for ref, value := range tt.want {
				assert.Truef(t, decimal.RequireFromString(value).Equal(got[ref]), "weight for %s: got %s", ref, got[ref])
			}
		})
	}
}
