package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/storage/sqlite"
)

// brokenStore fails expense reads for one group.
type brokenStore struct {
	storage.Store
	brokenGroup string
}

func (s *brokenStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if groupID == s.brokenGroup {
		return nil, errors.New("disk on fire")
	}
	return s.Store.ListExpensesByGroup(ctx, groupID)
}

func TestReporter_ReportOnce(t *testing.T) {
	inner, err := sqlite.New(filepath.Join(t.TempDir(), "report.db"))
	require.NoError(t, err)
	t.Cleanup(func() { inner.Close() })
	store := &brokenStore{Store: inner}
	f := newFixtureWithStore(t, store)
	ctx := context.Background()

	ids := f.users(t, "alice", "bob")
	healthy := f.group(t, ids...)
	broken := f.group(t, ids...)
	store.brokenGroup = broken.ID

	_, err = f.ledger.AddExpense(ctx, ExpenseInput{GroupID: healthy.ID, PayerID: ids[0], Amount: d("20"), Method: calculator.SplitEqual})
	require.NoError(t, err)

	reports, err := NewReporter(f.ledger, time.Minute, 4).ReportOnce(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	byID := map[string]GroupReport{}
	for _, r := range reports {
		byID[r.GroupID] = r
	}

	ok := byID[healthy.ID]
	require.NoError(t, ok.Err)
	assert.Equal(t, "alice: 10.00, bob: -10.00", ok.Summary)
	assert.Equal(t, 1, ok.OpenTransfers)

	assert.Error(t, byID[broken.ID].Err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.reportRuns.WithLabelValues(resultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.balanceComputations.WithLabelValues(resultOK)))
}

func TestReporter_RunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- NewReporter(f.ledger, 10*time.Millisecond, 0).Run(ctx) }()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reporter did not stop after cancellation")
	}
	assert.GreaterOrEqual(t, testutil.ToFloat64(f.metrics.reportRuns.WithLabelValues(resultOK)), 1.0)
}
