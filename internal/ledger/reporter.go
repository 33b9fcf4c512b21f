package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/calculator"
)

// GroupReport is one group's entry in a balance report.
type GroupReport struct {
	GroupID       string
	Name          string
	Summary       string
	Balances      calculator.Balances[string]
	OpenTransfers int
	Err           error
}

// Reporter periodically recomputes every group's balances and logs a summary.
type Reporter struct {
	ledger      *Ledger
	interval    time.Duration
	concurrency int
}

// NewReporter creates a Reporter. concurrency bounds how many groups are
// computed at once; values below 1 mean one at a time.
func NewReporter(l *Ledger, interval time.Duration, concurrency int) *Reporter {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Reporter{ledger: l, interval: interval, concurrency: concurrency}
}

// Run reports once immediately and then every interval until ctx is cancelled.
func (r *Reporter) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Balance reporter started", "interval", r.interval, "concurrency", r.concurrency)
	defer slog.InfoContext(ctx, "Balance reporter stopped")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.ReportOnce(ctx); err != nil && ctx.Err() == nil {
			slog.ErrorContext(ctx, "Balance report failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// ReportOnce computes balances for every group in parallel and logs one line
// per group. A group that fails is logged and reported with Err set; it does
// not stop the others. The returned error covers listing the groups only.
func (r *Reporter) ReportOnce(ctx context.Context) ([]GroupReport, error) {
	groups, err := r.ledger.ListGroups(ctx)
	if err != nil {
		r.observeRun(resultError)
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	reports := make([]GroupReport, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, group := range groups {
		g.Go(func() error {
			report := GroupReport{GroupID: group.ID, Name: group.Name}

			plan, err := r.ledger.Plan(gctx, group.ID)
			if err != nil {
				report.Err = err
				slog.ErrorContext(gctx, "Error while recomputing balances", "group_id", group.ID, "group", group.Name, "error", err)
				reports[i] = report
				return nil
			}

			report.Balances = plan.Balances
			report.OpenTransfers = len(plan.Suggestions)
			report.Summary, err = r.summarize(gctx, group.Members, plan.Balances)
			if err != nil {
				report.Err = err
			}
			reports[i] = report

			slog.InfoContext(gctx, "Group balances",
				"group_id", group.ID,
				"group", group.Name,
				"balances", report.Summary,
				"open_transfers", report.OpenTransfers,
			)
			return nil
		})
	}
	// Workers never return an error; failures are carried in the reports.
	_ = g.Wait()

	r.observeRun(resultOK)
	return reports, nil
}

// summarize renders "Alice: 10.00, Bob: -10.00" in member order.
func (r *Reporter) summarize(ctx context.Context, members []string, balances calculator.Balances[string]) (string, error) {
	if len(members) == 0 {
		return "no balances", nil
	}
	names, err := r.ledger.DisplayNames(ctx, members)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(members))
	for i, id := range members {
		parts[i] = fmt.Sprintf("%s: %s", names[id], balances[id].StringFixed(2))
	}
	return strings.Join(parts, ", "), nil
}

func (r *Reporter) observeRun(result string) {
	if r.ledger.metrics != nil {
		r.ledger.metrics.reportRuns.WithLabelValues(result).Inc()
	}
}
