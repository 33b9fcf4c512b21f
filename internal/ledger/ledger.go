// Package ledger is the application layer of settleup. It validates requests
// against stored groups, persists expenses and settlements, and derives
// balances and settlement plans with the calculator package on every read.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/storage"
)

var (
	// ErrInvalidArgument is wrapped by every validation failure.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMemberHasHistory is returned when removing a member who is referenced
	// by an expense or settlement. Removing them would leave the group's
	// history pointing at a non-member.
	ErrMemberHasHistory = errors.New("member has recorded expenses or settlements")
)

// Ledger coordinates storage, the calculator and event publishing.
type Ledger struct {
	store     storage.Store
	publisher events.Publisher
	metrics   *Metrics
	now       func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPublisher sets the publisher notified of recorded settlements.
func WithPublisher(p events.Publisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

// WithMetrics sets the metrics sink. Without it nothing is recorded.
func WithMetrics(m *Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// New creates a Ledger over store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:     store,
		publisher: events.NopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
