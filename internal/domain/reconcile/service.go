package reconcile

import "context"

type ReconcileService interface {
	// ReconcileDay writes absent records for tracked users that have neither a record nor
	// approved leave on date ("YYYY-MM-DD"). An empty date means today.
	ReconcileDay(ctx context.Context, date string) (Result, error)

	// ReconcileToday runs the scheduled sweep and refuses to run before the configured trigger time.
	ReconcileToday(ctx context.Context) (Result, error)
}
