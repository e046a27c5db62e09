package library

import (
	"context"
	"log/slog"
)

type metric struct {
	name  string
	query string
	dest  func(*Stats) *int
}

var dashboardMetrics = []metric{
	{"books", `SELECT COUNT(*) FROM book`, func(s *Stats) *int { return &s.Books }},
	{"authors", `SELECT COUNT(*) FROM author`, func(s *Stats) *int { return &s.Authors }},
	{"members", `SELECT COUNT(*) FROM member`, func(s *Stats) *int { return &s.Members }},
	{"active_loans", `SELECT COUNT(*) FROM loan WHERE status='On Loan'`, func(s *Stats) *int { return &s.ActiveLoans }},
	{"overdue_loans", `SELECT COUNT(*) FROM loan WHERE status='Overdue'`, func(s *Stats) *int { return &s.OverdueLoans }},
	{"out_of_stock", `SELECT COUNT(*) FROM book WHERE copies_available = 0`, func(s *Stats) *int { return &s.OutOfStock }},
}

// Stats runs every dashboard counter independently. A counter whose query
// fails is logged and reported as zero; the others are unaffected.
func (d *Database) Stats(ctx context.Context) Stats {
	var s Stats
	for _, m := range dashboardMetrics {
		n, err := d.count(ctx, m.query)
		if err != nil {
			slog.Warn("dashboard metric failed", "metric", m.name, "error", err)
			n = 0
		}
		*m.dest(&s) = n
	}
	return s
}
