package workspace

import (
	"context"
	"fmt"
	"strings"
)

func (w *Workspace) showDashboard(ctx context.Context) {
	s := w.mgr.Dashboard(ctx)

	fmt.Fprintln(w.out, "Dashboard")
	fmt.Fprintln(w.out, strings.Repeat("-", 30))
	fmt.Fprintf(w.out, "%-20s %d\n", "Total Books:", s.Books)
	fmt.Fprintf(w.out, "%-20s %d\n", "Total Authors:", s.Authors)
	fmt.Fprintf(w.out, "%-20s %d\n", "Total Members:", s.Members)
	fmt.Fprintf(w.out, "%-20s %d\n", "Active Loans:", s.ActiveLoans)
	fmt.Fprintf(w.out, "%-20s %d\n", "Overdue Loans:", s.OverdueLoans)
	fmt.Fprintf(w.out, "%-20s %d\n", "Out of Stock:", s.OutOfStock)
}
