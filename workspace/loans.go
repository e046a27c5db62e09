package workspace

import (
	"context"
	"fmt"
	"strings"

	"smart-library/library"
)

// The loans tab issues rather than adds and has no update form: selecting a
// loan only marks it for return, overdue or delete.
func (w *Workspace) loansTab() *tab {
	return &tab{
		entity:      "loan",
		addCmd:      "issue",
		list:        w.listLoans,
		show:        w.showLoan,
		add:         w.issueLoan,
		returnLoan:  w.mgr.ReturnLoan,
		markOverdue: w.mgr.MarkOverdue,
		remove:      w.mgr.DeleteLoan,
		confirmDel: func() string {
			if w.mgr.DeleteMode() == library.DeleteStrict {
				return "Delete this loan? An unreturned copy will be put back."
			}
			return "Delete this loan? Note: this will not restore copies automatically."
		},
	}
}

func (w *Workspace) listLoans(ctx context.Context) error {
	loans, err := w.mgr.ListLoans(ctx)
	if err != nil {
		return err
	}
	if len(loans) == 0 {
		fmt.Fprintln(w.out, "No loans recorded.")
		return nil
	}

	fmt.Fprintf(w.out, "%-5s %-30s %-25s %-11s %-11s %-11s %s\n",
		"ID", "Book", "Member", "Loaned", "Due", "Returned", "Status")
	fmt.Fprintln(w.out, strings.Repeat("-", 110))
	for _, l := range loans {
		returned := ""
		if l.ReturnDate != nil {
			returned = dateString(*l.ReturnDate)
		}
		fmt.Fprintf(w.out, "%-5d %-30s %-25s %-11s %-11s %-11s %s\n",
			l.ID,
			truncateString(l.BookTitle, 30),
			truncateString(l.MemberName, 25),
			dateString(l.LoanDate),
			dateString(l.DueDate),
			returned,
			l.Status)
	}
	return nil
}

func (w *Workspace) showLoan(ctx context.Context, id int64) error {
	l, err := w.mgr.GetLoan(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Selected loan %d: %s to %s, due %s (%s)\n",
		l.ID, l.BookTitle, l.MemberName, dateString(l.DueDate), l.Status)
	return nil
}

// issueLoan always starts from blank selections.
func (w *Workspace) issueLoan(ctx context.Context) error {
	var (
		req library.LoanRequest
		err error
	)
	if req.BookID, err = w.askChoice("Book", w.bookChoices, 0); err != nil {
		return err
	}
	if req.MemberID, err = w.askChoice("Member", w.memberChoices, 0); err != nil {
		return err
	}
	if req.LoanDate, err = w.askDate("Loan date", req.LoanDate, "today"); err != nil {
		return err
	}
	if req.DueInDays, err = w.askInt("Due in days", w.opts.LoanDays); err != nil {
		return err
	}

	id, err := w.mgr.IssueLoan(ctx, req)
	if err != nil {
		return err
	}
	w.log.Info("loan issued", "id", id, "book", req.BookID, "member", req.MemberID)
	return nil
}
