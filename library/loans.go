package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LoanDeleteMode decides whether deleting an unreturned loan gives its copy
// back to the book.
type LoanDeleteMode string

const (
	// DeleteLenient removes the loan row only. An "On Loan" record deleted this
	// way never returns its copy to the pool.
	DeleteLenient LoanDeleteMode = "lenient"
	// DeleteStrict restores the copy when the deleted loan was still out.
	DeleteStrict LoanDeleteMode = "strict"
)

// ParseLoanDeleteMode accepts "lenient" or "strict".
func ParseLoanDeleteMode(s string) (LoanDeleteMode, error) {
	switch m := LoanDeleteMode(s); m {
	case DeleteLenient, DeleteStrict:
		return m, nil
	}
	return "", fmt.Errorf("unknown loan delete mode %q", s)
}

// IssueLoan records a new "On Loan" row and takes one copy from the book in a
// single transaction. The decrement is guarded so the count never drops below
// zero; a book with no copies left yields ErrUnavailable and nothing is written.
func (d *Database) IssueLoan(ctx context.Context, bookID, memberID int64, loanDate, dueDate time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var loanID int64
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		var copies sql.NullInt64
		err := tx.QueryRowContext(ctx, `SELECT copies_available FROM book WHERE id=$1`, bookID).Scan(&copies)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && copies.Int64 < 1) {
			return ErrUnavailable
		}
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE book SET copies_available = copies_available - 1 WHERE id=$1 AND copies_available > 0`, bookID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrUnavailable
		}

		loanID, err = d.insert(ctx, tx,
			`INSERT INTO loan (book_id, member_id, loan_date, due_date, status) VALUES ($1, $2, $3, $4, $5)`,
			bookID, memberID, civilDate(loanDate), civilDate(dueDate), StatusOnLoan)
		return err
	})
	if err != nil {
		return 0, err
	}
	return loanID, nil
}

// ReturnLoan closes the loan on returnDate and gives the copy back to its
// book. A loan whose book reference is gone is closed without touching any
// count.
func (d *Database) ReturnLoan(ctx context.Context, loanID int64, returnDate time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return d.inTx(ctx, func(tx *sql.Tx) error {
		var (
			bookID   sql.NullInt64
			returned sql.NullTime
			status   sql.NullString
		)
		err := tx.QueryRowContext(ctx, `SELECT book_id, return_date, status FROM loan WHERE id=$1`, loanID).
			Scan(&bookID, &returned, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if returned.Valid || status.String == StatusReturned {
			return &ValidationError{Field: "loan", Message: "Loan has already been returned"}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE loan SET return_date=$1, status=$2 WHERE id=$3`,
			civilDate(returnDate), StatusReturned, loanID); err != nil {
			return err
		}
		if !bookID.Valid {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE book SET copies_available = copies_available + 1 WHERE id=$1`, bookID.Int64)
		return err
	})
}

// MarkOverdue sets an unreturned loan's status to "Overdue". The book's copy
// count is left alone: the copy is still out.
func (d *Database) MarkOverdue(ctx context.Context, loanID int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return d.inTx(ctx, func(tx *sql.Tx) error {
		var (
			returned sql.NullTime
			status   sql.NullString
		)
		err := tx.QueryRowContext(ctx, `SELECT return_date, status FROM loan WHERE id=$1`, loanID).
			Scan(&returned, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if returned.Valid || status.String == StatusReturned {
			return &ValidationError{Field: "loan", Message: "Loan has already been returned"}
		}
		_, err = tx.ExecContext(ctx, `UPDATE loan SET status=$1 WHERE id=$2`, StatusOverdue, loanID)
		return err
	})
}

// DeleteLoan removes the loan row. Only DeleteStrict adjusts copies_available.
func (d *Database) DeleteLoan(ctx context.Context, loanID int64, mode LoanDeleteMode) error {
	if mode != DeleteStrict {
		n, err := d.exec(ctx, `DELETE FROM loan WHERE id=$1`, loanID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return d.inTx(ctx, func(tx *sql.Tx) error {
		var (
			bookID   sql.NullInt64
			returned sql.NullTime
			status   sql.NullString
		)
		err := tx.QueryRowContext(ctx, `SELECT book_id, return_date, status FROM loan WHERE id=$1`, loanID).
			Scan(&bookID, &returned, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM loan WHERE id=$1`, loanID); err != nil {
			return err
		}
		if !bookID.Valid || returned.Valid || status.String == StatusReturned {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE book SET copies_available = copies_available + 1 WHERE id=$1`, bookID.Int64)
		return err
	})
}

func (d *Database) GetLoan(ctx context.Context, id int64) (*Loan, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	l, err := scanLoan(d.db.QueryRowContext(ctx, loanSelect+` WHERE l.id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

// GetAllLoans returns every loan ordered by id with book title and member name.
func (d *Database) GetAllLoans(ctx context.Context) ([]*Loan, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, loanSelect+` ORDER BY l.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

const loanSelect = `SELECT l.id, COALESCE(l.book_id,0), COALESCE(l.member_id,0), COALESCE(b.title,''), COALESCE(m.name,''),
	l.loan_date, l.due_date, l.return_date, COALESCE(l.status,'')
	FROM loan l
	LEFT JOIN book b ON l.book_id = b.id
	LEFT JOIN member m ON l.member_id = m.id`

func scanLoan(r rowScanner) (*Loan, error) {
	var (
		l                         Loan
		loanDate, due, returnDate sql.NullTime
	)
	if err := r.Scan(&l.ID, &l.BookID, &l.MemberID, &l.BookTitle, &l.MemberName,
		&loanDate, &due, &returnDate, &l.Status); err != nil {
		return nil, err
	}
	l.LoanDate = dateOf(loanDate)
	l.DueDate = dateOf(due)
	if returnDate.Valid {
		t := dateOf(returnDate)
		l.ReturnDate = &t
	}
	return &l, nil
}
