package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// LibraryManager is a thin façade over the Database. It owns input
// validation, the "nothing selected" checks and error classification, so the
// presentation layer only maps a user's selection to an id.
type LibraryManager struct {
	db         *Database
	deleteMode LoanDeleteMode
	now        func() time.Time
	log        *slog.Logger
}

// Option configures a LibraryManager.
type Option func(*LibraryManager)

// WithLoanDeleteMode selects how DeleteLoan treats unreturned loans.
func WithLoanDeleteMode(m LoanDeleteMode) Option {
	return func(lm *LibraryManager) { lm.deleteMode = m }
}

// WithClock replaces time.Now, which decides "today" for returns and join dates.
func WithClock(now func() time.Time) Option {
	return func(lm *LibraryManager) { lm.now = now }
}

// WithLogger sets the logger used for failed writes.
func WithLogger(l *slog.Logger) Option {
	return func(lm *LibraryManager) { lm.log = l }
}

// NewLibraryManager wraps db. Loan deletion defaults to DeleteLenient.
func NewLibraryManager(db *Database, opts ...Option) *LibraryManager {
	lm := &LibraryManager{
		db:         db,
		deleteMode: DeleteLenient,
		now:        time.Now,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(lm)
	}
	return lm
}

// Close closes the underlying database.
func (lm *LibraryManager) Close() error { return lm.db.Close() }

// DeleteMode reports the configured loan delete mode.
func (lm *LibraryManager) DeleteMode() LoanDeleteMode { return lm.deleteMode }

func (lm *LibraryManager) today() time.Time { return civilDate(lm.now()) }

// ------------------ Session ------------------

// Login checks the credentials and opens a session. Every failure other than
// blank input is reported as ErrInvalidCredentials.
func (lm *LibraryManager) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, &ValidationError{Field: "username", Message: "Enter username and password"}
	}
	u, err := lm.db.Authenticate(ctx, username, password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			lm.log.Error("login lookup failed", "error", err)
		}
		return Session{}, ErrInvalidCredentials
	}
	return NewSession(u, lm.now()), nil
}

// ------------------ Author helpers ------------------

func (lm *LibraryManager) ListAuthors(ctx context.Context) ([]*Author, error) {
	return lm.db.GetAllAuthors(ctx)
}

func (lm *LibraryManager) GetAuthor(ctx context.Context, id int64) (*Author, error) {
	return lm.db.GetAuthor(ctx, id)
}

func (lm *LibraryManager) CreateAuthor(ctx context.Context, in AuthorInput) (int64, error) {
	a, err := in.author()
	if err != nil {
		return 0, err
	}
	id, err := lm.db.AddAuthor(ctx, a)
	return id, lm.writeErr("add author", err)
}

func (lm *LibraryManager) UpdateAuthor(ctx context.Context, id int64, in AuthorInput) error {
	if id == 0 {
		return &SelectionError{Entity: "author", Action: "update"}
	}
	a, err := in.author()
	if err != nil {
		return err
	}
	a.ID = id
	return lm.writeErr("update author", lm.db.UpdateAuthor(ctx, a))
}

func (lm *LibraryManager) DeleteAuthor(ctx context.Context, id int64) error {
	if id == 0 {
		return &SelectionError{Entity: "author", Action: "delete"}
	}
	return lm.writeErr("delete author", lm.db.DeleteAuthor(ctx, id))
}

// AuthorChoices lists authors for the book form, led by the "no author" entry.
func (lm *LibraryManager) AuthorChoices(ctx context.Context) ([]Choice, error) {
	rows, err := lm.db.AuthorChoices(ctx)
	if err != nil {
		return nil, err
	}
	return append([]Choice{{ID: 0, Label: "--- None ---"}}, rows...), nil
}

// ------------------ Book helpers ------------------

func (lm *LibraryManager) ListBooks(ctx context.Context) ([]*Book, error) {
	return lm.db.GetAllBooks(ctx)
}

func (lm *LibraryManager) GetBook(ctx context.Context, id int64) (*Book, error) {
	return lm.db.GetBook(ctx, id)
}

func (lm *LibraryManager) CreateBook(ctx context.Context, in BookInput) (int64, error) {
	b, err := in.book()
	if err != nil {
		return 0, err
	}
	id, err := lm.db.AddBook(ctx, b)
	return id, lm.writeErr("add book", err)
}

func (lm *LibraryManager) UpdateBook(ctx context.Context, id int64, in BookInput) error {
	if id == 0 {
		return &SelectionError{Entity: "book", Action: "update"}
	}
	b, err := in.book()
	if err != nil {
		return err
	}
	b.ID = id
	return lm.writeErr("update book", lm.db.UpdateBook(ctx, b))
}

// DeleteBook also removes the book's loans.
func (lm *LibraryManager) DeleteBook(ctx context.Context, id int64) error {
	if id == 0 {
		return &SelectionError{Entity: "book", Action: "delete"}
	}
	return lm.writeErr("delete book", lm.db.DeleteBook(ctx, id))
}

// BookChoices lists books for the loan form, led by the placeholder entry.
func (lm *LibraryManager) BookChoices(ctx context.Context) ([]Choice, error) {
	rows, err := lm.db.BookChoices(ctx)
	if err != nil {
		return nil, err
	}
	return append([]Choice{{ID: 0, Label: "--- Select ---"}}, rows...), nil
}

// ------------------ Member helpers ------------------

func (lm *LibraryManager) ListMembers(ctx context.Context) ([]*Member, error) {
	return lm.db.GetAllMembers(ctx)
}

func (lm *LibraryManager) GetMember(ctx context.Context, id int64) (*Member, error) {
	return lm.db.GetMember(ctx, id)
}

func (lm *LibraryManager) CreateMember(ctx context.Context, in MemberInput) (int64, error) {
	m, err := in.member()
	if err != nil {
		return 0, err
	}
	if m.JoinDate.IsZero() {
		m.JoinDate = lm.today()
	}
	id, err := lm.db.AddMember(ctx, m)
	return id, lm.writeErr("add member", err)
}

func (lm *LibraryManager) UpdateMember(ctx context.Context, id int64, in MemberInput) error {
	if id == 0 {
		return &SelectionError{Entity: "member", Action: "update"}
	}
	m, err := in.member()
	if err != nil {
		return err
	}
	m.ID = id
	return lm.writeErr("update member", lm.db.UpdateMember(ctx, m))
}

// DeleteMember also removes the member's loans.
func (lm *LibraryManager) DeleteMember(ctx context.Context, id int64) error {
	if id == 0 {
		return &SelectionError{Entity: "member", Action: "delete"}
	}
	return lm.writeErr("delete member", lm.db.DeleteMember(ctx, id))
}

// MemberChoices lists members for the loan form, led by the placeholder entry.
func (lm *LibraryManager) MemberChoices(ctx context.Context) ([]Choice, error) {
	rows, err := lm.db.MemberChoices(ctx)
	if err != nil {
		return nil, err
	}
	return append([]Choice{{ID: 0, Label: "--- Select ---"}}, rows...), nil
}

// ------------------ Bookclub helpers ------------------

func (lm *LibraryManager) ListBookclubs(ctx context.Context) ([]*Bookclub, error) {
	return lm.db.GetAllBookclubs(ctx)
}

func (lm *LibraryManager) GetBookclub(ctx context.Context, id int64) (*Bookclub, error) {
	return lm.db.GetBookclub(ctx, id)
}

func (lm *LibraryManager) CreateBookclub(ctx context.Context, in BookclubInput) (int64, error) {
	c, err := in.bookclub()
	if err != nil {
		return 0, err
	}
	id, err := lm.db.AddBookclub(ctx, c)
	return id, lm.writeErr("add bookclub", err)
}

func (lm *LibraryManager) UpdateBookclub(ctx context.Context, id int64, in BookclubInput) error {
	if id == 0 {
		return &SelectionError{Entity: "bookclub", Action: "update"}
	}
	c, err := in.bookclub()
	if err != nil {
		return err
	}
	c.ID = id
	return lm.writeErr("update bookclub", lm.db.UpdateBookclub(ctx, c))
}

func (lm *LibraryManager) DeleteBookclub(ctx context.Context, id int64) error {
	if id == 0 {
		return &SelectionError{Entity: "bookclub", Action: "delete"}
	}
	return lm.writeErr("delete bookclub", lm.db.DeleteBookclub(ctx, id))
}

// ------------------ Circulation ------------------

func (lm *LibraryManager) ListLoans(ctx context.Context) ([]*Loan, error) {
	return lm.db.GetAllLoans(ctx)
}

func (lm *LibraryManager) GetLoan(ctx context.Context, id int64) (*Loan, error) {
	return lm.db.GetLoan(ctx, id)
}

// IssueLoan lends one copy of the requested book. The due date is the loan
// date plus DueInDays.
func (lm *LibraryManager) IssueLoan(ctx context.Context, req LoanRequest) (int64, error) {
	if err := req.validate(); err != nil {
		return 0, err
	}
	loanDate := req.LoanDate
	if loanDate.IsZero() {
		loanDate = lm.today()
	}
	loanDate = civilDate(loanDate)
	due := loanDate.AddDate(0, 0, req.DueInDays)

	id, err := lm.db.IssueLoan(ctx, req.BookID, req.MemberID, loanDate, due)
	return id, lm.writeErr("create loan", err)
}

// ReturnLoan marks the loan returned today and puts the copy back.
func (lm *LibraryManager) ReturnLoan(ctx context.Context, id int64) error {
	if id == 0 {
		return &SelectionError{Entity: "loan", Action: "mark returned"}
	}
	return lm.writeErr("mark returned", lm.db.ReturnLoan(ctx, id, lm.today()))
}

// MarkOverdue flags the selected loan as overdue. Returned loans are rejected.
func (lm *LibraryManager) MarkOverdue(ctx context.Context, id int64) error {
	if id == 0 {
		return &SelectionError{Entity: "loan", Action: "mark overdue"}
	}
	return lm.writeErr("mark overdue", lm.db.MarkOverdue(ctx, id))
}

// DeleteLoan removes the loan. In DeleteLenient mode the book's count is left
// as it is even when the loan was still out.
func (lm *LibraryManager) DeleteLoan(ctx context.Context, id int64) error {
	if id == 0 {
		return &SelectionError{Entity: "loan", Action: "delete"}
	}
	return lm.writeErr("delete loan", lm.db.DeleteLoan(ctx, id, lm.deleteMode))
}

// ------------------ Dashboard ------------------

func (lm *LibraryManager) Dashboard(ctx context.Context) Stats { return lm.db.Stats(ctx) }

// ------------------ Utilities ------------------

// writeErr passes business-rule failures and vanished rows through and
// classifies everything else as a persistence failure.
func (lm *LibraryManager) writeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		return err
	}
	lm.log.Error("write failed", "op", op, "error", err)
	return persistenceError(op, err)
}

func bookChoiceLabel(title string, copies int) string {
	return fmt.Sprintf("%s (copies: %d)", title, copies)
}
