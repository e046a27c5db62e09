package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var testAdmin = AdminAccount{Username: "admin", Password: "admin", FullName: "Administrator"}

func tempDB(t *testing.T) *Database {
	t.Helper()
	dir := t.TempDir()
	db, err := NewDatabase(context.Background(), filepath.Join(dir, "test.db"), testAdmin)
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBootstrapIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lib.db")

	for i := 0; i < 2; i++ {
		db, err := NewDatabase(ctx, path, testAdmin)
		if err != nil {
			t.Fatalf("bootstrap %d: %v", i, err)
		}
		n, err := db.count(ctx, `SELECT COUNT(*) FROM users WHERE username='admin'`)
		db.Close()
		if err != nil {
			t.Fatalf("count users: %v", err)
		}
		if n != 1 {
			t.Fatalf("want 1 admin after run %d, got %d", i, n)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	u, err := db.Authenticate(ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("authenticate admin: %v", err)
	}
	if u.Username != "admin" || u.FullName != "Administrator" || u.Role != "admin" || u.ID == 0 {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.PasswordHash != "" {
		t.Fatalf("password digest leaked to caller")
	}

	_, wrongPass := db.Authenticate(ctx, "admin", "nope")
	_, noUser := db.Authenticate(ctx, "ghost", "admin")
	if !errors.Is(wrongPass, ErrInvalidCredentials) || !errors.Is(noUser, ErrInvalidCredentials) {
		t.Fatalf("want invalid credentials, got %v / %v", wrongPass, noUser)
	}
	if wrongPass.Error() != noUser.Error() {
		t.Fatalf("errors reveal which field was wrong: %q vs %q", wrongPass, noUser)
	}
}

func TestAuthenticateUpgradesLegacyDigest(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	sum := sha256.Sum256([]byte("secret"))
	if _, err := db.exec(ctx, `INSERT INTO users (username, password_hash, full_name) VALUES ($1, $2, $3)`,
		"clerk", hex.EncodeToString(sum[:]), "Front Desk"); err != nil {
		t.Fatalf("insert legacy user: %v", err)
	}

	u, err := db.Authenticate(ctx, "clerk", "secret")
	if err != nil {
		t.Fatalf("authenticate legacy: %v", err)
	}
	if u.Role != "staff" {
		t.Fatalf("want default role staff, got %q", u.Role)
	}

	stored, err := db.userByUsername(ctx, "clerk")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Fatalf("digest not upgraded: %q", stored.PasswordHash)
	}
	if _, err := db.Authenticate(ctx, "clerk", "secret"); err != nil {
		t.Fatalf("authenticate after upgrade: %v", err)
	}
}

func TestDeleteAuthorKeepsBooks(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	authorID, err := db.AddAuthor(ctx, &Author{Name: "Ursula K. Le Guin"})
	if err != nil {
		t.Fatalf("add author: %v", err)
	}
	bookID, err := db.AddBook(ctx, &Book{Title: "The Dispossessed", AuthorID: authorID, CopiesAvailable: 1})
	if err != nil {
		t.Fatalf("add book: %v", err)
	}

	b, _ := db.GetBook(ctx, bookID)
	if b.AuthorName != "Ursula K. Le Guin" {
		t.Fatalf("want author name in listing, got %q", b.AuthorName)
	}

	if err := db.DeleteAuthor(ctx, authorID); err != nil {
		t.Fatalf("delete author: %v", err)
	}
	b, err = db.GetBook(ctx, bookID)
	if err != nil {
		t.Fatalf("book should survive author deletion: %v", err)
	}
	if b.AuthorID != 0 || b.AuthorName != "" {
		t.Fatalf("author reference not cleared: %+v", b)
	}
}

func TestDeleteBookCascadesLoans(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	bookID, _ := db.AddBook(ctx, &Book{Title: "Dune", CopiesAvailable: 2})
	memberID, _ := db.AddMember(ctx, &Member{Name: "Alice"})
	if _, err := db.IssueLoan(ctx, bookID, memberID, day("2024-01-01"), day("2024-01-15")); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := db.DeleteBook(ctx, bookID); err != nil {
		t.Fatalf("delete book: %v", err)
	}
	loans, err := db.GetAllLoans(ctx)
	if err != nil {
		t.Fatalf("list loans: %v", err)
	}
	if len(loans) != 0 {
		t.Fatalf("want loans removed with book, got %d", len(loans))
	}
}

func TestIssueLoanFlow(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	bookID, _ := db.AddBook(ctx, &Book{Title: "Book", CopiesAvailable: 1})
	memberID, _ := db.AddMember(ctx, &Member{Name: "Alice"})

	loanID, err := db.IssueLoan(ctx, bookID, memberID, day("2024-01-01"), day("2024-01-15"))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	b, _ := db.GetBook(ctx, bookID)
	if b.CopiesAvailable != 0 {
		t.Fatalf("want 0 copies, got %d", b.CopiesAvailable)
	}

	// No copies left: nothing must be written.
	if _, err := db.IssueLoan(ctx, bookID, memberID, day("2024-01-02"), day("2024-01-16")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	loans, _ := db.GetAllLoans(ctx)
	if len(loans) != 1 {
		t.Fatalf("want 1 loan, got %d", len(loans))
	}

	l, err := db.GetLoan(ctx, loanID)
	if err != nil {
		t.Fatalf("get loan: %v", err)
	}
	if l.Status != StatusOnLoan || l.BookTitle != "Book" || l.MemberName != "Alice" || l.ReturnDate != nil {
		t.Fatalf("unexpected loan: %+v", l)
	}
	if got := l.DueDate.Format("2006-01-02"); got != "2024-01-15" {
		t.Fatalf("want due 2024-01-15, got %s", got)
	}

	if err := db.ReturnLoan(ctx, loanID, day("2024-01-10")); err != nil {
		t.Fatalf("return: %v", err)
	}
	b, _ = db.GetBook(ctx, bookID)
	if b.CopiesAvailable != 1 {
		t.Fatalf("want 1 copy after return, got %d", b.CopiesAvailable)
	}
	if err := db.ReturnLoan(ctx, loanID, day("2024-01-11")); !errors.Is(err, ErrValidation) {
		t.Fatalf("second return should be rejected, got %v", err)
	}
	b, _ = db.GetBook(ctx, bookID)
	if b.CopiesAvailable != 1 {
		t.Fatalf("second return changed the count: %d", b.CopiesAvailable)
	}
}

func TestIssueLoanUnknownBook(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	memberID, _ := db.AddMember(ctx, &Member{Name: "Alice"})

	if _, err := db.IssueLoan(ctx, 99999, memberID, day("2024-01-01"), day("2024-01-15")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable for missing book, got %v", err)
	}
}

func TestDeleteLoanModes(t *testing.T) {
	tests := []struct {
		name       string
		mode       LoanDeleteMode
		wantCopies int
	}{
		{name: "lenient leaves count", mode: DeleteLenient, wantCopies: 0},
		{name: "strict restores copy", mode: DeleteStrict, wantCopies: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := tempDB(t)
			ctx := context.Background()

			bookID, _ := db.AddBook(ctx, &Book{Title: "Book", CopiesAvailable: 1})
			memberID, _ := db.AddMember(ctx, &Member{Name: "Alice"})
			loanID, err := db.IssueLoan(ctx, bookID, memberID, day("2024-01-01"), day("2024-01-15"))
			if err != nil {
				t.Fatalf("issue: %v", err)
			}

			if err := db.DeleteLoan(ctx, loanID, tt.mode); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := db.GetLoan(ctx, loanID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("loan should be gone, got %v", err)
			}
			b, _ := db.GetBook(ctx, bookID)
			if b.CopiesAvailable != tt.wantCopies {
				t.Fatalf("want %d copies, got %d", tt.wantCopies, b.CopiesAvailable)
			}
		})
	}
}

func TestStrictDeleteOfReturnedLoan(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	bookID, _ := db.AddBook(ctx, &Book{Title: "Book", CopiesAvailable: 1})
	memberID, _ := db.AddMember(ctx, &Member{Name: "Alice"})
	loanID, _ := db.IssueLoan(ctx, bookID, memberID, day("2024-01-01"), day("2024-01-15"))
	if err := db.ReturnLoan(ctx, loanID, day("2024-01-05")); err != nil {
		t.Fatalf("return: %v", err)
	}
	if err := db.DeleteLoan(ctx, loanID, DeleteStrict); err != nil {
		t.Fatalf("delete: %v", err)
	}
	b, _ := db.GetBook(ctx, bookID)
	if b.CopiesAvailable != 1 {
		t.Fatalf("returned loan must not be restored twice, got %d", b.CopiesAvailable)
	}
}

func TestStats(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	authorID, _ := db.AddAuthor(ctx, &Author{Name: "A"})
	b1, _ := db.AddBook(ctx, &Book{Title: "One", AuthorID: authorID, CopiesAvailable: 1})
	b2, _ := db.AddBook(ctx, &Book{Title: "Two", CopiesAvailable: 3})
	m, _ := db.AddMember(ctx, &Member{Name: "Alice"})

	if _, err := db.IssueLoan(ctx, b1, m, day("2024-01-01"), day("2024-01-15")); err != nil {
		t.Fatalf("issue: %v", err)
	}
	late, err := db.IssueLoan(ctx, b2, m, day("2024-01-01"), day("2024-01-15"))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := db.MarkOverdue(ctx, late); err != nil {
		t.Fatalf("mark overdue: %v", err)
	}

	got := db.Stats(ctx)
	want := Stats{Books: 2, Authors: 1, Members: 1, ActiveLoans: 1, OverdueLoans: 1, OutOfStock: 1}
	if got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
}

func TestStatsIsolatesFailures(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	db.AddBook(ctx, &Book{Title: "One", CopiesAvailable: 1})
	if _, err := db.exec(ctx, `DROP TABLE loan`); err != nil {
		t.Fatalf("drop loan: %v", err)
	}

	got := db.Stats(ctx)
	if got.Books != 1 {
		t.Fatalf("book count should survive loan failures, got %+v", got)
	}
	if got.ActiveLoans != 0 || got.OverdueLoans != 0 {
		t.Fatalf("failed metrics should read zero, got %+v", got)
	}
}

func TestChoicesOrdering(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	db.AddAuthor(ctx, &Author{Name: "Zadie Smith"})
	db.AddAuthor(ctx, &Author{Name: "Chinua Achebe"})
	db.AddBook(ctx, &Book{Title: "White Teeth", CopiesAvailable: 2})
	db.AddBook(ctx, &Book{Title: "Arrow of God", CopiesAvailable: 1})

	authors, err := db.AuthorChoices(ctx)
	if err != nil {
		t.Fatalf("author choices: %v", err)
	}
	if len(authors) != 2 || authors[0].Label != "Chinua Achebe" {
		t.Fatalf("authors not ordered by name: %+v", authors)
	}

	books, err := db.BookChoices(ctx)
	if err != nil {
		t.Fatalf("book choices: %v", err)
	}
	if len(books) != 2 || books[0].Label != "Arrow of God (copies: 1)" {
		t.Fatalf("books not ordered by title: %+v", books)
	}
}
