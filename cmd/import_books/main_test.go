package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-library/library"
)

func newManager(t *testing.T) *library.LibraryManager {
	t.Helper()
	db, err := library.NewDatabase(context.Background(), filepath.Join(t.TempDir(), "import.db"),
		library.AdminAccount{Username: "admin", Password: "admin"})
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	mgr := library.NewLibraryManager(db)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestImportCatalogue(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()

	_, err := mgr.CreateAuthor(ctx, library.AuthorInput{Name: "George Orwell"})
	require.NoError(t, err)

	csv := strings.Join([]string{
		"title,author,isbn,publisher,published_year,genre,copies",
		"1984,george orwell,978-0451524935,Signet,1949,Dystopia,3",
		"Animal Farm,George Orwell",
		"The Hobbit,J.R.R. Tolkien,,,1937,Fantasy,",
		",Nobody",
		"Bad Year,Someone,,,soon,,",
		"Duplicate,George Orwell,978-0451524935",
	}, "\n")

	var out bytes.Buffer
	res, err := importCatalogue(ctx, mgr, strings.NewReader(csv), &out)
	require.NoError(t, err)

	assert.Equal(t, 3, res.imported)
	assert.Equal(t, 2, res.authors) // Tolkien, Nobody
	assert.Equal(t, 3, res.failed)
	assert.Contains(t, out.String(), `published_year "soon" is not a number`)
	assert.Contains(t, out.String(), "Book title is required")

	books, err := mgr.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "1984", books[0].Title)
	assert.Equal(t, "George Orwell", books[0].AuthorName)
	assert.Equal(t, 3, books[0].CopiesAvailable)
	assert.Equal(t, "George Orwell", books[1].AuthorName)
	assert.Equal(t, 1, books[1].CopiesAvailable)
	assert.Equal(t, "J.R.R. Tolkien", books[2].AuthorName)

	authors, err := mgr.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Len(t, authors, 3)
}

func TestImportRejectsBrokenCSV(t *testing.T) {
	mgr := newManager(t)

	_, err := importCatalogue(context.Background(), mgr, strings.NewReader("title\n\"unterminated"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPrintBooksTruncatesByRune(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	_, err := mgr.CreateBook(ctx, library.BookInput{Title: strings.Repeat("é", 60)})
	require.NoError(t, err)

	var out bytes.Buffer
	printBooks(ctx, mgr, &out)

	assert.True(t, utf8.ValidString(out.String()))
	assert.Contains(t, out.String(), strings.Repeat("é", 47)+"...")
	assert.Equal(t, "ab", truncateString("abc", 2))
}
