package library

import (
	"context"
	"database/sql"
	"errors"
)

const bookColumns = `b.id, b.title, COALESCE(b.author_id,0), COALESCE(a.name,''), COALESCE(b.isbn,''),
	COALESCE(b.publisher,''), COALESCE(b.published_year,0), COALESCE(b.genre,''), COALESCE(b.copies_available,0)`

func (d *Database) AddBook(ctx context.Context, b *Book) (int64, error) {
	return d.insert(ctx, d.db,
		`INSERT INTO book (title, author_id, isbn, publisher, published_year, genre, copies_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.Title, nullID(b.AuthorID), nullString(b.ISBN), b.Publisher, nullInt(b.PublishedYear), b.Genre, b.CopiesAvailable)
}

func (d *Database) UpdateBook(ctx context.Context, b *Book) error {
	n, err := d.exec(ctx,
		`UPDATE book SET title=$1, author_id=$2, isbn=$3, publisher=$4, published_year=$5, genre=$6, copies_available=$7
		WHERE id=$8`,
		b.Title, nullID(b.AuthorID), nullString(b.ISBN), b.Publisher, nullInt(b.PublishedYear), b.Genre, b.CopiesAvailable, b.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBook removes the book together with its loans.
func (d *Database) DeleteBook(ctx context.Context, id int64) error {
	n, err := d.exec(ctx, `DELETE FROM book WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) GetBook(ctx context.Context, id int64) (*Book, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	b, err := scanBook(d.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM book b LEFT JOIN author a ON b.author_id = a.id WHERE b.id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// GetAllBooks returns every book ordered by id with its author's name, blank
// when the book has none.
func (d *Database) GetAllBooks(ctx context.Context) ([]*Book, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM book b LEFT JOIN author a ON b.author_id = a.id ORDER BY b.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// BookChoices lists books by title, labelled with their copy count.
func (d *Database) BookChoices(ctx context.Context) ([]Choice, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, title, COALESCE(copies_available,0) FROM book ORDER BY title, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Choice
	for rows.Next() {
		var (
			c      Choice
			title  string
			copies int
		)
		if err := rows.Scan(&c.ID, &title, &copies); err != nil {
			return nil, err
		}
		c.Label = bookChoiceLabel(title, copies)
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(r rowScanner) (*Book, error) {
	var b Book
	if err := r.Scan(&b.ID, &b.Title, &b.AuthorID, &b.AuthorName, &b.ISBN,
		&b.Publisher, &b.PublishedYear, &b.Genre, &b.CopiesAvailable); err != nil {
		return nil, err
	}
	return &b, nil
}
