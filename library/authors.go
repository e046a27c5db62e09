package library

import (
	"context"
	"database/sql"
	"errors"
)

func (d *Database) AddAuthor(ctx context.Context, a *Author) (int64, error) {
	return d.insert(ctx, d.db,
		`INSERT INTO author (name, bio, nationality, birth_year) VALUES ($1, $2, $3, $4)`,
		a.Name, a.Bio, a.Nationality, nullInt(a.BirthYear))
}

func (d *Database) UpdateAuthor(ctx context.Context, a *Author) error {
	n, err := d.exec(ctx,
		`UPDATE author SET name=$1, bio=$2, nationality=$3, birth_year=$4 WHERE id=$5`,
		a.Name, a.Bio, a.Nationality, nullInt(a.BirthYear), a.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAuthor removes the author; books keep existing with no author.
func (d *Database) DeleteAuthor(ctx context.Context, id int64) error {
	n, err := d.exec(ctx, `DELETE FROM author WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) GetAuthor(ctx context.Context, id int64) (*Author, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var a Author
	err := d.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(bio,''), COALESCE(nationality,''), COALESCE(birth_year,0) FROM author WHERE id=$1`, id).
		Scan(&a.ID, &a.Name, &a.Bio, &a.Nationality, &a.BirthYear)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAllAuthors returns every author ordered by id.
func (d *Database) GetAllAuthors(ctx context.Context) ([]*Author, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(bio,''), COALESCE(nationality,''), COALESCE(birth_year,0) FROM author ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []*Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Bio, &a.Nationality, &a.BirthYear); err != nil {
			return nil, err
		}
		authors = append(authors, &a)
	}
	return authors, rows.Err()
}

// AuthorChoices lists authors by name for the book form.
func (d *Database) AuthorChoices(ctx context.Context) ([]Choice, error) {
	return d.choices(ctx, `SELECT id, name FROM author ORDER BY name, id`)
}

func (d *Database) choices(ctx context.Context, query string) ([]Choice, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Choice
	for rows.Next() {
		var c Choice
		if err := rows.Scan(&c.ID, &c.Label); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
