package library

import (
	"context"
	"database/sql"
	"errors"
)

func (d *Database) AddBookclub(ctx context.Context, c *Bookclub) (int64, error) {
	return d.insert(ctx, d.db,
		`INSERT INTO bookclub (name, description, meeting_day) VALUES ($1, $2, $3)`,
		c.Name, c.Description, c.MeetingDay)
}

func (d *Database) UpdateBookclub(ctx context.Context, c *Bookclub) error {
	n, err := d.exec(ctx,
		`UPDATE bookclub SET name=$1, description=$2, meeting_day=$3 WHERE id=$4`,
		c.Name, c.Description, c.MeetingDay, c.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) DeleteBookclub(ctx context.Context, id int64) error {
	n, err := d.exec(ctx, `DELETE FROM bookclub WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) GetBookclub(ctx context.Context, id int64) (*Bookclub, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c Bookclub
	err := d.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description,''), COALESCE(meeting_day,'') FROM bookclub WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.MeetingDay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (d *Database) GetAllBookclubs(ctx context.Context) ([]*Bookclub, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description,''), COALESCE(meeting_day,'') FROM bookclub ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clubs []*Bookclub
	for rows.Next() {
		var c Bookclub
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.MeetingDay); err != nil {
			return nil, err
		}
		clubs = append(clubs, &c)
	}
	return clubs, rows.Err()
}
