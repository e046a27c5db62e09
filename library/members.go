package library

import (
	"context"
	"database/sql"
	"errors"
)

const memberColumns = `id, name, COALESCE(email,''), COALESCE(phone,''), COALESCE(membership_type,''), join_date`

func (d *Database) AddMember(ctx context.Context, m *Member) (int64, error) {
	return d.insert(ctx, d.db,
		`INSERT INTO member (name, email, phone, membership_type, join_date) VALUES ($1, $2, $3, $4, $5)`,
		m.Name, nullString(m.Email), m.Phone, m.MembershipType, nullDate(m.JoinDate))
}

func (d *Database) UpdateMember(ctx context.Context, m *Member) error {
	n, err := d.exec(ctx,
		`UPDATE member SET name=$1, email=$2, phone=$3, membership_type=$4, join_date=$5 WHERE id=$6`,
		m.Name, nullString(m.Email), m.Phone, m.MembershipType, nullDate(m.JoinDate), m.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMember removes the member together with their loans.
func (d *Database) DeleteMember(ctx context.Context, id int64) error {
	n, err := d.exec(ctx, `DELETE FROM member WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) GetMember(ctx context.Context, id int64) (*Member, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	m, err := scanMember(d.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM member WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// GetAllMembers returns all members ordered by id.
func (d *Database) GetAllMembers(ctx context.Context) ([]*Member, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `SELECT `+memberColumns+` FROM member ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// MemberChoices lists members by name for the loan form.
func (d *Database) MemberChoices(ctx context.Context) ([]Choice, error) {
	return d.choices(ctx, `SELECT id, name FROM member ORDER BY name, id`)
}

func scanMember(r rowScanner) (*Member, error) {
	var (
		m    Member
		join sql.NullTime
	)
	if err := r.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.MembershipType, &join); err != nil {
		return nil, err
	}
	m.JoinDate = dateOf(join)
	return &m, nil
}
